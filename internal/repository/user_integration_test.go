//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/gestion/authsvc/internal/model"
	"github.com/gestion/authsvc/internal/testutil"
)

// ============================================================================
// User Repository Integration Tests
// ============================================================================

const testAppID int64 = 2

func newUserTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, dbURL, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

func seedEntitledUser(t *testing.T, ctx context.Context, repo *Repository, username string) (*model.User, int64) {
	t.Helper()

	branchID := testutil.SeedBranch(ctx, t, repo.Pool(), "Casa Matriz")
	user := testutil.NewTestUser(t, username, branchID)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	testutil.GrantApp(ctx, t, repo.Pool(), user.ID, testAppID)
	testutil.GrantBranch(ctx, t, repo.Pool(), user.ID, branchID)

	return user, branchID
}

func TestIntegrationUserRepository_CreateAndFind(t *testing.T) {
	ctx, repo := newUserTestEnv(t)
	user, branchID := seedEntitledUser(t, ctx, repo, "ana")

	byName, err := repo.FindAuthUserByUsername(ctx, "ana", testAppID)
	if err != nil {
		t.Fatalf("FindAuthUserByUsername failed: %v", err)
	}
	if byName.ID != user.ID || byName.ActiveBranchID != branchID {
		t.Errorf("unexpected user: %+v", byName)
	}
	if byName.BranchName == nil || *byName.BranchName != "Casa Matriz" {
		t.Errorf("branch name = %v, want Casa Matriz", byName.BranchName)
	}
	if byName.PasswordHash != user.PasswordHash {
		t.Error("password hash should be loaded for verification")
	}

	byID, err := repo.FindAuthUserByID(ctx, user.ID, testAppID)
	if err != nil {
		t.Fatalf("FindAuthUserByID failed: %v", err)
	}
	if byID.Username != "ana" {
		t.Errorf("username = %q, want ana", byID.Username)
	}
}

func TestIntegrationUserRepository_DuplicateUsername(t *testing.T) {
	ctx, repo := newUserTestEnv(t)
	user, branchID := seedEntitledUser(t, ctx, repo, "dup")

	again := testutil.NewTestUser(t, user.Username, branchID)
	if err := repo.CreateUser(ctx, again); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestIntegrationUserRepository_UnknownBranch(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, "nobranch", 999999)
	if err := repo.CreateUser(ctx, user); !errors.Is(err, ErrUnknownBranch) {
		t.Fatalf("expected ErrUnknownBranch, got %v", err)
	}
}

func TestIntegrationUserRepository_InactiveOrUnentitledHidden(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	branchID := testutil.SeedBranch(ctx, t, repo.Pool(), "Norte")

	inactive := testutil.NewTestUser(t, "inactive", branchID)
	inactive.StatusID = model.StatusInactive
	if err := repo.CreateUser(ctx, inactive); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	testutil.GrantApp(ctx, t, repo.Pool(), inactive.ID, testAppID)

	noApp := testutil.NewTestUser(t, "noapp", branchID)
	if err := repo.CreateUser(ctx, noApp); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	otherApp := testutil.NewTestUser(t, "otherapp", branchID)
	if err := repo.CreateUser(ctx, otherApp); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	testutil.GrantApp(ctx, t, repo.Pool(), otherApp.ID, testAppID+1)

	for _, username := range []string{"inactive", "noapp", "otherapp"} {
		t.Run(username, func(t *testing.T) {
			if _, err := repo.FindAuthUserByUsername(ctx, username, testAppID); !errors.Is(err, ErrUserNotFound) {
				t.Errorf("expected ErrUserNotFound, got %v", err)
			}
		})
	}

	if _, err := repo.FindAuthUserByID(ctx, inactive.ID, testAppID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindAuthUserByID inactive: expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationUserRepository_PasswordHash(t *testing.T) {
	ctx, repo := newUserTestEnv(t)
	user, _ := seedEntitledUser(t, ctx, repo, "pw")

	if err := repo.UpdatePasswordHash(ctx, user.ID, "$2a$04$new"); err != nil {
		t.Fatalf("UpdatePasswordHash failed: %v", err)
	}

	hash, err := repo.GetPasswordHash(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetPasswordHash failed: %v", err)
	}
	if hash != "$2a$04$new" {
		t.Errorf("hash = %q", hash)
	}

	missing := testutil.NewTestUser(t, "ghost", 1).ID
	if err := repo.UpdatePasswordHash(ctx, missing, "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.GetPasswordHash(ctx, missing); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationUserRepository_Branches(t *testing.T) {
	ctx, repo := newUserTestEnv(t)
	user, home := seedEntitledUser(t, ctx, repo, "branches")

	south := testutil.SeedBranch(ctx, t, repo.Pool(), "Sur")
	forbidden := testutil.SeedBranch(ctx, t, repo.Pool(), "Oeste")
	testutil.GrantBranch(ctx, t, repo.Pool(), user.ID, south)

	ok, err := repo.HasBranchAccess(ctx, user.ID, south)
	if err != nil || !ok {
		t.Fatalf("HasBranchAccess(south) = %v, %v", ok, err)
	}
	ok, err = repo.HasBranchAccess(ctx, user.ID, forbidden)
	if err != nil || ok {
		t.Fatalf("HasBranchAccess(forbidden) = %v, %v", ok, err)
	}

	branches, err := repo.ListUserBranches(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListUserBranches failed: %v", err)
	}
	if len(branches) != 2 || branches[0].ID != home || branches[1].ID != south {
		t.Errorf("unexpected branches: %+v", branches)
	}

	if err := repo.SetActiveBranch(ctx, user.ID, south); err != nil {
		t.Fatalf("SetActiveBranch failed: %v", err)
	}
	profile, err := repo.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.ActiveBranchID != south || profile.BranchName == nil || *profile.BranchName != "Sur" {
		t.Errorf("unexpected profile after switch: %+v", profile)
	}

	name, err := repo.GetBranchName(ctx, south)
	if err != nil || name != "Sur" {
		t.Errorf("GetBranchName = %q, %v", name, err)
	}
	if _, err := repo.GetBranchName(ctx, 424242); !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("expected ErrBranchNotFound, got %v", err)
	}
}

func TestIntegrationUserRepository_UpdateProfile(t *testing.T) {
	ctx, repo := newUserTestEnv(t)
	user, _ := seedEntitledUser(t, ctx, repo, "profile")

	rows, err := repo.UpdateProfile(ctx, user.ID, model.ProfileUpdate{model.ColumnEmail: "nuevo@example.com"})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}

	profile, err := repo.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Email != "nuevo@example.com" {
		t.Errorf("email = %q", profile.Email)
	}
	if profile.FirstName != user.FirstName || profile.PaternalSurname != user.PaternalSurname {
		t.Errorf("untouched columns changed: %+v", profile)
	}

	missing := testutil.NewTestUser(t, "ghost", 1).ID
	rows, err = repo.UpdateProfile(ctx, missing, model.ProfileUpdate{model.ColumnFirstName: "x"})
	if err != nil {
		t.Fatalf("UpdateProfile on missing user failed: %v", err)
	}
	if rows != 0 {
		t.Errorf("rows = %d, want 0", rows)
	}
}

func TestIntegrationUserRepository_Entitlements(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	branchID, err := repo.EnsureBranch(ctx, "Centro")
	if err != nil {
		t.Fatalf("EnsureBranch failed: %v", err)
	}
	again, err := repo.EnsureBranch(ctx, "Centro")
	if err != nil || again != branchID {
		t.Fatalf("EnsureBranch not idempotent: %d vs %d (%v)", again, branchID, err)
	}

	user := testutil.NewTestUser(t, "granted", branchID)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := repo.EnsureApp(ctx, testAppID, "gestion"); err != nil {
		t.Fatalf("EnsureApp failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := repo.GrantApp(ctx, user.ID, testAppID); err != nil {
			t.Fatalf("GrantApp #%d failed: %v", i, err)
		}
		if err := repo.GrantBranch(ctx, user.ID, branchID); err != nil {
			t.Fatalf("GrantBranch #%d failed: %v", i, err)
		}
	}

	if _, err := repo.FindAuthUserByUsername(ctx, "granted", testAppID); err != nil {
		t.Errorf("entitled user should be found: %v", err)
	}
	if err := repo.GrantBranch(ctx, user.ID, 987654); !errors.Is(err, ErrUnknownBranch) {
		t.Errorf("expected ErrUnknownBranch, got %v", err)
	}
}
