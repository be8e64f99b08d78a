package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gestion/authsvc/internal/migrations"
	"github.com/gestion/authsvc/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema applies pending migrations and empties every table.
func ResetSchema(ctx context.Context, databaseURL string, pool *pgxpool.Pool) error {
	if err := migrations.Up(ctx, databaseURL); err != nil {
		return err
	}

	_, err := pool.Exec(ctx, `
		TRUNCATE usuario_pivot_sucursal_usuario,
		         usuario_pivot_app_usuario,
		         general_dim_usuario,
		         general_dim_app,
		         general_dim_sucursal
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// SeedBranch inserts a branch and returns its id.
func SeedBranch(ctx context.Context, t testing.TB, pool *pgxpool.Pool, name string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `INSERT INTO general_dim_sucursal (nombre) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		t.Fatalf("seed branch: %v", err)
	}
	return id
}

// SeedApp inserts an application row if missing.
func SeedApp(ctx context.Context, t testing.TB, pool *pgxpool.Pool, appID int64) {
	t.Helper()
	_, err := pool.Exec(ctx,
		`INSERT INTO general_dim_app (id, nombre) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		appID, fmt.Sprintf("app-%d", appID),
	)
	if err != nil {
		t.Fatalf("seed app: %v", err)
	}
}

// GrantApp adds an application entitlement.
func GrantApp(ctx context.Context, t testing.TB, pool *pgxpool.Pool, userID string, appID int64) {
	t.Helper()
	SeedApp(ctx, t, pool, appID)
	_, err := pool.Exec(ctx,
		`INSERT INTO usuario_pivot_app_usuario (id_usuario, id_app) VALUES ($1, $2)`,
		userID, appID,
	)
	if err != nil {
		t.Fatalf("grant app: %v", err)
	}
}

// GrantBranch adds a branch entitlement.
func GrantBranch(ctx context.Context, t testing.TB, pool *pgxpool.Pool, userID string, branchID int64) {
	t.Helper()
	_, err := pool.Exec(ctx,
		`INSERT INTO usuario_pivot_sucursal_usuario (id_usuario, id_sucursal) VALUES ($1, $2)`,
		userID, branchID,
	)
	if err != nil {
		t.Fatalf("grant branch: %v", err)
	}
}

// NewTestUser creates an active user with sensible defaults.
func NewTestUser(t testing.TB, username string, branchID int64) *model.User {
	t.Helper()
	return &model.User{
		ID:              uuid.NewString(),
		Username:        username,
		FirstName:       "Test",
		PaternalSurname: "User",
		Email:           username + "@example.com",
		PasswordHash:    "$2a$04$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva",
		ActiveBranchID:  branchID,
		StatusID:        model.StatusActive,
		RoleID:          3,
		ProfileID:       1,
		CreatedOn:       time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// UniqueName generates a unique name for tests.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
