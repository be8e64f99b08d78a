// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestion/authsvc/internal/auth"
	"github.com/gestion/authsvc/internal/cache"
	"github.com/gestion/authsvc/internal/metrics"
	"github.com/gestion/authsvc/internal/model"
	"github.com/gestion/authsvc/internal/repository"
)

// Store is the credential store used by AuthService.
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindAuthUserByUsername(ctx context.Context, username string, appID int64) (*model.AuthUser, error)
	FindAuthUserByID(ctx context.Context, id string, appID int64) (*model.AuthUser, error)
	GetPasswordHash(ctx context.Context, id string) (string, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	HasBranchAccess(ctx context.Context, userID string, branchID int64) (bool, error)
	SetActiveBranch(ctx context.Context, userID string, branchID int64) error
	GetBranchName(ctx context.Context, branchID int64) (string, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, id string, fields model.ProfileUpdate) (int64, error)
	ListUserBranches(ctx context.Context, userID string) ([]model.Branch, error)
}

// BranchNameCache caches branch display names.
type BranchNameCache interface {
	GetBranchName(ctx context.Context, branchID int64) (string, error)
	SetBranchName(ctx context.Context, branchID int64, name string) error
}

// AuthConfig holds behaviour switches for AuthService.
type AuthConfig struct {
	AppID                   int64
	LoginIssuesRefreshToken bool
	DefaultStatusID         int64
	DefaultRoleID           int64
	DefaultProfileID        int64
}

// AuthDeps holds collaborators for AuthService. Cache, Metrics and Logger are optional.
type AuthDeps struct {
	Store     Store
	Passwords *auth.Passwords
	Tokens    *auth.TokenIssuer
	Cache     BranchNameCache
	Metrics   metrics.Recorder
	Logger    *slog.Logger
}

// AuthService handles registration, login and account mutation.
type AuthService struct {
	store     Store
	passwords *auth.Passwords
	tokens    *auth.TokenIssuer
	names     BranchNameCache
	metrics   metrics.Recorder
	logger    *slog.Logger
	cfg       AuthConfig
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(deps AuthDeps, cfg AuthConfig) *AuthService {
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:     deps.Store,
		passwords: deps.Passwords,
		tokens:    deps.Tokens,
		names:     deps.Cache,
		metrics:   recorder,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// RegisterInput defines input for creating a user.
type RegisterInput struct {
	Email           string
	Password        string
	Username        string
	FirstName       string
	PaternalSurname string
	MaternalSurname *string
	ActiveBranchID  int64
	StatusID        *int64
	RoleID          *int64
	ProfileID       *int64
}

// Session is the result of a successful login or refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *model.AuthUser
}

// BranchSwitch is the result of changing the active branch.
type BranchSwitch struct {
	BranchID   int64
	BranchName *string
}

// ProfileInput carries optional profile fields. Nil or empty values are left unchanged.
type ProfileInput struct {
	FirstName       *string
	PaternalSurname *string
	MaternalSurname *string
	Email           *string
}

// Register creates a new user with a freshly hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Email == "" || in.Password == "" || in.Username == "" ||
		in.FirstName == "" || in.PaternalSurname == "" || in.ActiveBranchID == 0 {
		s.metrics.IncRegistration(metrics.OutcomeInvalidRequest)
		return nil, validationError(MsgRegisterMissingFields)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		s.metrics.IncRegistration(metrics.OutcomeInvalidRequest)
		return nil, err
	}

	user := &model.User{
		ID:              uuid.NewString(),
		Username:        in.Username,
		FirstName:       in.FirstName,
		PaternalSurname: in.PaternalSurname,
		MaternalSurname: in.MaternalSurname,
		Email:           in.Email,
		PasswordHash:    hash,
		ActiveBranchID:  in.ActiveBranchID,
		StatusID:        valueOr(in.StatusID, s.cfg.DefaultStatusID),
		RoleID:          valueOr(in.RoleID, s.cfg.DefaultRoleID),
		ProfileID:       valueOr(in.ProfileID, s.cfg.DefaultProfileID),
		CreatedOn:       today(s.now()),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		s.metrics.IncRegistration(metrics.OutcomeError)
		s.logger.Error("register_failed", "username", in.Username, "error", err)
		return nil, storageError(err)
	}

	s.metrics.IncRegistration(metrics.OutcomeSuccess)
	s.logger.Info("user_registered", "user_id", user.ID, "branch_id", user.ActiveBranchID)

	return user, nil
}

// Login verifies credentials and issues tokens. Unknown usernames and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		s.metrics.IncLogin(metrics.OutcomeInvalidRequest)
		return nil, validationError(MsgLoginMissingFields)
	}

	user, err := s.store.FindAuthUserByUsername(ctx, username, s.cfg.AppID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			start := time.Now()
			s.passwords.VerifyDummy(password)
			s.metrics.ObservePasswordHash(time.Since(start))
			return nil, s.loginFailed("unknown_user", "")
		}
		s.metrics.IncLogin(metrics.OutcomeError)
		return nil, storageError(err)
	}

	ok, err := s.verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored_hash_invalid", "user_id", user.ID, "error", err)
		return nil, s.loginFailed("invalid_hash", user.ID)
	}
	if !ok {
		return nil, s.loginFailed("bad_password", user.ID)
	}

	if s.passwords.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	session, err := s.issue(user, s.cfg.LoginIssuesRefreshToken)
	if err != nil {
		s.metrics.IncLogin(metrics.OutcomeError)
		return nil, err
	}

	s.metrics.IncLogin(metrics.OutcomeSuccess)
	s.logger.Info("login_succeeded", "user_id", user.ID, "branch_id", user.ActiveBranchID)

	return session, nil
}

// Refresh re-resolves the user behind a refresh token and issues a new access
// token from current state.
func (s *AuthService) Refresh(ctx context.Context, userID string) (*Session, error) {
	user, err := s.store.FindAuthUserByID(ctx, userID, s.cfg.AppID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncRefresh(metrics.OutcomeInvalidCredentials)
			s.logger.Warn("refresh_denied", "user_id", userID)
			return nil, authError(MsgUserNoAccess)
		}
		s.metrics.IncRefresh(metrics.OutcomeError)
		return nil, storageError(err)
	}

	session, err := s.issue(user, false)
	if err != nil {
		s.metrics.IncRefresh(metrics.OutcomeError)
		return nil, err
	}

	s.metrics.IncRefresh(metrics.OutcomeSuccess)
	return session, nil
}

// ChangePassword replaces the stored hash after verifying the current password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		s.metrics.IncPasswordChange(metrics.OutcomeInvalidRequest)
		return validationError(MsgPasswordMissingFields)
	}

	stored, err := s.store.GetPasswordHash(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncPasswordChange(metrics.OutcomeInvalidCredentials)
			return authError(MsgWrongCurrentPassword)
		}
		s.metrics.IncPasswordChange(metrics.OutcomeError)
		return storageError(err)
	}

	ok, err := s.verify(current, stored)
	if err != nil || !ok {
		if err != nil {
			s.logger.Error("stored_hash_invalid", "user_id", userID, "error", err)
		}
		s.metrics.IncPasswordChange(metrics.OutcomeInvalidCredentials)
		return authError(MsgWrongCurrentPassword)
	}

	hash, err := s.hash(next)
	if err != nil {
		s.metrics.IncPasswordChange(metrics.OutcomeInvalidRequest)
		return err
	}

	if err := s.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncPasswordChange(metrics.OutcomeError)
			return notFoundError(MsgUserNotFound)
		}
		s.metrics.IncPasswordChange(metrics.OutcomeError)
		return storageError(err)
	}

	s.metrics.IncPasswordChange(metrics.OutcomeSuccess)
	s.logger.Info("password_changed", "user_id", userID)
	return nil
}

// ChangeBranch moves the user to another entitled branch.
func (s *AuthService) ChangeBranch(ctx context.Context, userID string, branchID int64) (*BranchSwitch, error) {
	if branchID == 0 {
		s.metrics.IncBranchSwitch(metrics.OutcomeInvalidRequest)
		return nil, validationError(MsgBranchRequired)
	}

	allowed, err := s.store.HasBranchAccess(ctx, userID, branchID)
	if err != nil {
		s.metrics.IncBranchSwitch(metrics.OutcomeError)
		return nil, storageError(err)
	}
	if !allowed {
		s.metrics.IncBranchSwitch(metrics.OutcomeForbidden)
		s.logger.Warn("branch_switch_denied", "user_id", userID, "branch_id", branchID)
		return nil, forbiddenError(MsgBranchForbidden)
	}

	if err := s.store.SetActiveBranch(ctx, userID, branchID); err != nil {
		s.metrics.IncBranchSwitch(metrics.OutcomeError)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFoundError(MsgUserNotFound)
		}
		return nil, storageError(err)
	}

	name, err := s.branchName(ctx, branchID)
	if err != nil {
		s.metrics.IncBranchSwitch(metrics.OutcomeError)
		return nil, storageError(err)
	}

	s.metrics.IncBranchSwitch(metrics.OutcomeSuccess)
	s.logger.Info("branch_switched", "user_id", userID, "branch_id", branchID)

	return &BranchSwitch{BranchID: branchID, BranchName: name}, nil
}

// GetProfile returns the current user's profile.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFoundError(MsgUserNotFound)
		}
		return nil, storageError(err)
	}
	return profile, nil
}

// UpdateProfile applies a partial update of the provided fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) error {
	fields := model.ProfileUpdate{}
	put := func(col string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			fields[col] = *v
		}
	}
	put(model.ColumnFirstName, in.FirstName)
	put(model.ColumnPaternalSurname, in.PaternalSurname)
	put(model.ColumnMaternalSurname, in.MaternalSurname)
	put(model.ColumnEmail, in.Email)

	if len(fields) == 0 {
		return validationError(MsgEmptyProfileUpdate)
	}

	rows, err := s.store.UpdateProfile(ctx, userID, fields)
	if err != nil {
		return storageError(err)
	}
	if rows == 0 {
		return notFoundError(MsgUserNotFound)
	}

	s.logger.Info("profile_updated", "user_id", userID, "fields", len(fields))
	return nil
}

// ListBranches returns the branches the user may switch to.
func (s *AuthService) ListBranches(ctx context.Context, userID string) ([]model.Branch, error) {
	branches, err := s.store.ListUserBranches(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	return branches, nil
}

func (s *AuthService) issue(user *model.AuthUser, withRefresh bool) (*Session, error) {
	access, err := s.tokens.IssueAccess(auth.GrantFor(user))
	if err != nil {
		return nil, storageError(err)
	}
	s.metrics.IncTokenIssued(model.TokenTypeAccess)

	session := &Session{AccessToken: access, User: user}
	if withRefresh {
		refresh, err := s.tokens.IssueRefresh(user.ID)
		if err != nil {
			return nil, storageError(err)
		}
		s.metrics.IncTokenIssued(model.TokenTypeRefresh)
		session.RefreshToken = refresh
	}

	return session, nil
}

func (s *AuthService) loginFailed(reason, userID string) error {
	s.metrics.IncLogin(metrics.OutcomeInvalidCredentials)
	s.logger.Warn("login_failed", "reason", reason, "user_id", userID)
	return authError(MsgInvalidCredentials)
}

func (s *AuthService) hash(password string) (string, error) {
	start := time.Now()
	hash, err := s.passwords.Hash(password)
	s.metrics.ObservePasswordHash(time.Since(start))
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", validationError(MsgPasswordTooLong)
		}
		return "", storageError(err)
	}
	return hash, nil
}

func (s *AuthService) verify(password, hash string) (bool, error) {
	start := time.Now()
	defer func() { s.metrics.ObservePasswordHash(time.Since(start)) }()
	return s.passwords.Verify(password, hash)
}

// rehash upgrades a hash produced by a previously configured algorithm.
// Failures are logged and do not affect the login.
func (s *AuthService) rehash(ctx context.Context, userID, password string) {
	hash, err := s.hash(password)
	if err != nil {
		s.logger.Warn("rehash_failed", "user_id", userID, "error", err)
		return
	}
	if err := s.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		s.logger.Warn("rehash_failed", "user_id", userID, "error", err)
		return
	}
	s.logger.Info("password_rehashed", "user_id", userID)
}

// branchName resolves a branch display name through the optional cache.
// A missing branch yields nil.
func (s *AuthService) branchName(ctx context.Context, branchID int64) (*string, error) {
	if s.names != nil {
		name, err := s.names.GetBranchName(ctx, branchID)
		if err == nil {
			s.metrics.IncBranchCacheHit()
			return &name, nil
		}
		s.metrics.IncBranchCacheMiss()
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("branch_cache_get_failed", "branch_id", branchID, "error", err)
		}
	}

	name, err := s.store.GetBranchName(ctx, branchID)
	if err != nil {
		if errors.Is(err, repository.ErrBranchNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if s.names != nil {
		if err := s.names.SetBranchName(ctx, branchID, name); err != nil {
			s.logger.Warn("branch_cache_set_failed", "branch_id", branchID, "error", err)
		}
	}

	return &name, nil
}

func valueOr(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}
	return *v
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
