package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gestion/authsvc/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrUnknownBranch      = errors.New("active branch does not exist")
	ErrNoUpdatableColumns = errors.New("no updatable columns")
	ErrColumnNotAllowed   = errors.New("column is not updatable")
)

const authUserSelect = `
	SELECT u.id, u.usuario, u.nombre, u.apellido_paterno, u.apellido_materno,
	       u.correo, u.clave, u.id_sucursalactiva, u.id_estado, u.id_rol,
	       u.id_perfil, u.fecha_creacion, s.nombre
	FROM general_dim_usuario u
	LEFT JOIN general_dim_sucursal s ON u.id_sucursalactiva = s.id
`

// authUserFilter restricts lookups to active users entitled to the application.
const authUserFilter = `
	AND u.id_estado = $2
	AND EXISTS (
		SELECT 1
		FROM usuario_pivot_app_usuario p
		WHERE p.id_usuario = u.id
		AND p.id_app = $3
	)
`

// CreateUser inserts a new user row.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO general_dim_usuario
			(id, usuario, nombre, apellido_paterno, apellido_materno, correo, clave,
			 id_sucursalactiva, id_estado, id_rol, id_perfil, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.FirstName,
		user.PaternalSurname,
		user.MaternalSurname,
		user.Email,
		user.PasswordHash,
		user.ActiveBranchID,
		user.StatusID,
		user.RoleID,
		user.ProfileID,
		user.CreatedOn,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		if isForeignKeyViolation(err) {
			return ErrUnknownBranch
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindAuthUserByUsername returns the active user with the given username that
// is entitled to appID, joined with its active branch name.
func (r *Repository) FindAuthUserByUsername(ctx context.Context, username string, appID int64) (*model.AuthUser, error) {
	query := authUserSelect + `WHERE u.usuario = $1` + authUserFilter

	user, err := scanAuthUser(r.pool.QueryRow(ctx, query, username, model.StatusActive, appID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// FindAuthUserByID is FindAuthUserByUsername keyed by user id. It is used on
// refresh so that current status and entitlement are re-checked.
func (r *Repository) FindAuthUserByID(ctx context.Context, id string, appID int64) (*model.AuthUser, error) {
	query := authUserSelect + `WHERE u.id = $1` + authUserFilter

	user, err := scanAuthUser(r.pool.QueryRow(ctx, query, id, model.StatusActive, appID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetPasswordHash returns the stored hash for a user regardless of status.
func (r *Repository) GetPasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := r.pool.QueryRow(ctx, `SELECT clave FROM general_dim_usuario WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get password hash: %w", err)
	}
	return hash, nil
}

// UpdatePasswordHash replaces the stored hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE general_dim_usuario SET clave = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetActiveBranch points the user at a new active branch.
func (r *Repository) SetActiveBranch(ctx context.Context, userID string, branchID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE general_dim_usuario SET id_sucursalactiva = $1 WHERE id = $2`,
		branchID, userID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUnknownBranch
		}
		return fmt.Errorf("failed to update active branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetProfile returns the non-secret profile of a user joined with the branch name.
func (r *Repository) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	query := `
		SELECT u.id, u.usuario, u.nombre, u.apellido_paterno, u.apellido_materno,
		       u.correo, u.id_sucursalactiva, u.id_estado, u.id_rol, u.id_perfil,
		       u.fecha_creacion, s.nombre
		FROM general_dim_usuario u
		LEFT JOIN general_dim_sucursal s ON u.id_sucursalactiva = s.id
		WHERE u.id = $1
	`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Username,
		&p.FirstName,
		&p.PaternalSurname,
		&p.MaternalSurname,
		&p.Email,
		&p.ActiveBranchID,
		&p.StatusID,
		&p.RoleID,
		&p.ProfileID,
		&p.CreatedOn,
		&p.BranchName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &p, nil
}

// UpdateProfile applies a partial update of allow-listed columns in a single
// statement and returns the number of affected rows.
func (r *Repository) UpdateProfile(ctx context.Context, id string, fields model.ProfileUpdate) (int64, error) {
	query, args, err := buildProfileUpdate(id, fields)
	if err != nil {
		return 0, err
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update profile: %w", err)
	}

	return tag.RowsAffected(), nil
}

// buildProfileUpdate renders the UPDATE statement for the provided fields.
// Column names come only from model.UpdatableProfileColumns, never from input.
func buildProfileUpdate(id string, fields model.ProfileUpdate) (string, []any, error) {
	for col := range fields {
		if !isUpdatableColumn(col) {
			return "", nil, fmt.Errorf("%w: %s", ErrColumnNotAllowed, col)
		}
	}

	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, col := range model.UpdatableProfileColumns {
		value, ok := fields[col]
		if !ok {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if len(sets) == 0 {
		return "", nil, ErrNoUpdatableColumns
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE general_dim_usuario SET %s WHERE id = $%d",
		strings.Join(sets, ", "),
		len(args),
	)

	return query, args, nil
}

func isUpdatableColumn(col string) bool {
	for _, allowed := range model.UpdatableProfileColumns {
		if col == allowed {
			return true
		}
	}
	return false
}

func scanAuthUser(row pgx.Row) (*model.AuthUser, error) {
	var u model.AuthUser
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.PaternalSurname,
		&u.MaternalSurname,
		&u.Email,
		&u.PasswordHash,
		&u.ActiveBranchID,
		&u.StatusID,
		&u.RoleID,
		&u.ProfileID,
		&u.CreatedOn,
		&u.BranchName,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
