package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// EnsureBranch returns the id of the branch named name, creating it if needed.
func (r *Repository) EnsureBranch(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM general_dim_sucursal WHERE nombre = $1 ORDER BY id LIMIT 1`, name,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up branch: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO general_dim_sucursal (nombre) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create branch: %w", err)
	}
	return id, nil
}

// EnsureApp creates the application row if it does not exist.
func (r *Repository) EnsureApp(ctx context.Context, appID int64, name string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO general_dim_app (id, nombre) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		appID, name,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure app: %w", err)
	}
	return nil
}

// GrantApp entitles the user to log in to appID. The app row must exist.
// Granting twice is a no-op.
func (r *Repository) GrantApp(ctx context.Context, userID string, appID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO usuario_pivot_app_usuario (id_usuario, id_app) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, appID,
	)
	if err != nil {
		return fmt.Errorf("failed to grant app: %w", err)
	}
	return nil
}

// GrantBranch entitles the user to switch to branchID. Granting twice is a no-op.
func (r *Repository) GrantBranch(ctx context.Context, userID string, branchID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO usuario_pivot_sucursal_usuario (id_usuario, id_sucursal) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, branchID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUnknownBranch
		}
		return fmt.Errorf("failed to grant branch: %w", err)
	}
	return nil
}
