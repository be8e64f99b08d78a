package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gestion/authsvc/internal/model"
)

// ErrBranchNotFound is returned when a branch id does not resolve to a row.
var ErrBranchNotFound = errors.New("branch not found")

// HasBranchAccess reports whether the user holds a branch entitlement.
func (r *Repository) HasBranchAccess(ctx context.Context, userID string, branchID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM usuario_pivot_sucursal_usuario
			WHERE id_usuario = $1 AND id_sucursal = $2
		)
	`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, userID, branchID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check branch access: %w", err)
	}
	return ok, nil
}

// GetBranchName returns the display name of a branch.
func (r *Repository) GetBranchName(ctx context.Context, branchID int64) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT nombre FROM general_dim_sucursal WHERE id = $1`, branchID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrBranchNotFound
		}
		return "", fmt.Errorf("failed to get branch: %w", err)
	}
	return name, nil
}

// ListUserBranches returns the branches the user may switch to, ordered by name.
func (r *Repository) ListUserBranches(ctx context.Context, userID string) ([]model.Branch, error) {
	query := `
		SELECT s.id, s.nombre
		FROM usuario_pivot_sucursal_usuario p
		JOIN general_dim_sucursal s ON s.id = p.id_sucursal
		WHERE p.id_usuario = $1
		ORDER BY s.nombre, s.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	branches := make([]model.Branch, 0)
	for rows.Next() {
		var b model.Branch
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	return branches, nil
}
