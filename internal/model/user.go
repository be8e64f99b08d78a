// Package model defines domain entities for the application.
package model

import "time"

// User status values stored in id_estado.
const (
	StatusActive   int64 = 1
	StatusInactive int64 = 2
)

// User is a row of general_dim_usuario.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"usuario"`
	FirstName       string    `json:"nombre"`
	PaternalSurname string    `json:"apellido_paterno"`
	MaternalSurname *string   `json:"apellido_materno"`
	Email           string    `json:"correo"`
	PasswordHash    string    `json:"-"` // Never serialize
	ActiveBranchID  int64     `json:"id_sucursalactiva"`
	StatusID        int64     `json:"id_estado"`
	RoleID          int64     `json:"id_rol"`
	ProfileID       int64     `json:"id_perfil"`
	CreatedOn       time.Time `json:"fecha_creacion"`
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.StatusID == StatusActive
}

// AuthUser is a user joined with its active branch name, as resolved for
// login and refresh.
type AuthUser struct {
	User
	BranchName *string
}

// Branch is a row of general_dim_sucursal.
type Branch struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}
