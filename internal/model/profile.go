package model

import "time"

// Profile is the non-secret view of the authenticated user.
type Profile struct {
	ID              string    `json:"id"`
	Username        string    `json:"usuario"`
	FirstName       string    `json:"nombre"`
	PaternalSurname string    `json:"apellido_paterno"`
	MaternalSurname *string   `json:"apellido_materno"`
	Email           string    `json:"correo"`
	ActiveBranchID  int64     `json:"id_sucursalactiva"`
	StatusID        int64     `json:"id_estado"`
	RoleID          int64     `json:"id_rol"`
	ProfileID       int64     `json:"id_perfil"`
	CreatedOn       time.Time `json:"fecha_creacion"`
	BranchName      *string   `json:"sucursal_nombre"`
}

// Profile columns that the owner may change through a partial update.
const (
	ColumnFirstName       = "nombre"
	ColumnPaternalSurname = "apellido_paterno"
	ColumnMaternalSurname = "apellido_materno"
	ColumnEmail           = "correo"
)

// UpdatableProfileColumns is the allow-list for partial profile updates.
// Order is fixed so generated SQL is deterministic.
var UpdatableProfileColumns = []string{
	ColumnFirstName,
	ColumnPaternalSurname,
	ColumnMaternalSurname,
	ColumnEmail,
}

// ProfileUpdate maps column name to new value.
type ProfileUpdate map[string]string
