// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/gestion/authsvc/internal/model"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email           string  `json:"correo"`
	Password        string  `json:"clave"`
	Username        string  `json:"usuario"`
	FirstName       string  `json:"nombre"`
	PaternalSurname string  `json:"apellido_paterno"`
	MaternalSurname *string `json:"apellido_materno,omitempty"`
	ActiveBranchID  int64   `json:"id_sucursalactiva"`
	StatusID        *int64  `json:"id_estado,omitempty"`
	RoleID          *int64  `json:"id_rol,omitempty"`
	ProfileID       *int64  `json:"id_perfil,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"usuario"`
	Password string `json:"clave"`
}

// ChangePasswordRequest is the body of POST /api/auth/cambiar-clave.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"clave_actual"`
	NewPassword     string `json:"nueva_clave"`
}

// ChangeBranchRequest is the body of POST /api/auth/cambiar-sucursal.
type ChangeBranchRequest struct {
	BranchID int64 `json:"id_sucursal"`
}

// UpdateProfileRequest is the body of PUT /api/auth/me. Absent fields are
// left unchanged.
type UpdateProfileRequest struct {
	FirstName       *string `json:"nombre,omitempty"`
	PaternalSurname *string `json:"apellido_paterno,omitempty"`
	MaternalSurname *string `json:"apellido_materno,omitempty"`
	Email           *string `json:"correo,omitempty"`
}

// SessionResponse is returned by login and refresh.
type SessionResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	Username     string  `json:"usuario"`
	BranchID     int64   `json:"id_sucursal"`
	BranchName   *string `json:"sucursal_nombre"`
	RoleID       int64   `json:"id_rol"`
	ProfileID    int64   `json:"id_perfil"`
}

// ToSessionResponse converts issued tokens and the resolved user to a response.
func ToSessionResponse(accessToken, refreshToken string, u *model.AuthUser) SessionResponse {
	return SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Username:     u.Username,
		BranchID:     u.ActiveBranchID,
		BranchName:   u.BranchName,
		RoleID:       u.RoleID,
		ProfileID:    u.ProfileID,
	}
}

// BranchSwitchResponse is returned by POST /api/auth/cambiar-sucursal.
type BranchSwitchResponse struct {
	Message    string  `json:"message"`
	BranchID   int64   `json:"id_sucursal"`
	BranchName *string `json:"sucursal_nombre"`
}

// BranchListResponse is returned by GET /api/sucursales.
type BranchListResponse struct {
	Branches []model.Branch `json:"sucursales"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
