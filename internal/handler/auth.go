package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gestion/authsvc/internal/auth"
	"github.com/gestion/authsvc/internal/handler/dto"
	"github.com/gestion/authsvc/internal/model"
	"github.com/gestion/authsvc/internal/service"
)

// Confirmation messages.
const (
	MsgRegistered      = "Usuario registrado correctamente"
	MsgPasswordChanged = "Clave actualizada correctamente"
	MsgBranchChanged   = "Sucursal actualizada correctamente"
	MsgProfileUpdated  = "Información del usuario actualizada correctamente"
)

// AuthService is the account workflow behind the auth endpoints.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, username, password string) (*service.Session, error)
	Refresh(ctx context.Context, userID string) (*service.Session, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	ChangeBranch(ctx context.Context, userID string, branchID int64) (*service.BranchSwitch, error)
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, userID string, in service.ProfileInput) error
	ListBranches(ctx context.Context, userID string) ([]model.Branch, error)
}

// AuthHandler handles the /api/auth endpoints and the branch listing.
type AuthHandler struct {
	svc    AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		Username:        req.Username,
		FirstName:       req.FirstName,
		PaternalSurname: req.PaternalSurname,
		MaternalSurname: req.MaternalSurname,
		ActiveBranchID:  req.ActiveBranchID,
		StatusID:        req.StatusID,
		RoleID:          req.RoleID,
		ProfileID:       req.ProfileID,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MessageResponse{Message: MsgRegistered})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSessionResponse(session.AccessToken, session.RefreshToken, session.User))
}

// Refresh handles POST /api/auth/refresh. The caller presents a refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	session, err := h.svc.Refresh(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSessionResponse(session.AccessToken, "", session.User))
}

// ChangePassword handles POST /api/auth/cambiar-clave.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: MsgPasswordChanged})
}

// ChangeBranch handles POST /api/auth/cambiar-sucursal.
func (h *AuthHandler) ChangeBranch(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req dto.ChangeBranchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.ChangeBranch(r.Context(), userID, req.BranchID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BranchSwitchResponse{
		Message:    MsgBranchChanged,
		BranchID:   result.BranchID,
		BranchName: result.BranchName,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	profile, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateMe handles PUT /api/auth/me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.svc.UpdateProfile(r.Context(), userID, service.ProfileInput{
		FirstName:       req.FirstName,
		PaternalSurname: req.PaternalSurname,
		MaternalSurname: req.MaternalSurname,
		Email:           req.Email,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: MsgProfileUpdated})
}

// Branches handles GET /api/sucursales.
func (h *AuthHandler) Branches(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	branches, err := h.svc.ListBranches(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BranchListResponse{Branches: branches})
}

// identity returns the token subject set by the auth middleware.
func (h *AuthHandler) identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Token de autorización requerido")
		return "", false
	}
	return userID, true
}
