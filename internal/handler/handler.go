// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gestion/authsvc/internal/handler/dto"
	"github.com/gestion/authsvc/internal/service"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_ERROR"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

const msgInvalidBody = "Cuerpo de la solicitud inválido"

// Handler serves the service root and router fallbacks.
type Handler struct {
	version string
}

// New creates a new Handler instance.
func New(version string) *Handler {
	return &Handler{version: version}
}

// Info identifies the service.
// GET /
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "authsvc",
		"version": h.version,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, CodeNotFound, "Recurso no encontrado")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Método no permitido")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}

// decodeJSON reads the request body into dst, writing a 400 (or 413 when the
// body limit was hit) and returning false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Cuerpo de la solicitud demasiado grande")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeValidation, msgInvalidBody)
		return false
	}
	return true
}

// writeServiceError maps a classified service error to its HTTP status.
// Unclassified and storage failures become 500 with the message echoed.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	message := err.Error()

	switch service.KindOf(err) {
	case service.KindValidation:
		writeError(w, http.StatusBadRequest, CodeValidation, message)
	case service.KindAuth:
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, message)
	case service.KindForbidden:
		writeError(w, http.StatusForbidden, CodeForbidden, message)
	case service.KindNotFound:
		writeError(w, http.StatusNotFound, CodeNotFound, message)
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, message)
	}
}
