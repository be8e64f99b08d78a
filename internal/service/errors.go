package service

import "errors"

// Kind classifies service failures for the transport layer.
type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "storage"
	}
}

// Client-facing messages.
const (
	MsgRegisterMissingFields = "Correo, clave, usuario, nombre, apellido paterno y sucursal son requeridos"
	MsgPasswordTooLong       = "La clave excede el largo máximo permitido"
	MsgLoginMissingFields    = "Faltan datos de usuario o clave"
	MsgInvalidCredentials    = "Usuario o clave incorrectos"
	MsgUserNoAccess          = "Usuario no encontrado o sin acceso"
	MsgPasswordMissingFields = "Faltan datos de clave"
	MsgWrongCurrentPassword  = "Clave actual incorrecta"
	MsgBranchRequired        = "El ID de la sucursal es requerido"
	MsgBranchForbidden       = "No tienes acceso a esta sucursal"
	MsgUserNotFound          = "Usuario no encontrado"
	MsgEmptyProfileUpdate    = "Al menos un campo debe ser proporcionado para actualizar"
)

// Error is a classified service failure. Message is safe to return to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindStorage for unclassified errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStorage
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func authError(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func forbiddenError(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// storageError wraps a persistence or hashing failure. Its message is the
// underlying error text.
func storageError(err error) *Error {
	return &Error{Kind: KindStorage, Message: err.Error(), Err: err}
}
