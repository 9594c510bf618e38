package models

import "errors"

// ErrorKind classifies a domain failure so transports can map it to a status
type ErrorKind string

const (
	KindUnauthorized   ErrorKind = "unauthorized"
	KindForbidden      ErrorKind = "forbidden"
	KindNotFound       ErrorKind = "not_found"
	KindConflict       ErrorKind = "conflict"
	KindInvalidRequest ErrorKind = "invalid_request"
)

// AppError is a domain error carrying its kind and a client-safe message
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e AppError) Error() string {
	return e.Message
}

func Unauthorized(msg string) AppError   { return AppError{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) AppError      { return AppError{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) AppError       { return AppError{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) AppError       { return AppError{Kind: KindConflict, Message: msg} }
func InvalidRequest(msg string) AppError { return AppError{Kind: KindInvalidRequest, Message: msg} }

// KindOf returns the kind of the first AppError in err's chain.
// The second return value is false for infrastructure errors.
func KindOf(err error) (ErrorKind, bool) {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// Shared errors
var (
	ErrUnauthorized = Unauthorized("Not authenticated.")
	ErrForbidden    = Forbidden("You do not have permission to perform this action.")
	ErrAdminOnly    = Forbidden("Administrator privileges required.")
	ErrInvalidToken = Unauthorized("Could not validate credentials.")
	ErrInactiveUser = Unauthorized("Inactive user.")
)
