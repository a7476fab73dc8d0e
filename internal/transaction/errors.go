package transaction

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrNotFound is returned when a transaction or file does not exist
	ErrNotFound = errors.New("not found")
	// ErrValidation is wrapped by ValidationErrors
	ErrValidation = errors.New("validation failed")
	// ErrInvalidFile is returned for receipt file names that escape storage
	ErrInvalidFile = errors.New("invalid file name")
	// ErrUnauthorized is returned when credentials are missing or wrong
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldError is a validation failure on a single form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every invalid field of an Input
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Messages returns the user facing messages in field order
func (v ValidationErrors) Messages() []string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Message)
	}
	return msgs
}

// UserMessage maps an error to a message that is safe to show to users.
// Raw error text is never exposed.
func UserMessage(err error) string {
	var verrs ValidationErrors
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verrs):
		return strings.Join(verrs.Messages(), ". ")
	case errors.Is(err, ErrNotFound):
		return "Recurso não encontrado"
	case errors.Is(err, ErrInvalidFile), errors.Is(err, ErrValidation):
		return "Dados inválidos. Verifique as informações"
	case errors.Is(err, ErrUnauthorized):
		return "Acesso não autorizado"
	case errors.Is(err, context.DeadlineExceeded):
		return "A operação demorou muito. Tente novamente"
	default:
		return "Ocorreu um erro inesperado. Tente novamente"
	}
}

// StatusCode maps an error to the HTTP status returned for it
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
