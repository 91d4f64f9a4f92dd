// Package apperrors define la taxonomía de errores del dominio y su
// correspondencia con códigos HTTP.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("access denied")
)

// AccessError lleva un mensaje propio y se compara con ErrUnauthorized o ErrForbidden
type AccessError struct {
	Message   string
	Forbidden bool
}

func (e *AccessError) Error() string {
	return e.Message
}

func (e *AccessError) Is(target error) bool {
	if e.Forbidden {
		return target == ErrForbidden
	}
	return target == ErrUnauthorized
}

func Unauthorized(message string) error {
	return &AccessError{Message: message}
}

func Forbidden(message string) error {
	return &AccessError{Message: message, Forbidden: true}
}

// ValidationError representa un error de validación
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return "not enough stock for " + e.ProductName
}

// ConflictError indica que el recurso cambió entre la lectura y la escritura
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func Conflict(message string) error {
	return &ConflictError{Message: message}
}

// InternalError envuelve fallos inesperados; el mensaje no se expone al cliente
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	// No volver a envolver errores que ya pertenecen a la taxonomía
	if Classified(err) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}

// Classified indica si err ya tiene un tipo de la taxonomía
func Classified(err error) bool {
	var (
		ve *ValidationError
		nf *NotFoundError
		is *InsufficientStockError
		ce *ConflictError
		ie *InternalError
	)
	return errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &is) ||
		errors.As(err, &ce) || errors.As(err, &ie) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// HTTPStatus traduce un error al código HTTP correspondiente
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		is *InsufficientStockError
		ce *ConflictError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &is):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage devuelve el texto seguro para mostrar al cliente
func PublicMessage(err error, fallback string) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return fallback
	}
	return err.Error()
}
