package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorKind classifies application errors so callers can react without string matching.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation_error"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindComputation  ErrorKind = "computation_error"
	KindInternal     ErrorKind = "internal_error"
)

// AppError represents a custom application error
type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error constructors
func NewValidationError(message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Code:    http.StatusConflict,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Kind:    KindUnauthorized,
		Code:    http.StatusUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Kind:    KindForbidden,
		Code:    http.StatusForbidden,
		Message: message,
	}
}

// NewComputationError marks a broken data invariant discovered while computing an aggregate.
// The cause is kept for logs; clients only see a generic message.
func NewComputationError(message string, cause error) *AppError {
	return &AppError{
		Kind:    KindComputation,
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     cause,
	}
}

func NewBadRequestError(message string) *AppError {
	return NewValidationError(message)
}

func kindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func IsValidation(err error) bool   { return kindOf(err) == KindValidation }
func IsNotFound(err error) bool     { return kindOf(err) == KindNotFound }
func IsConflict(err error) bool     { return kindOf(err) == KindConflict }
func IsComputation(err error) bool  { return kindOf(err) == KindComputation }
func IsUnauthorized(err error) bool { return kindOf(err) == KindUnauthorized }
func IsForbidden(err error) bool    { return kindOf(err) == KindForbidden }

// HandleError sends an appropriate HTTP response for an error
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError {
			// Internal causes stay in the logs
			_ = c.Error(err)
			c.JSON(appErr.Code, gin.H{"error": "Internal server error", "kind": appErr.Kind})
			return
		}
		c.JSON(appErr.Code, gin.H{"error": appErr.Message, "kind": appErr.Kind})
		return
	}

	// Default to internal server error
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// HandleSuccess sends a success response
func HandleSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// HandleCreated sends a 201 response
func HandleCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}
