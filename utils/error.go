package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stable error codes returned to callers. Every domain failure maps to
// exactly one of these.
const (
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeForbidden            = "FORBIDDEN"
	CodeDuplicateOpenRequest = "DUPLICATE_OPEN_REQUEST"
	CodeAlreadyResolved      = "ALREADY_RESOLVED"
	CodeAlreadyFinal         = "ALREADY_FINAL"
	CodeConflict             = "CONFLICT"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInternal             = "INTERNAL_ERROR"
)

// ServiceError is a typed domain failure carrying a stable code.
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError builds a ServiceError with the given code and message.
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// WrapServiceError attaches an underlying cause to a ServiceError.
func WrapServiceError(code, message string, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, Err: err}
}

// ErrorCode extracts the stable code from err, or CodeInternal for
// anything that is not a ServiceError.
func ErrorCode(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given service error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// httpStatusByCode maps each error code to its wire status.
var httpStatusByCode = map[string]int{
	CodeNotFound:             http.StatusNotFound,
	CodeInvalidInput:         http.StatusBadRequest,
	CodeInvalidTransition:    http.StatusUnprocessableEntity,
	CodeForbidden:            http.StatusForbidden,
	CodeDuplicateOpenRequest: http.StatusConflict,
	CodeAlreadyResolved:      http.StatusConflict,
	CodeAlreadyFinal:         http.StatusConflict,
	CodeConflict:             http.StatusConflict,
	CodeUnauthorized:         http.StatusUnauthorized,
	CodeInternal:             http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for a service error code.
func HTTPStatus(code string) int {
	if s, ok := httpStatusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Code:    CodeInternal,
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, code string, message string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("code", code))
	c.JSON(status, ErrorResponse{Code: code, Message: message})
}

// RespondServiceError maps a domain error to its HTTP status and writes
// the structured response.
func RespondServiceError(c *gin.Context, err error) {
	code := ErrorCode(err)
	var se *ServiceError
	message := "An unexpected error occurred."
	if errors.As(err, &se) {
		message = se.Message
	}
	JSONError(c, HTTPStatus(code), code, message)
}
