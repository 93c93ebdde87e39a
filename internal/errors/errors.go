package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is the category of every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrFieldsRequired is returned when a signup field is missing.
	ErrFieldsRequired = &ValidationError{Message: "Name, email, and password are required"}
	// ErrInvalidInputTypes is returned when a body field has the wrong JSON type.
	ErrInvalidInputTypes = &ValidationError{Message: "Invalid input types", Code: "INVALID_INPUT_TYPES"}
	// ErrInvalidEmail is returned when an email fails the address-shape check.
	ErrInvalidEmail = &ValidationError{Message: "Invalid email format"}
	// ErrBodyRequired is returned by the request gate for empty bodies.
	ErrBodyRequired = &ValidationError{Message: "Request body is required", Code: "BODY_REQUIRED"}
	// ErrInvalidUserID is returned when an identifier is not well-formed.
	ErrInvalidUserID = &ValidationError{Message: "Invalid user ID", Code: "INVALID_USER_ID"}

	// ErrEmailInUse is returned when signing up or editing with a taken email.
	ErrEmailInUse = errors.New("Email already in use")
	// ErrUserNotFound is returned when no user matches an identifier.
	ErrUserNotFound = errors.New("User not found")
	// ErrEmailNotFound is returned by login when no user has the email.
	ErrEmailNotFound = errors.New("No user with this email found")
	// ErrInvalidPassword is returned by login on a password mismatch.
	ErrInvalidPassword = errors.New("Invalid password")
	// ErrInvalidCredentials replaces the two login errors above when they are unified.
	ErrInvalidCredentials = errors.New("Invalid email or password")
	// ErrUnauthenticated is returned when the bearer token is missing or invalid.
	ErrUnauthenticated = errors.New("Unauthorized")
	// ErrTooManyAttempts is returned while a login lockout is active.
	ErrTooManyAttempts = errors.New("Too many failed login attempts, try again later")
)

// ValidationError is a malformed or missing input. Its message is safe for clients.
type ValidationError struct {
	Message string
	Code    string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a validation error with a client-facing message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Message: e.Message,
		Code:    e.Code,
	}
}

// Internal is the response for any failure that must not leak detail.
func Internal() *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		code := validationErr.Code
		if code == "" {
			code = "VALIDATION_ERROR"
		}
		return NewHTTPError(http.StatusBadRequest, validationErr.Message, code)
	}

	switch {
	case errors.Is(err, ErrEmailInUse):
		return NewHTTPError(http.StatusBadRequest, ErrEmailInUse.Error(), "EMAIL_IN_USE")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrEmailNotFound):
		return NewHTTPError(http.StatusNotFound, ErrEmailNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrInvalidPassword):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidPassword.Error(), "INVALID_PASSWORD")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrTooManyAttempts):
		return NewHTTPError(http.StatusTooManyRequests, ErrTooManyAttempts.Error(), "TOO_MANY_ATTEMPTS")
	default:
		return Internal()
	}
}
