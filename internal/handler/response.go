package handler

import (
	"encoding/json"
	"errors"

	"github.com/labstack/echo/v4"

	apperrors "userauth/internal/errors"
	"userauth/internal/model"
	"userauth/internal/service"
)

// AuthEnvelope wraps signup and login results.
type AuthEnvelope struct {
	Success bool               `json:"success"`
	Result  service.AuthResult `json:"result"`
}

// UserEnvelope wraps a single user projection.
type UserEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

func userEnvelope(message string, user *model.PublicUser) UserEnvelope {
	return UserEnvelope{Success: true, Message: message, User: *user}
}

// bind decodes the request body into dst and runs the echo validator on it.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperrors.ErrInvalidInputTypes
		}
		return apperrors.NewValidationError("Invalid request body")
	}
	return c.Validate(dst)
}
