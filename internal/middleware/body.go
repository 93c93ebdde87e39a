package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "userauth/internal/errors"
)

// RequireBody rejects POST, PUT and PATCH requests whose body is empty,
// whitespace or an empty JSON object. The body is restored for the handler.
func RequireBody() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				return next(c)
			}

			var body []byte
			if req.Body != nil {
				var err error
				body, err = io.ReadAll(req.Body)
				if err != nil {
					return err
				}
				_ = req.Body.Close()
			}
			if isEmptyBody(body) {
				return apperrors.ErrBodyRequired
			}

			req.Body = io.NopCloser(bytes.NewReader(body))
			return next(c)
		}
	}
}

func isEmptyBody(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return true
	}
	if trimmed[0] != '{' {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return false
	}
	return len(fields) == 0
}
