package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "userauth/internal/errors"
	"userauth/internal/service"
)

type passValidator struct{}

func (passValidator) Validate(interface{}) error { return nil }

func TestBind_ReportsTypeMismatch(t *testing.T) {
	e := echo.New()
	e.Validator = passValidator{}

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "number for string", body: `{"name":1,"email":"ann@x.com","password":"secret12"}`, wantErr: apperrors.ErrInvalidInputTypes},
		{name: "malformed", body: `{"name":`, wantErr: apperrors.ErrValidation},
		{name: "well formed", body: `{"name":"Ann","email":"ann@x.com","password":"secret12"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			c := e.NewContext(req, httptest.NewRecorder())

			var in service.SignupInput
			err := bind(c, &in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ann", in.Name)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()

	t.Run("all healthy", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{
			"mysql":    func(context.Context) error { return nil },
			"rabbitmq": nil,
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)

		require.NoError(t, h.Health(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, map[string]string{"mysql": "ok"}, resp.Checks)
	})

	t.Run("failing dependency", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{
			"mysql": func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)

		require.NoError(t, h.Health(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"])
	})
}
