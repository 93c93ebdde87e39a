package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/handler"
	"userauth/internal/middleware"
	"userauth/internal/validation"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Logger        *zap.Logger
	Issuer        auth.TokenIssuer
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler
	// EnableSwagger serves the API docs under /swagger/*.
	EnableSwagger bool
}

// Register wires routes and middleware.
func Register(e *echo.Echo, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{}
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(echomw.RequestID())
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{DisablePrintStack: true}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.BodyLimit("1M"))

	if deps.HealthHandler != nil {
		e.GET("/healthz", deps.HealthHandler.Health)
	}
	if deps.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := e.Group("/api", middleware.RequireBody())
	requireAuth := middleware.RequireAuth(deps.Issuer)

	// Public routes
	authGroup := api.Group("/auth")
	authGroup.POST("/signup", deps.AuthHandler.Signup)
	authGroup.POST("/login", deps.AuthHandler.Login)
	authGroup.GET("/me", deps.AuthHandler.Me, requireAuth)

	// Secured routes
	users := api.Group("/user", requireAuth)
	users.GET("/:id", deps.UserHandler.FetchOne)
	users.PUT("/:id", deps.UserHandler.Edit)
	users.DELETE("/:id", deps.UserHandler.Delete)
}

// CustomValidator runs a request's own Validate method when it has one and
// the struct tags otherwise.
type CustomValidator struct{}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	if v, ok := i.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return validation.Struct(i)
}

// ErrorHandler is the single place errors become responses. Unknown errors
// are logged and answered with a generic 500.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := toHTTPError(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(httpErr.StatusCode)
		} else {
			writeErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if writeErr != nil {
			logger.Warn("write error response", zap.Error(writeErr))
		}
	}
}

func toHTTPError(err error) *apperrors.HTTPError {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		switch {
		case echoErr.Code == http.StatusNotFound:
			return apperrors.NewHTTPError(http.StatusNotFound, "Not found", "NOT_FOUND")
		case echoErr.Code == http.StatusMethodNotAllowed:
			return apperrors.NewHTTPError(http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
		case echoErr.Code == http.StatusRequestEntityTooLarge:
			return apperrors.NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large", "BODY_TOO_LARGE")
		case echoErr.Code == http.StatusUnauthorized:
			return apperrors.MapErrorToHTTP(apperrors.ErrUnauthenticated)
		case echoErr.Code >= http.StatusInternalServerError:
			return apperrors.Internal()
		}
		if echoErr.Internal != nil {
			if mapped := apperrors.MapErrorToHTTP(echoErr.Internal); mapped.StatusCode < http.StatusInternalServerError {
				return mapped
			}
		}
		return apperrors.NewHTTPError(echoErr.Code, http.StatusText(echoErr.Code), "BAD_REQUEST")
	}
	return apperrors.MapErrorToHTTP(err)
}
