package echo

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammadpnp/csv-user-import/internal/auth"
	"github.com/mohammadpnp/csv-user-import/internal/logging"
)

const claimsContextKey = "auth_claims"

// RequestContextLogger stores base, tagged with the request id, in the
// request context. It must run after middleware.RequestID.
func RequestContextLogger(base *slog.Logger) echo.MiddlewareFunc {
	if base == nil {
		base = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			logger := base
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				logger = logger.With("request_id", id)
			}
			c.SetRequest(req.WithContext(logging.WithContext(req.Context(), logger)))
			return next(c)
		}
	}
}

// AccessLog writes one slog record per request.
func AccessLog() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log := logging.FromContext(c.Request().Context())
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				log.Error("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	})
}

// RequireAdmin rejects requests without a valid bearer token whose roles
// include administrator.
func RequireAdmin(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				return c.JSON(http.StatusUnauthorized, apiResponse{Error: &errorBody{
					Code:    "unauthorized",
					Message: "bearer token required",
				}})
			}

			claims, err := auth.Authorize(strings.TrimSpace(token), secret)
			if err != nil {
				if errors.Is(err, auth.ErrNotAdmin) {
					return c.JSON(http.StatusForbidden, apiResponse{Error: &errorBody{
						Code:    "forbidden",
						Message: "administrator role required",
					}})
				}
				return c.JSON(http.StatusUnauthorized, apiResponse{Error: &errorBody{
					Code:    "unauthorized",
					Message: "invalid token",
				}})
			}

			c.Set(claimsContextKey, claims)
			req := c.Request()
			logger := logging.WithFields(req.Context(), "subject", claims.Subject)
			c.SetRequest(req.WithContext(logging.WithContext(req.Context(), logger)))
			return next(c)
		}
	}
}
