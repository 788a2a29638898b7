package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mohammadpnp/csv-user-import/internal/logging"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

// errorMapping answers errors matching target with status and code. An empty
// message sends err.Error() to the client.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// respondError writes the first mapping err matches. Unmatched errors go
// through internalError with fallback as the message.
func respondError(c echo.Context, err error, fallback string, mappings []errorMapping) error {
	for _, m := range mappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		return c.JSON(m.status, apiResponse{Error: &errorBody{Code: m.code, Message: message}})
	}
	return internalError(c, err, fallback)
}

// internalError logs err with the request logger and hides it from the client.
func internalError(c echo.Context, err error, message string) error {
	logging.FromContext(c.Request().Context()).Error(message, "error", err)
	return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
		Code:    "internal_error",
		Message: message,
	}})
}
