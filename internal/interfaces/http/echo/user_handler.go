package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
)

var (
	getUserErrors = []errorMapping{
		{target: app.ErrInvalidUserID, status: http.StatusBadRequest, code: "invalid_user_id", message: "id must be a valid UUID"},
		{target: app.ErrUserNotFound, status: http.StatusNotFound, code: "not_found", message: "user not found"},
	}
	findUsersErrors = []errorMapping{
		{target: app.ErrUsernameRequired, status: http.StatusBadRequest, code: "username_required", message: "username query parameter is required"},
	}
)

// UserHandler serves read access to imported accounts, so operators can
// check which username an import row ended up with.
type UserHandler struct {
	byID       app.GetUserByID
	byUsername app.FindUsersByUsername
}

// NewUserHandler wires the lookups. byUsername may be nil, which leaves
// GET /users unregistered.
func NewUserHandler(byID app.GetUserByID, byUsername app.FindUsersByUsername) *UserHandler {
	return &UserHandler{byID: byID, byUsername: byUsername}
}

func (h *UserHandler) acceptsUsernameLookups() bool {
	return h.byUsername != nil
}

// GetUserByID returns an imported account with its roles.
func (h *UserHandler) GetUserByID(c echo.Context) error {
	out, err := h.byID.Execute(c.Request().Context(), app.GetUserByIDInput{ID: c.Param("id")})
	if err != nil {
		return respondError(c, err, "failed to get user", getUserErrors)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// FindUsersByUsername lists accounts whose username equals ?username=
// exactly. No match is an empty list, not a 404.
func (h *UserHandler) FindUsersByUsername(c echo.Context) error {
	out, err := h.byUsername.Execute(c.Request().Context(), app.FindUsersByUsernameInput{
		Username: c.QueryParam("username"),
	})
	if err != nil {
		return respondError(c, err, "failed to find users", findUsersErrors)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
