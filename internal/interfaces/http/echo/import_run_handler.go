package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
)

var getImportRunErrors = []errorMapping{
	{target: app.ErrInvalidImportRunID, status: http.StatusBadRequest, code: "invalid_import_run_id", message: "id must be a valid UUID"},
	{target: app.ErrImportRunNotFound, status: http.StatusNotFound, code: "not_found", message: "import run not found"},
}

type ImportRunHandler struct {
	useCase app.GetImportRun
}

func NewImportRunHandler(useCase app.GetImportRun) *ImportRunHandler {
	return &ImportRunHandler{useCase: useCase}
}

func (h *ImportRunHandler) GetImportRun(c echo.Context) error {
	out, err := h.useCase.Execute(c.Request().Context(), app.GetImportRunInput{
		ID: c.Param("id"),
	})
	if err != nil {
		return respondError(c, err, "failed to get import run", getImportRunErrors)
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
