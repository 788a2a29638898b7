package echo

import (
	"errors"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"github.com/mohammadpnp/csv-user-import/internal/interfaces/notice"
)

const (
	importFormTemplate = "import_form.html"
	importFormPath     = "/admin/people/import"
)

var roleLabels = map[domain.RoleID]string{
	domain.RoleAnonymous:     "Anonymous user",
	domain.RoleAuthenticated: "Authenticated user",
	domain.RoleAdministrator: "Administrator",
}

type roleOption struct {
	ID       string
	Label    string
	Checked  bool
	Disabled bool
}

type importFormView struct {
	Action   string
	Roles    []roleOption
	Messages []string
	Errors   []string
}

// ImportFormHandler serves the admin page used to upload a CSV of users.
type ImportFormHandler struct {
	useCase app.ImportUsersFromCSV
}

func NewImportFormHandler(useCase app.ImportUsersFromCSV) *ImportFormHandler {
	return &ImportFormHandler{useCase: useCase}
}

func (h *ImportFormHandler) Show(c echo.Context) error {
	return c.Render(http.StatusOK, importFormTemplate, newImportFormView(nil))
}

func (h *ImportFormHandler) Submit(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		view := newImportFormView(nil)
		view.Errors = []string{notice.FileRequired}
		return c.Render(http.StatusBadRequest, importFormTemplate, view)
	}

	roles := rolesFromValues(form.Value["roles"])
	view := newImportFormView(roles)

	if !hasSelectedRole(roles) {
		view.Errors = append(view.Errors, notice.RolesRequired)
	}
	fileHeader := firstFile(form, "file")
	if fileHeader == nil || strings.ToLower(filepath.Ext(fileHeader.Filename)) != ".csv" {
		view.Errors = append(view.Errors, notice.FileRequired)
	}
	if len(view.Errors) > 0 {
		return c.Render(http.StatusBadRequest, importFormTemplate, view)
	}

	src, err := fileHeader.Open()
	if err != nil {
		view.Errors = append(view.Errors, notice.FileRequired)
		return c.Render(http.StatusBadRequest, importFormTemplate, view)
	}

	out, err := h.useCase.Execute(c.Request().Context(), app.ImportUsersFromCSVInput{
		FileName: fileHeader.Filename,
		Source:   src,
		Roles:    roles,
	})
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, app.ErrInvalidImportSource):
			view.Errors = append(view.Errors, notice.FileRequired)
		case errors.Is(err, domain.ErrNoRolesSelected):
			view.Errors = append(view.Errors, notice.RolesRequired)
		case errors.Is(err, domain.ErrInvalidRole):
			view.Errors = append(view.Errors, err.Error())
		case errors.Is(err, app.ErrImportInProgress):
			status = http.StatusConflict
			view.Errors = append(view.Errors, notice.ImportBusy)
		case errors.Is(err, app.ErrReadImportSource):
			status = http.StatusUnprocessableEntity
			view.Messages = append(view.Messages, notice.Imported(out.ImportedCount()))
			view.Errors = append(view.Errors, notice.Failures(out.Summary.Failures)...)
			view.Errors = append(view.Errors, notice.ImportAborted)
		default:
			return err
		}
		return c.Render(status, importFormTemplate, view)
	}

	view.Messages = append(view.Messages, notice.Imported(out.ImportedCount()))
	view.Errors = append(view.Errors, notice.Failures(out.Summary.Failures)...)
	return c.Render(http.StatusOK, importFormTemplate, view)
}

// newImportFormView lists the selectable roles, keeping the given selection
// checked. Authenticated is always shown checked and cannot be changed.
func newImportFormView(selected []domain.RoleID) importFormView {
	options := make([]roleOption, 0, len(domain.SelectableRoles())+1)
	for _, role := range domain.SelectableRoles() {
		options = append(options, roleOption{
			ID:      string(role),
			Label:   roleLabels[role],
			Checked: slices.Contains(selected, role),
		})
	}
	options = append(options, roleOption{
		ID:       string(domain.RoleAuthenticated),
		Label:    roleLabels[domain.RoleAuthenticated],
		Checked:  true,
		Disabled: true,
	})

	return importFormView{Action: importFormPath, Roles: options}
}

func hasSelectedRole(roles []domain.RoleID) bool {
	for _, role := range roles {
		if role != "" && role != domain.RoleAuthenticated {
			return true
		}
	}
	return false
}
