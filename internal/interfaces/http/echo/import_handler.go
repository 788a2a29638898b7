package echo

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/file"
	"github.com/mohammadpnp/csv-user-import/internal/interfaces/notice"
)

var (
	openSourceErrors = []errorMapping{
		{target: file.ErrPathOutsideBaseDir, status: http.StatusBadRequest, code: "invalid_source"},
		{target: file.ErrInvalidS3URI, status: http.StatusBadRequest, code: "invalid_source"},
		{target: file.ErrNotAFile, status: http.StatusBadRequest, code: "invalid_source"},
		{target: fs.ErrNotExist, status: http.StatusNotFound, code: "source_not_found", message: "source_path does not exist"},
	}
	importErrors = []errorMapping{
		{target: app.ErrInvalidImportSource, status: http.StatusBadRequest, code: "invalid_source", message: "file must be a .csv upload"},
		{target: domain.ErrNoRolesSelected, status: http.StatusBadRequest, code: "roles_required", message: notice.RolesRequired},
		{target: domain.ErrInvalidRole, status: http.StatusBadRequest, code: "invalid_role"},
		{target: app.ErrImportInProgress, status: http.StatusConflict, code: "import_in_progress", message: notice.ImportBusy},
	}
)

type sourceOpener interface {
	Open(ctx context.Context, sourcePath string) (io.ReadCloser, error)
}

type ImportHandler struct {
	useCase app.ImportUsersFromCSV
	sources sourceOpener
}

type importFromSourceRequest struct {
	SourcePath string   `json:"source_path"`
	FileName   string   `json:"file_name"`
	Roles      []string `json:"roles"`
}

type importUsersResponse struct {
	RunID           string                    `json:"run_id"`
	Message         string                    `json:"message"`
	ProcessedCount  int64                     `json:"processed_count"`
	ImportedCount   int64                     `json:"imported_count"`
	SkippedCount    int64                     `json:"skipped_count"`
	FailedCount     int64                     `json:"failed_count"`
	CreatedIDs      []string                  `json:"created_ids"`
	Failures        []app.ImportFailureOutput `json:"failures"`
	FailureMessages []string                  `json:"failure_messages"`
}

// NewImportHandler returns the import API handler. sources may be nil, in
// which case only uploads are accepted.
func NewImportHandler(useCase app.ImportUsersFromCSV, sources sourceOpener) *ImportHandler {
	return &ImportHandler{useCase: useCase, sources: sources}
}

func (h *ImportHandler) acceptsSourcePaths() bool {
	return h.sources != nil
}

// ImportUsers accepts a multipart upload with a "file" part and one or more
// "roles" values and runs the import synchronously.
func (h *ImportHandler) ImportUsers(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "request must be multipart/form-data",
		}})
	}

	fileHeader := firstFile(form, "file")
	if fileHeader == nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_source",
			Message: "file must be a .csv upload",
		}})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_source",
			Message: "uploaded file could not be opened",
		}})
	}

	return h.run(c, app.ImportUsersFromCSVInput{
		FileName: fileHeader.Filename,
		Source:   src,
		Roles:    rolesFromValues(form.Value["roles"]),
	})
}

// ImportFromSource imports a CSV already stored under import.base_dir or in
// S3, named by source_path.
func (h *ImportHandler) ImportFromSource(c echo.Context) error {
	var req importFromSourceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = file.FileName(req.SourcePath)
	}
	if req.SourcePath == "" || strings.ToLower(filepath.Ext(fileName)) != ".csv" {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_source",
			Message: "source_path must be a .csv file",
		}})
	}

	src, err := h.sources.Open(c.Request().Context(), req.SourcePath)
	if err != nil {
		return respondError(c, err, "failed to open import source", openSourceErrors)
	}

	return h.run(c, app.ImportUsersFromCSVInput{
		FileName: fileName,
		Source:   src,
		Roles:    rolesFromValues(req.Roles),
	})
}

func (h *ImportHandler) run(c echo.Context, in app.ImportUsersFromCSVInput) error {
	out, err := h.useCase.Execute(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, app.ErrReadImportSource) {
			return c.JSON(http.StatusUnprocessableEntity, apiResponse{
				Data: newImportUsersResponse(out),
				Error: &errorBody{
					Code:    "read_failed",
					Message: notice.ImportAborted,
				},
			})
		}
		return respondError(c, err, "failed to import users", importErrors)
	}

	return c.JSON(http.StatusOK, apiResponse{Data: newImportUsersResponse(out)})
}

func newImportUsersResponse(out app.ImportUsersFromCSVOutput) importUsersResponse {
	ids := make([]string, 0, len(out.Created))
	for id := range out.Created {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return importUsersResponse{
		RunID:           out.RunID,
		Message:         notice.Imported(out.ImportedCount()),
		ProcessedCount:  out.Summary.ProcessedCount,
		ImportedCount:   out.Summary.ImportedCount,
		SkippedCount:    out.Summary.SkippedCount,
		FailedCount:     out.Summary.FailedCount,
		CreatedIDs:      ids,
		Failures:        app.FailureOutputs(out.Summary.Failures),
		FailureMessages: notice.Failures(out.Summary.Failures),
	}
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}
	return form.File[field][0]
}

func rolesFromValues(values []string) []domain.RoleID {
	roles := make([]domain.RoleID, 0, len(values))
	for _, v := range values {
		roles = append(roles, domain.RoleID(v))
	}
	return roles
}
