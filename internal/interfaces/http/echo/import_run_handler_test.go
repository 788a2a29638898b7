package echo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	httpecho "github.com/mohammadpnp/csv-user-import/internal/interfaces/http/echo"
)

type fakeGetImportRunUseCase struct {
	out app.GetImportRunOutput
	err error
}

func (f *fakeGetImportRunUseCase) Execute(ctx context.Context, in app.GetImportRunInput) (app.GetImportRunOutput, error) {
	if f.err != nil {
		return app.GetImportRunOutput{}, f.err
	}
	return f.out, nil
}

func newRunServer(useCase *fakeGetImportRunUseCase) *echo.Echo {
	e := echo.New()
	httpecho.RegisterRoutes(e, httpecho.Handlers{ImportRun: httpecho.NewImportRunHandler(useCase)})
	return e
}

func TestGetImportRunHandlerSuccess(t *testing.T) {
	t.Parallel()

	e := newRunServer(&fakeGetImportRunUseCase{out: app.GetImportRunOutput{
		ID:            "0b0e8a4f-8e61-4c47-9d0c-3f3e4d8a1b22",
		FileName:      "users.csv",
		Status:        "succeeded",
		ImportedCount: 2,
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/0b0e8a4f-8e61-4c47-9d0c-3f3e4d8a1b22", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := decodeResponse(t, rec.Body.Bytes())["data"].(map[string]any)
	if data["status"] != "succeeded" || data["imported_count"] != float64(2) {
		t.Fatalf("unexpected payload: %#v", data)
	}
}

func TestGetImportRunHandlerErrors(t *testing.T) {
	t.Parallel()

	cases := map[error]int{
		app.ErrInvalidImportRunID: http.StatusBadRequest,
		app.ErrImportRunNotFound:  http.StatusNotFound,
		errors.New("boom"):        http.StatusInternalServerError,
	}

	for err, status := range cases {
		e := newRunServer(&fakeGetImportRunUseCase{err: err})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/whatever", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != status {
			t.Fatalf("%v: expected %d, got %d", err, status, rec.Code)
		}
	}
}
