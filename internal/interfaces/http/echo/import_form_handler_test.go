package echo_test

import (
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	httpecho "github.com/mohammadpnp/csv-user-import/internal/interfaces/http/echo"
)

const formPath = "/admin/people/import"

func newFormServer(useCase *fakeImportUseCase) *echo.Echo {
	e := echo.New()
	httpecho.RegisterRoutes(e, httpecho.Handlers{ImportForm: httpecho.NewImportFormHandler(useCase)})
	return e
}

func TestImportFormShow(t *testing.T) {
	t.Parallel()

	e := newFormServer(&fakeImportUseCase{})

	req := httptest.NewRequest(http.MethodGet, formPath, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`value="anonymous">`,
		`value="administrator">`,
		`value="authenticated" checked disabled>`,
		`enctype="multipart/form-data"`,
		`name="file"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected form to contain %q", want)
		}
	}
}

func TestImportFormRequiresRolesAndFile(t *testing.T) {
	t.Parallel()

	useCase := &fakeImportUseCase{}
	e := newFormServer(useCase)

	req := newUploadRequest(t, formPath, &uploadFile{name: "users.txt"}, "authenticated")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if useCase.calls != 0 {
		t.Fatalf("expected use case not to run, got %d calls", useCase.calls)
	}

	body := html.UnescapeString(rec.Body.String())
	if !strings.Contains(body, "Please select at least one role to apply to the imported user(s).") {
		t.Fatal("expected roles validation message")
	}
	if !strings.Contains(body, "Please upload a .csv file.") {
		t.Fatal("expected file validation message")
	}
}

func TestImportFormSubmitShowsSummary(t *testing.T) {
	t.Parallel()

	useCase := &fakeImportUseCase{output: app.ImportUsersFromCSVOutput{
		Created: map[string]domain.AccountRequest{"id-a": {Username: "alicesmith"}},
		Summary: domain.ImportSummary{
			ImportedCount: 1,
			FailedCount:   1,
			Failures: []domain.ImportFailure{{
				FirstName: "Bob", LastName: "Ray", Username: "bobray", Email: "bob@x.com", Reason: "email already taken",
			}},
		},
	}}
	e := newFormServer(useCase)

	req := newUploadRequest(t, formPath, &uploadFile{name: "users.csv", content: "Alice,Smith,a@x.com\n"}, "administrator")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := html.UnescapeString(rec.Body.String())
	if !strings.Contains(body, "Successfully imported 1 users.") {
		t.Fatal("expected summary notice")
	}
	if !strings.Contains(body, "Could not create user Bob Ray (username: bobray) (email: bob@x.com); exception: email already taken") {
		t.Fatal("expected failure line")
	}
	if !strings.Contains(body, `value="administrator" checked>`) {
		t.Fatal("expected selected role to stay checked")
	}
}

func TestImportFormSubmitNothingImported(t *testing.T) {
	t.Parallel()

	e := newFormServer(&fakeImportUseCase{})

	req := newUploadRequest(t, formPath, &uploadFile{name: "users.csv"}, "anonymous")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No users imported.") {
		t.Fatal("expected empty import notice")
	}
}

func TestImportFormSubmitImportBusy(t *testing.T) {
	t.Parallel()

	e := newFormServer(&fakeImportUseCase{err: app.ErrImportInProgress})

	req := newUploadRequest(t, formPath, &uploadFile{name: "users.csv"}, "anonymous")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
