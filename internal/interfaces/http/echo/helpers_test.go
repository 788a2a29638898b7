package echo_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
)

type fakeImportUseCase struct {
	output app.ImportUsersFromCSVOutput
	err    error

	calls    int
	input    app.ImportUsersFromCSVInput
	contents string
}

func (f *fakeImportUseCase) Execute(ctx context.Context, in app.ImportUsersFromCSVInput) (app.ImportUsersFromCSVOutput, error) {
	f.calls++
	f.input = in
	if in.Source != nil {
		data, _ := io.ReadAll(in.Source)
		f.contents = string(data)
		_ = in.Source.Close()
	}
	return f.output, f.err
}

type uploadFile struct {
	name    string
	content string
}

func newUploadRequest(t *testing.T, path string, file *uploadFile, roles ...string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, role := range roles {
		if err := writer.WriteField("roles", role); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile("file", file.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(file.content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
