package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mohammadpnp/csv-user-import/internal/auth"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

func TestWriteReport(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	writeReport(&out, &errOut, app.ImportUsersFromCSVOutput{
		RunID:   "run-1",
		Created: map[string]domain.AccountRequest{"id-a": {}, "id-b": {}},
		Summary: domain.ImportSummary{
			ProcessedCount: 3,
			ImportedCount:  2,
			FailedCount:    1,
			Failures: []domain.ImportFailure{{
				FirstName: "Bob", LastName: "Ray", Username: "bobray", Email: "bob@x.com", Reason: "email already taken",
			}},
		},
	})

	wantOut := "Successfully imported 2 users.\nrun: run-1 (processed 3, skipped 0, failed 1)\n"
	if out.String() != wantOut {
		t.Fatalf("expected stdout %q, got %q", wantOut, out.String())
	}
	wantErr := "Could not create user Bob Ray (username: bobray) (email: bob@x.com); exception: email already taken\n"
	if errOut.String() != wantErr {
		t.Fatalf("expected stderr %q, got %q", wantErr, errOut.String())
	}
}

func TestWriteReportNothingImported(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	writeReport(&out, &errOut, app.ImportUsersFromCSVOutput{})

	if out.String() != "No users imported.\n" {
		t.Fatalf("unexpected stdout %q", out.String())
	}
	if errOut.Len() != 0 {
		t.Fatalf("expected empty stderr, got %q", errOut.String())
	}
}

func TestPrintToken(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if err := printToken(&out, "cli-secret", tokenOptions{subject: "ops", ttl: time.Minute}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	claims, err := auth.Authorize(strings.TrimSpace(out.String()), []byte("cli-secret"))
	if err != nil {
		t.Fatalf("expected printed token to verify, got %v", err)
	}
	if claims.Subject != "ops" {
		t.Fatalf("expected subject ops, got %q", claims.Subject)
	}

	if err := printToken(&out, "", tokenOptions{ttl: time.Minute}); err == nil {
		t.Fatal("expected missing secret to fail")
	}
}

func TestRunCmdRequiresFlags(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"run", "--role", "administrator"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), `"file"`) {
		t.Fatalf("expected required file flag error, got %v", err)
	}
}
