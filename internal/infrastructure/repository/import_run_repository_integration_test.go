package repository_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/repository"
)

func TestImportRunRepositoryLifecycleIntegration(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	repo := repository.NewImportRunRepository(db)

	runID, err := repo.Start(ctx, "users.csv", []domain.RoleID{domain.RoleAdministrator, domain.RoleAuthenticated})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if strings.TrimSpace(runID) == "" {
		t.Fatal("expected non-empty run id")
	}

	summary := domain.ImportSummary{
		ProcessedCount: 3,
		ImportedCount:  2,
		FailedCount:    1,
		Failures: []domain.ImportFailure{{
			Row:       2,
			FirstName: "Bob",
			LastName:  "Ray",
			Username:  "bobray",
			Email:     "bob@x.com",
			Reason:    "email already taken",
		}},
	}
	if err := repo.Finish(ctx, runID, summary); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	run, err := repo.GetByID(ctx, runID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if run.Status != domain.ImportRunSucceeded {
		t.Fatalf("unexpected status: %s", run.Status)
	}
	if run.Summary.ImportedCount != 2 || len(run.Summary.Failures) != 1 {
		t.Fatalf("unexpected summary: %+v", run.Summary)
	}
	if run.FinishedAt == nil {
		t.Fatal("expected finished_at")
	}

	failedID, err := repo.Start(ctx, "broken.csv", []domain.RoleID{domain.RoleAuthenticated})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := repo.Fail(ctx, failedID, domain.ImportSummary{}, "read error"); err != nil {
		t.Fatalf("fail failed: %v", err)
	}
	failed, err := repo.GetByID(ctx, failedID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if failed.Status != domain.ImportRunFailed || failed.ErrorMessage != "read error" {
		t.Fatalf("unexpected failed run: %+v", failed)
	}

	if err := repo.Finish(ctx, "11111111-1111-1111-1111-111111111111", summary); !errors.Is(err, domain.ErrImportRunNotFound) {
		t.Fatalf("expected ErrImportRunNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "11111111-1111-1111-1111-111111111111"); !errors.Is(err, domain.ErrImportRunNotFound) {
		t.Fatalf("expected ErrImportRunNotFound, got %v", err)
	}
}
