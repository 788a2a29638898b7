package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

var _ domain.ImportRunRepository = (*ImportRunRepository)(nil)

// ImportRunRepository keeps one row per import run in import_runs.
type ImportRunRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewImportRunRepository(db *gorm.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db, now: time.Now}
}

func (r *ImportRunRepository) Start(ctx context.Context, fileName string, roles []domain.RoleID) (string, error) {
	run := models.ImportRun{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Roles:     domain.RoleStrings(roles),
		Status:    domain.ImportRunRunning,
		Failures:  []models.ImportRunFailure{},
		StartedAt: r.now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return "", fmt.Errorf("create import run: %w", err)
	}

	return run.ID, nil
}

func (r *ImportRunRepository) Finish(ctx context.Context, runID string, summary domain.ImportSummary) error {
	return r.finish(ctx, runID, domain.ImportRunSucceeded, summary, nil)
}

func (r *ImportRunRepository) Fail(ctx context.Context, runID string, summary domain.ImportSummary, reason string) error {
	return r.finish(ctx, runID, domain.ImportRunFailed, summary, &reason)
}

func (r *ImportRunRepository) finish(ctx context.Context, runID, status string, summary domain.ImportSummary, reason *string) error {
	finishedAt := r.now().UTC()
	update := models.ImportRun{
		Status:         status,
		ProcessedCount: summary.ProcessedCount,
		ImportedCount:  summary.ImportedCount,
		SkippedCount:   summary.SkippedCount,
		FailedCount:    summary.FailedCount,
		Failures:       toFailureModels(summary.Failures),
		ErrorMessage:   reason,
		FinishedAt:     &finishedAt,
	}

	result := r.db.WithContext(ctx).
		Model(&models.ImportRun{}).
		Where("id = ?", runID).
		Select("status", "processed_count", "imported_count", "skipped_count", "failed_count", "failures", "error_message", "finished_at", "updated_at").
		Updates(&update)
	if result.Error != nil {
		return fmt.Errorf("update import run %s: %w", status, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrImportRunNotFound
	}

	return nil
}

func (r *ImportRunRepository) GetByID(ctx context.Context, runID string) (*domain.ImportRun, error) {
	var row models.ImportRun

	if err := r.db.WithContext(ctx).First(&row, "id = ?", runID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrImportRunNotFound
		}
		return nil, fmt.Errorf("get import run: %w", err)
	}

	roles := make([]domain.RoleID, 0, len(row.Roles))
	for _, role := range row.Roles {
		roles = append(roles, domain.RoleID(role))
	}

	failures := make([]domain.ImportFailure, 0, len(row.Failures))
	for _, f := range row.Failures {
		failures = append(failures, domain.ImportFailure{
			Row:       f.Row,
			FirstName: f.FirstName,
			LastName:  f.LastName,
			Username:  f.Username,
			Email:     f.Email,
			Reason:    f.Reason,
		})
	}

	run := &domain.ImportRun{
		ID:       row.ID,
		FileName: row.FileName,
		Roles:    roles,
		Status:   row.Status,
		Summary: domain.ImportSummary{
			ProcessedCount: row.ProcessedCount,
			ImportedCount:  row.ImportedCount,
			SkippedCount:   row.SkippedCount,
			FailedCount:    row.FailedCount,
			Failures:       failures,
		},
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
	}
	if row.ErrorMessage != nil {
		run.ErrorMessage = *row.ErrorMessage
	}

	return run, nil
}

func toFailureModels(failures []domain.ImportFailure) []models.ImportRunFailure {
	out := make([]models.ImportRunFailure, 0, len(failures))
	for _, f := range failures {
		out = append(out, models.ImportRunFailure{
			Row:       f.Row,
			FirstName: f.FirstName,
			LastName:  f.LastName,
			Username:  f.Username,
			Email:     f.Email,
			Reason:    f.Reason,
		})
	}
	return out
}
