package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

type GetImportRunInput struct {
	ID string
}

type ImportFailureOutput struct {
	Row       int64  `json:"row"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Reason    string `json:"reason"`
}

type GetImportRunOutput struct {
	ID             string                `json:"id"`
	FileName       string                `json:"file_name"`
	Roles          []string              `json:"roles"`
	Status         string                `json:"status"`
	ProcessedCount int64                 `json:"processed_count"`
	ImportedCount  int64                 `json:"imported_count"`
	SkippedCount   int64                 `json:"skipped_count"`
	FailedCount    int64                 `json:"failed_count"`
	Failures       []ImportFailureOutput `json:"failures"`
	ErrorMessage   string                `json:"error_message,omitempty"`
	StartedAt      time.Time             `json:"started_at"`
	FinishedAt     *time.Time            `json:"finished_at,omitempty"`
}

type GetImportRun interface {
	Execute(ctx context.Context, in GetImportRunInput) (GetImportRunOutput, error)
}

type importRunFinder interface {
	GetByID(ctx context.Context, runID string) (*domain.ImportRun, error)
}

type getImportRun struct {
	repo importRunFinder
}

func NewGetImportRun(repo importRunFinder) GetImportRun {
	return &getImportRun{repo: repo}
}

func (uc *getImportRun) Execute(ctx context.Context, in GetImportRunInput) (GetImportRunOutput, error) {
	if !uuidPattern.MatchString(in.ID) {
		return GetImportRunOutput{}, ErrInvalidImportRunID
	}

	run, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrImportRunNotFound) {
			return GetImportRunOutput{}, ErrImportRunNotFound
		}
		return GetImportRunOutput{}, fmt.Errorf("%w: %v", ErrGetImportRun, err)
	}

	return GetImportRunOutput{
		ID:             run.ID,
		FileName:       run.FileName,
		Roles:          domain.RoleStrings(run.Roles),
		Status:         run.Status,
		ProcessedCount: run.Summary.ProcessedCount,
		ImportedCount:  run.Summary.ImportedCount,
		SkippedCount:   run.Summary.SkippedCount,
		FailedCount:    run.Summary.FailedCount,
		Failures:       FailureOutputs(run.Summary.Failures),
		ErrorMessage:   run.ErrorMessage,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
	}, nil
}

func FailureOutputs(failures []domain.ImportFailure) []ImportFailureOutput {
	out := make([]ImportFailureOutput, 0, len(failures))
	for _, f := range failures {
		out = append(out, ImportFailureOutput{
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
