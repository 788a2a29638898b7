package user

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"github.com/mohammadpnp/csv-user-import/internal/logging"
)

const (
	defaultMaxStoredFailures = 100
	defaultMaxCreateAttempts = 3
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type ImportUsersFromCSVInput struct {
	FileName string
	Source   io.ReadCloser
	Roles    []domain.RoleID
}

// ImportUsersFromCSVOutput holds what a run produced. Created is keyed by the
// identifier the directory assigned to each new account.
type ImportUsersFromCSVOutput struct {
	RunID   string
	Created map[string]domain.AccountRequest
	Summary domain.ImportSummary
}

func (o ImportUsersFromCSVOutput) ImportedCount() int {
	return len(o.Created)
}

type ImportUsersFromCSV interface {
	Execute(ctx context.Context, in ImportUsersFromCSVInput) (ImportUsersFromCSVOutput, error)
}

type importRunRecorder interface {
	Start(ctx context.Context, fileName string, roles []domain.RoleID) (string, error)
	Finish(ctx context.Context, runID string, summary domain.ImportSummary) error
	Fail(ctx context.Context, runID string, summary domain.ImportSummary, reason string) error
}

type ImportUsersFromCSVConfig struct {
	MaxUsernameProbes int
	MaxCreateAttempts int
	MaxStoredFailures int
}

type importUsersFromCSV struct {
	directory domain.AccountDirectory
	runs      importRunRecorder
	lock      ImportLock
	resolver  *UsernameResolver
	mapper    *RowMapper
	cfg       ImportUsersFromCSVConfig
}

func NewImportUsersFromCSV(directory domain.AccountDirectory, runs importRunRecorder, lock ImportLock, cfg ImportUsersFromCSVConfig) ImportUsersFromCSV {
	if cfg.MaxCreateAttempts <= 0 {
		cfg.MaxCreateAttempts = defaultMaxCreateAttempts
	}
	if cfg.MaxStoredFailures <= 0 {
		cfg.MaxStoredFailures = defaultMaxStoredFailures
	}
	if lock == nil {
		lock = NewLocalImportLock()
	}

	resolver := NewUsernameResolver(directory, cfg.MaxUsernameProbes)

	return &importUsersFromCSV{
		directory: directory,
		runs:      runs,
		lock:      lock,
		resolver:  resolver,
		mapper:    NewRowMapper(resolver),
		cfg:       cfg,
	}
}

// Execute always closes in.Source. Row-level failures are recorded in the
// summary and never abort the run; a read error on the source does, and the
// output then holds the accounts created before it.
func (uc *importUsersFromCSV) Execute(ctx context.Context, in ImportUsersFromCSVInput) (ImportUsersFromCSVOutput, error) {
	if in.Source == nil {
		return ImportUsersFromCSVOutput{}, ErrInvalidImportSource
	}
	defer in.Source.Close()

	fileName := strings.TrimSpace(in.FileName)
	if fileName == "" || strings.ToLower(filepath.Ext(fileName)) != ".csv" {
		return ImportUsersFromCSVOutput{}, ErrInvalidImportSource
	}

	importCfg, err := domain.NewImportConfig(in.Roles)
	if err != nil {
		return ImportUsersFromCSVOutput{}, err
	}

	release, err := uc.lock.Acquire(ctx)
	if err != nil {
		return ImportUsersFromCSVOutput{}, fmt.Errorf("%w: %v", ErrImportInProgress, err)
	}
	defer release()

	runID, err := uc.runs.Start(ctx, fileName, importCfg.Roles())
	if err != nil {
		return ImportUsersFromCSVOutput{}, fmt.Errorf("%w: %v", ErrStartImportRun, err)
	}

	log := logging.WithFields(ctx, "run_id", runID, "file", fileName)
	log.Info("user import started", "roles", domain.RoleStrings(importCfg.Roles()))

	out := ImportUsersFromCSVOutput{
		RunID:   runID,
		Created: make(map[string]domain.AccountRequest),
	}

	// The run record is written even when ctx was cancelled mid-import.
	recordCtx := context.WithoutCancel(ctx)

	if err := uc.process(ctx, log, in.Source, importCfg, &out); err != nil {
		if failErr := uc.runs.Fail(recordCtx, runID, out.Summary, truncateReason(err.Error())); failErr != nil {
			log.Error("record failed import run", "error", failErr)
		}
		log.Error("user import aborted", "error", err, "imported", out.Summary.ImportedCount)
		return out, err
	}

	if err := uc.runs.Finish(recordCtx, runID, out.Summary); err != nil {
		log.Error("record finished import run", "error", err)
	}

	log.Info("user import finished",
		"processed", out.Summary.ProcessedCount,
		"imported", out.Summary.ImportedCount,
		"skipped", out.Summary.SkippedCount,
		"failed", out.Summary.FailedCount,
	)

	return out, nil
}

func (uc *importUsersFromCSV) process(ctx context.Context, log *slog.Logger, src io.Reader, cfg domain.ImportConfig, out *ImportUsersFromCSVOutput) error {
	reader := csv.NewReader(skipBOM(src))
	reader.FieldsPerRecord = -1

	summary := &out.Summary
	var rowNumber int64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		rowNumber++

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				summary.ProcessedCount++
				summary.SkippedCount++
				log.Debug("skipping unparsable row", "row", rowNumber, "error", err)
				continue
			}
			return fmt.Errorf("%w: row %d: %v", ErrReadImportSource, rowNumber, err)
		}

		summary.ProcessedCount++

		req, err := uc.mapper.Map(ctx, row, cfg)
		if err != nil {
			uc.recordFailure(log, summary, rowNumber, domain.AccountRequest{
				FirstName: row[0],
				LastName:  row[1],
				Email:     strings.TrimSpace(row[2]),
			}, err)
			continue
		}
		if req == nil {
			summary.SkippedCount++
			log.Debug("skipping row with too few fields", "row", rowNumber, "fields", len(row))
			continue
		}

		id, created, err := uc.create(ctx, *req)
		if err != nil {
			uc.recordFailure(log, summary, rowNumber, created, err)
			continue
		}

		out.Created[id] = created
		summary.ImportedCount++
	}
}

// create retries with a freshly resolved username when another writer took
// the resolved one between the lookup and the insert.
func (uc *importUsersFromCSV) create(ctx context.Context, req domain.AccountRequest) (string, domain.AccountRequest, error) {
	for attempt := 1; ; attempt++ {
		id, err := uc.directory.CreateAccount(ctx, req)
		if err == nil {
			return id, req, nil
		}
		if !errors.Is(err, domain.ErrDuplicateUsername) || attempt >= uc.cfg.MaxCreateAttempts {
			return "", req, err
		}

		username, resolveErr := uc.resolver.Resolve(ctx, req.FirstName, req.LastName)
		if resolveErr != nil {
			return "", req, resolveErr
		}
		req.Username = username
	}
}

func (uc *importUsersFromCSV) recordFailure(log *slog.Logger, summary *domain.ImportSummary, row int64, req domain.AccountRequest, err error) {
	summary.FailedCount++

	log.Warn("could not create user",
		"row", row,
		"first_name", req.FirstName,
		"last_name", req.LastName,
		"username", req.Username,
		"email", req.Email,
		"error", err,
	)

	if len(summary.Failures) >= uc.cfg.MaxStoredFailures {
		return
	}
	summary.Failures = append(summary.Failures, domain.ImportFailure{
		Row:       row,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Reason:    truncateReason(err.Error()),
	})
}

func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

func truncateReason(reason string) string {
	const maxLen = 1000
	reason = strings.TrimSpace(reason)
	if len(reason) <= maxLen {
		return reason
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}
