package user

import "time"

const (
	ImportRunRunning   = "running"
	ImportRunSucceeded = "succeeded"
	ImportRunFailed    = "failed"
)

// ImportFailure describes one CSV record that did not become an account.
// Row is the 1-based record number in the uploaded file.
type ImportFailure struct {
	Row       int64
	FirstName string
	LastName  string
	Username  string
	Email     string
	Reason    string
}

type ImportSummary struct {
	ProcessedCount int64
	ImportedCount  int64
	SkippedCount   int64
	FailedCount    int64
	Failures       []ImportFailure
}

type ImportRun struct {
	ID           string
	FileName     string
	Roles        []RoleID
	Status       string
	Summary      ImportSummary
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}
