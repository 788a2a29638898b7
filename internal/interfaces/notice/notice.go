// Package notice renders the human-readable messages shown after an import.
package notice

import (
	"fmt"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

const (
	NoUsersImported = "No users imported."
	RolesRequired   = "Please select at least one role to apply to the imported user(s)."
	FileRequired    = "Please upload a .csv file."
	ImportBusy      = "Another import is in progress. Please try again shortly."
	ImportAborted   = "The import stopped early because the file could not be read."
)

func Imported(count int) string {
	if count <= 0 {
		return NoUsersImported
	}
	return fmt.Sprintf("Successfully imported %d users.", count)
}

func Failure(f domain.ImportFailure) string {
	return fmt.Sprintf("Could not create user %s %s (username: %s) (email: %s); exception: %s",
		f.FirstName, f.LastName, f.Username, f.Email, f.Reason)
}

func Failures(failures []domain.ImportFailure) []string {
	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		lines = append(lines, Failure(f))
	}
	return lines
}
