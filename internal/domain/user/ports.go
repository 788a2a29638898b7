package user

import "context"

// AccountDirectory is the user store an import writes into.
//
// CreateAccount returns the identifier of the new account. It must report a
// username collision as ErrDuplicateUsername (wrapped). Emails are not unique
// by default; a directory that enforces them reports ErrDuplicateEmail.
type AccountDirectory interface {
	FindByUsername(ctx context.Context, username string) ([]Account, error)
	CreateAccount(ctx context.Context, req AccountRequest) (string, error)
}

// UsernamePrefixLister is implemented by directories that can return every
// username starting with a prefix in one query.
type UsernamePrefixLister interface {
	UsernamesWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

type UserQueryRepository interface {
	GetByID(ctx context.Context, userID string) (*Account, error)
}

type ImportRunRepository interface {
	Start(ctx context.Context, fileName string, roles []RoleID) (string, error)
	Finish(ctx context.Context, runID string, summary ImportSummary) error
	Fail(ctx context.Context, runID string, summary ImportSummary, reason string) error
	GetByID(ctx context.Context, runID string) (*ImportRun, error)
}
