package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

type FindUsersByUsernameInput struct {
	Username string
}

type UserSummaryOutput struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// FindUsersByUsernameOutput lists the accounts whose username equals the
// input exactly. It is empty rather than an error when nothing matches.
type FindUsersByUsernameOutput struct {
	Users []UserSummaryOutput `json:"users"`
}

// FindUsersByUsername answers "is this username taken" with the same exact,
// case-sensitive match the importer uses when it picks usernames.
type FindUsersByUsername interface {
	Execute(ctx context.Context, in FindUsersByUsernameInput) (FindUsersByUsernameOutput, error)
}

type findUsersByUsername struct {
	directory domain.AccountDirectory
}

func NewFindUsersByUsername(directory domain.AccountDirectory) FindUsersByUsername {
	return &findUsersByUsername{directory: directory}
}

func (uc *findUsersByUsername) Execute(ctx context.Context, in FindUsersByUsernameInput) (FindUsersByUsernameOutput, error) {
	if strings.TrimSpace(in.Username) == "" {
		return FindUsersByUsernameOutput{}, ErrUsernameRequired
	}

	accounts, err := uc.directory.FindByUsername(ctx, in.Username)
	if err != nil {
		return FindUsersByUsernameOutput{}, fmt.Errorf("%w: %v", ErrFindUsersByUsername, err)
	}

	out := FindUsersByUsernameOutput{Users: make([]UserSummaryOutput, 0, len(accounts))}
	for _, account := range accounts {
		out.Users = append(out.Users, UserSummaryOutput{
			ID:        account.ID,
			Username:  account.Username,
			FirstName: account.FirstName,
			LastName:  account.LastName,
			Email:     account.Email,
			Enabled:   account.Enabled,
			CreatedAt: account.CreatedAt,
		})
	}
	return out, nil
}
