package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-8][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

type GetUserByIDInput struct {
	ID string
}

type GetUserByIDOutput struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

type GetUserByID interface {
	Execute(ctx context.Context, in GetUserByIDInput) (GetUserByIDOutput, error)
}

type getUserByID struct {
	repo domain.UserQueryRepository
}

func NewGetUserByID(repo domain.UserQueryRepository) GetUserByID {
	return &getUserByID{repo: repo}
}

func (uc *getUserByID) Execute(ctx context.Context, in GetUserByIDInput) (GetUserByIDOutput, error) {
	if !uuidPattern.MatchString(in.ID) {
		return GetUserByIDOutput{}, ErrInvalidUserID
	}

	account, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return GetUserByIDOutput{}, ErrUserNotFound
		}
		return GetUserByIDOutput{}, fmt.Errorf("%w: %v", ErrGetUserByID, err)
	}

	return GetUserByIDOutput{
		ID:        account.ID,
		Username:  account.Username,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Email:     account.Email,
		Roles:     domain.RoleStrings(account.Roles),
		Enabled:   account.Enabled,
		CreatedAt: account.CreatedAt,
	}, nil
}
