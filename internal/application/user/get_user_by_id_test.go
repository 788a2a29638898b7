package user_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

type fakeUserQueryRepo struct {
	account   *domain.Account
	returnErr error
}

func (f *fakeUserQueryRepo) GetByID(ctx context.Context, userID string) (*domain.Account, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	return f.account, nil
}

func TestGetUserByIDSuccess(t *testing.T) {
	t.Parallel()

	repo := &fakeUserQueryRepo{account: &domain.Account{
		ID:        "a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e",
		Username:  "janedoe",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Roles:     []domain.RoleID{domain.RoleAdministrator, domain.RoleAuthenticated},
		Enabled:   true,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}

	uc := app.NewGetUserByID(repo)

	out, err := uc.Execute(context.Background(), app.GetUserByIDInput{ID: "a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Username != "janedoe" {
		t.Fatalf("unexpected username: %s", out.Username)
	}
	if !slices.Equal(out.Roles, []string{"administrator", "authenticated"}) {
		t.Fatalf("unexpected roles: %v", out.Roles)
	}
	if !out.Enabled {
		t.Fatal("expected enabled account")
	}
}

func TestGetUserByIDInvalidID(t *testing.T) {
	t.Parallel()

	uc := app.NewGetUserByID(&fakeUserQueryRepo{})

	_, err := uc.Execute(context.Background(), app.GetUserByIDInput{ID: "not-a-uuid"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, app.ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID, got %v", err)
	}
}

func TestGetUserByIDNotFound(t *testing.T) {
	t.Parallel()

	uc := app.NewGetUserByID(&fakeUserQueryRepo{returnErr: domain.ErrUserNotFound})

	_, err := uc.Execute(context.Background(), app.GetUserByIDInput{ID: "a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e"})
	if !errors.Is(err, app.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserByIDRepositoryError(t *testing.T) {
	t.Parallel()

	uc := app.NewGetUserByID(&fakeUserQueryRepo{returnErr: errors.New("db down")})

	_, err := uc.Execute(context.Background(), app.GetUserByIDInput{ID: "a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e"})
	if !errors.Is(err, app.ErrGetUserByID) {
		t.Fatalf("expected ErrGetUserByID, got %v", err)
	}
}
