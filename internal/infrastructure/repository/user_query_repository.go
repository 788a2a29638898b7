package repository

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

var _ domain.UserQueryRepository = (*UserQueryRepository)(nil)

type UserQueryRepository struct {
	db *gorm.DB
}

func NewUserQueryRepository(db *gorm.DB) *UserQueryRepository {
	return &UserQueryRepository{db: db}
}

func (r *UserQueryRepository) GetByID(ctx context.Context, userID string) (*domain.Account, error) {
	var row models.User

	err := r.db.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB {
			return db.Order("role")
		}).
		First(&row, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	roles := make([]domain.RoleID, 0, len(row.Roles))
	for _, role := range row.Roles {
		roles = append(roles, domain.RoleID(role.Role))
	}

	return &domain.Account{
		ID:        row.ID,
		Username:  row.Username,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Roles:     roles,
		Enabled:   row.Enabled,
		CreatedAt: row.CreatedAt,
	}, nil
}
