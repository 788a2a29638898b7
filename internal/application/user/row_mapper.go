package user

import (
	"context"
	"strings"
	"time"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

// MinRowFields is the number of leading columns a CSV record needs:
// first name, last name, email. Extra columns are ignored.
const MinRowFields = 3

type usernameResolver interface {
	Resolve(ctx context.Context, firstName, lastName string) (string, error)
}

type RowMapper struct {
	resolver usernameResolver
	now      func() time.Time
}

func NewRowMapper(resolver usernameResolver) *RowMapper {
	return &RowMapper{resolver: resolver, now: time.Now}
}

// Map builds the account request for one CSV record. It returns nil and no
// error when the record has fewer than MinRowFields fields.
func (m *RowMapper) Map(ctx context.Context, row []string, cfg domain.ImportConfig) (*domain.AccountRequest, error) {
	if len(row) < MinRowFields {
		return nil, nil
	}

	firstName, lastName := row[0], row[1]
	email := strings.TrimSpace(row[2])

	username, err := m.resolver.Resolve(ctx, firstName, lastName)
	if err != nil {
		return nil, err
	}

	roles := cfg.Roles()
	req := &domain.AccountRequest{
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		InitialEmail: email,
		Roles:        roles,
		Enabled:      true,
		CreatedAt:    m.now().UTC(),
	}
	if !req.HasRole(domain.RoleAuthenticated) {
		req.Roles = append(req.Roles, domain.RoleAuthenticated)
	}

	return req, nil
}
