package user

import (
	"slices"
	"time"
)

// AccountRequest carries the values needed to create one account. It is
// built from a CSV row and handed straight to the AccountDirectory.
type AccountRequest struct {
	Username     string
	FirstName    string
	LastName     string
	Email        string
	InitialEmail string
	Roles        []RoleID
	Enabled      bool
	CreatedAt    time.Time
}

func (r AccountRequest) HasRole(role RoleID) bool {
	return slices.Contains(r.Roles, role)
}

type Account struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Email     string
	Roles     []RoleID
	Enabled   bool
	CreatedAt time.Time
}
