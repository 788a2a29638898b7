package user

import (
	"fmt"
	"slices"
)

type RoleID string

const (
	RoleAnonymous     RoleID = "anonymous"
	RoleAuthenticated RoleID = "authenticated"
	RoleAdministrator RoleID = "administrator"
)

// SelectableRoles lists the roles an administrator may pick for an import.
// RoleAuthenticated is never selectable; every imported account gets it.
func SelectableRoles() []RoleID {
	return []RoleID{RoleAnonymous, RoleAdministrator}
}

func IsSelectable(role RoleID) bool {
	return slices.Contains(SelectableRoles(), role)
}

// ImportConfig is fixed for the duration of one import run.
type ImportConfig struct {
	roles []RoleID
}

// NewImportConfig validates the selected roles and adds RoleAuthenticated.
// The authenticated role is accepted in the input because the import form
// always submits it as a checked, disabled box.
func NewImportConfig(selected []RoleID) (ImportConfig, error) {
	roles := make([]RoleID, 0, len(selected)+1)
	picked := 0
	for _, role := range selected {
		if role == "" {
			continue
		}
		if role == RoleAuthenticated {
			continue
		}
		if !IsSelectable(role) {
			return ImportConfig{}, fmt.Errorf("%w: %s", ErrInvalidRole, role)
		}
		roles = append(roles, role)
		picked++
	}
	if picked == 0 {
		return ImportConfig{}, ErrNoRolesSelected
	}

	roles = append(roles, RoleAuthenticated)
	slices.Sort(roles)

	return ImportConfig{roles: slices.Compact(roles)}, nil
}

func (c ImportConfig) Roles() []RoleID {
	return slices.Clone(c.roles)
}

func RoleStrings(roles []RoleID) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}
