package user

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

const defaultMaxUsernameProbes = 1000

type usernameDirectory interface {
	FindByUsername(ctx context.Context, username string) ([]domain.Account, error)
}

// UsernameResolver derives a login name from a first/last name pair that no
// existing account uses yet.
type UsernameResolver struct {
	dir       usernameDirectory
	maxProbes int
}

func NewUsernameResolver(dir usernameDirectory, maxProbes int) *UsernameResolver {
	if maxProbes <= 0 {
		maxProbes = defaultMaxUsernameProbes
	}
	return &UsernameResolver{dir: dir, maxProbes: maxProbes}
}

// BaseUsername joins the names without a separator and lowercases them.
// Characters are passed through unchanged.
func BaseUsername(firstName, lastName string) string {
	return strings.ToLower(firstName + lastName)
}

// Resolve returns the base name if it is free, otherwise the base name with
// the lowest integer suffix (starting at 1) that is free.
//
// Directories implementing domain.UsernamePrefixLister are asked once for
// every name sharing the base; others are probed name by name, at most
// maxProbes times.
func (r *UsernameResolver) Resolve(ctx context.Context, firstName, lastName string) (string, error) {
	base := BaseUsername(firstName, lastName)

	if lister, ok := r.dir.(domain.UsernamePrefixLister); ok {
		taken, err := lister.UsernamesWithPrefix(ctx, base)
		if err != nil {
			return "", fmt.Errorf("list usernames with prefix %q: %w", base, err)
		}
		return lowestFreeUsername(base, taken), nil
	}

	for i := 0; i < r.maxProbes; i++ {
		candidate := usernameCandidate(base, i)
		existing, err := r.dir.FindByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("find username %q: %w", candidate, err)
		}
		if len(existing) == 0 {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %q after %d attempts", ErrUsernameProbesExhausted, base, r.maxProbes)
}

func usernameCandidate(base string, suffix int) string {
	if suffix == 0 {
		return base
	}
	return base + strconv.Itoa(suffix)
}

func lowestFreeUsername(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, name := range taken {
		used[name] = struct{}{}
	}

	// At most len(taken)+1 candidates are checked.
	for i := 0; ; i++ {
		candidate := usernameCandidate(base, i)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}
