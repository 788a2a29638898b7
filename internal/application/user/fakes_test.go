package user_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

type fakeDirectory struct {
	mu sync.Mutex

	accounts   map[string]domain.Account
	emails     map[string]bool
	createErrs map[string]error
	// uniqueEmails mimics a store that carries a users_email_key constraint
	uniqueEmails bool
	// usernames another writer claims right before our insert lands
	racedUsernames map[string]bool

	findErr   error
	findCalls int
	created   []domain.AccountRequest
	nextID    int
}

func newFakeDirectory(existing ...string) *fakeDirectory {
	f := &fakeDirectory{
		accounts:       make(map[string]domain.Account),
		emails:         make(map[string]bool),
		createErrs:     make(map[string]error),
		racedUsernames: make(map[string]bool),
	}
	for _, name := range existing {
		f.accounts[name] = domain.Account{ID: "existing-" + name, Username: name}
	}
	return f
}

func (f *fakeDirectory) FindByUsername(ctx context.Context, username string) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	if account, ok := f.accounts[username]; ok {
		return []domain.Account{account}, nil
	}
	return nil, nil
}

func (f *fakeDirectory) CreateAccount(ctx context.Context, req domain.AccountRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.createErrs[req.Email]; err != nil {
		return "", err
	}
	if f.racedUsernames[req.Username] {
		delete(f.racedUsernames, req.Username)
		f.accounts[req.Username] = domain.Account{ID: "raced-" + req.Username, Username: req.Username}
		return "", fmt.Errorf("insert user: %w", domain.ErrDuplicateUsername)
	}
	if _, ok := f.accounts[req.Username]; ok {
		return "", fmt.Errorf("insert user: %w", domain.ErrDuplicateUsername)
	}
	if f.uniqueEmails && f.emails[req.Email] {
		return "", fmt.Errorf("insert user: %w", domain.ErrDuplicateEmail)
	}

	f.nextID++
	id := fmt.Sprintf("id-%d", f.nextID)
	f.accounts[req.Username] = domain.Account{ID: id, Username: req.Username, Email: req.Email}
	f.emails[req.Email] = true
	f.created = append(f.created, req)
	return id, nil
}

type fakePrefixDirectory struct {
	*fakeDirectory
	prefixCalls int
}

func (f *fakePrefixDirectory) UsernamesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prefixCalls++
	var names []string
	for name := range f.accounts {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

type fakeRunRecorder struct {
	runID      string
	startErr   error
	started    bool
	gotFile    string
	gotRoles   []domain.RoleID
	finished   *domain.ImportSummary
	failed     *domain.ImportSummary
	failReason string
}

func (f *fakeRunRecorder) Start(ctx context.Context, fileName string, roles []domain.RoleID) (string, error) {
	f.started = true
	f.gotFile = fileName
	f.gotRoles = roles
	if f.startErr != nil {
		return "", f.startErr
	}
	if f.runID == "" {
		return "run-1", nil
	}
	return f.runID, nil
}

func (f *fakeRunRecorder) Finish(ctx context.Context, runID string, summary domain.ImportSummary) error {
	f.finished = &summary
	return nil
}

func (f *fakeRunRecorder) Fail(ctx context.Context, runID string, summary domain.ImportSummary, reason string) error {
	f.failed = &summary
	f.failReason = reason
	return nil
}

type trackingSource struct {
	io.Reader
	closed bool
}

func (s *trackingSource) Close() error {
	s.closed = true
	return nil
}

func newSource(data string) *trackingSource {
	return &trackingSource{Reader: strings.NewReader(data)}
}

// brokenReader returns data first and then fails.
type brokenReader struct {
	data string
	read bool
}

func (r *brokenReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, errors.New("disk on fire")
}

type busyLock struct{}

func (busyLock) Acquire(ctx context.Context) (func(), error) {
	return nil, errors.New("lock held by run-0")
}
