package user

import (
	"context"
	"sync"
)

// ImportLock serializes import runs. Acquire blocks until the lock is held
// or ctx is done; the returned release func may be called more than once.
type ImportLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}

type localImportLock struct {
	sem chan struct{}
}

// NewLocalImportLock returns a lock that serializes imports within this
// process only.
func NewLocalImportLock() ImportLock {
	return &localImportLock{sem: make(chan struct{}, 1)}
}

func (l *localImportLock) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() { <-l.sem })
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
