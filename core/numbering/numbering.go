// Package numbering assigns practice set indexes inside a scope.
//
// A scope is (owner, section, struggle, day). Indexes start at 1 and grow by one;
// gaps left by deletions are never refilled. Concurrent creators are serialized per
// scope through a Locker, and a uniqueness violation on insert is retried with a
// fresh index.
package numbering

import (
	"context"
	"errors"
	"fmt"

	"Articulate/apperr"
	"Articulate/logger"
)

// MaxAttempts bounds how often Create recomputes an index after a conflict.
const MaxAttempts = 3

// Scope identifies one numbering sequence.
type Scope struct {
	OwnerID     string
	SectionType string
	StruggleID  string // "" for sets without a struggle
	DateBucket  string
}

// Key is the lock key of the scope.
func (s Scope) Key() string {
	struggle := s.StruggleID
	if struggle == "" {
		struggle = "-"
	}
	return fmt.Sprintf("articulate:set-index:%s:%s:%s:%s", s.OwnerID, s.SectionType, struggle, s.DateBucket)
}

// Store reads the current maximum index of a scope (0 when empty).
type Store interface {
	MaxSetIndex(ctx context.Context, scope Scope) (int, error)
}

// Locker serializes work on a scope key.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// NoopLocker is used when no Redis is configured; the unique index plus the
// retry loop in Create still keep indexes unique.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// Assign returns requested when it is positive, otherwise max+1 for the scope.
func Assign(ctx context.Context, store Store, scope Scope, requested *int) (int, error) {
	if requested != nil && *requested > 0 {
		return *requested, nil
	}
	max, err := store.MaxSetIndex(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("read max set index: %w", err)
	}
	return max + 1, nil
}

// Create assigns an index and calls insert with it while holding the scope lock.
// An explicitly requested index is never retried; a conflict on it is returned
// as apperr.ErrConflict.
func Create(ctx context.Context, store Store, locker Locker, scope Scope, requested *int, insert func(index int) error) (int, error) {
	if locker == nil {
		locker = NoopLocker{}
	}
	explicit := requested != nil && *requested > 0

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		index, err := createOnce(ctx, store, locker, scope, requested, insert)
		if err == nil {
			return index, nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return 0, err
		}
		lastErr = err
		if explicit {
			break
		}
		logger.Warn("set index conflict, retrying",
			logger.String("scope", scope.Key()),
			logger.Int("attempt", attempt),
			logger.Int("setIndex", index))
	}
	return 0, fmt.Errorf("assign set index for %s: %w", scope.Key(), lastErr)
}

func createOnce(ctx context.Context, store Store, locker Locker, scope Scope, requested *int, insert func(index int) error) (int, error) {
	unlock, err := locker.Lock(ctx, scope.Key())
	if err != nil {
		return 0, fmt.Errorf("lock scope: %w", err)
	}
	defer unlock()

	index, err := Assign(ctx, store, scope, requested)
	if err != nil {
		return 0, err
	}
	if err := insert(index); err != nil {
		return index, err
	}
	return index, nil
}
