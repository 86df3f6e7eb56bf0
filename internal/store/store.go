/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package store persists game sessions behind a keyed interface.
//
// Every backend treats a session whose expiry has passed as absent, and
// serializes Update per session id so read-modify-write sequences never lose
// a concurrent write.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Seednode/homebet/internal/models"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")

	// ErrExists is returned by Create when a live session holds the id.
	ErrExists = errors.New("session already exists")
)

// UpdateFunc mutates a session in place. Returning an error aborts the update
// and leaves the stored session untouched.
type UpdateFunc func(s *models.Session) error

// Store is a keyed session store.
type Store interface {
	// Get returns a copy of the live session with the given id.
	Get(ctx context.Context, id string) (models.Session, error)

	// Set writes s unconditionally.
	Set(ctx context.Context, s models.Session) error

	// Create writes s only if no live session holds s.ID.
	Create(ctx context.Context, s models.Session) error

	// Update atomically applies fn to the live session and returns the result.
	Update(ctx context.Context, id string, fn UpdateFunc) (models.Session, error)

	// Delete removes the session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error

	// Sweep removes expired sessions and reports how many were dropped.
	Sweep(ctx context.Context) (int, error)

	Close() error
}

// Clock returns the current time.
type Clock func() time.Time

// RunSweeper calls s.Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, s Store, interval time.Duration, logf func(string, ...any)) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if logf == nil {
				continue
			}
			if err != nil {
				logf("STORE: Sweep failed: %v", err)
				continue
			}
			if n > 0 {
				logf("STORE: Swept %d expired sessions", n)
			}
		}
	}
}
