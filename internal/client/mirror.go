/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package client

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/Seednode/homebet/internal/errors"
	"github.com/Seednode/homebet/internal/models"
)

// DefaultInterval is used until the server advertises its own.
const DefaultInterval = 2 * time.Second

// Mirror keeps a local copy of one server-held session. Every successful poll
// replaces the copy wholesale; the server is the only source of truth.
type Mirror struct {
	client    *Client
	sessionID string

	// Interval between polls. Zero adopts the server's advertised interval.
	Interval time.Duration

	// OnUpdate, if set, receives every snapshot read from the server.
	OnUpdate func(models.Session)

	// Logf receives diagnostic messages. Nil disables logging.
	Logf func(format string, args ...any)

	mu       sync.Mutex
	snapshot models.Session
	cached   bool
	advised  time.Duration
}

// NewMirror returns a mirror of sessionID.
func NewMirror(c *Client, sessionID string) *Mirror {
	return &Mirror{client: c, sessionID: sessionID}
}

// Seed caches a snapshot obtained elsewhere, such as at creation time, so it
// can be offered back to the server if the session goes missing.
func (m *Mirror) Seed(s models.Session) {
	if s.ID != m.sessionID {
		return
	}
	m.mu.Lock()
	m.snapshot = s.Clone()
	m.cached = true
	m.mu.Unlock()
}

// Snapshot returns the last known good session.
func (m *Mirror) Snapshot() (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cached {
		return models.Session{}, false
	}
	return m.snapshot.Clone(), true
}

// Poll reads the session once. When the server reports it missing and a
// cached snapshot exists, the snapshot is offered for rehydration and, if
// restored, returned unchanged.
func (m *Mirror) Poll(ctx context.Context) (models.Session, error) {
	session, interval, err := m.client.Get(ctx, m.sessionID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		return m.rehydrate(ctx, err)
	default:
		return models.Session{}, err
	}

	m.mu.Lock()
	m.snapshot = session.Clone()
	m.cached = true
	if interval > 0 {
		m.advised = interval
	}
	m.mu.Unlock()

	if m.OnUpdate != nil {
		m.OnUpdate(session)
	}

	return session, nil
}

func (m *Mirror) rehydrate(ctx context.Context, notFound error) (models.Session, error) {
	cached, ok := m.Snapshot()
	if !ok {
		return models.Session{}, notFound
	}

	restored, err := m.client.Rehydrate(ctx, cached)
	if err != nil {
		return models.Session{}, err
	}
	if !restored {
		return models.Session{}, notFound
	}

	m.logf("Rehydrated session %s from cached snapshot", m.sessionID)

	return cached, nil
}

// Run polls until ctx is done or the session completes. Poll errors are
// logged and retried on the next tick.
func (m *Mirror) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		session, err := m.Poll(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			m.logf("Poll of %s failed: %v", m.sessionID, err)
		case session.Status == models.StatusCompleted:
			return nil
		}

		timer.Reset(m.interval())
	}
}

func (m *Mirror) interval() time.Duration {
	if m.Interval > 0 {
		return m.Interval
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.advised > 0 {
		return m.advised
	}
	return DefaultInterval
}

func (m *Mirror) logf(format string, args ...any) {
	if m.Logf != nil {
		m.Logf(format, args...)
	}
}
