/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/homebet/internal/models"
)

type entry struct {
	mu      sync.Mutex
	session models.Session
	removed bool
}

// Memory keeps sessions in process memory. Its lifetime is the lifetime of
// the value, so a restart loses every session.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     Clock
}

// NewMemory returns an empty in-memory store. A nil clock uses time.Now.
func NewMemory(now Clock) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		entries: make(map[string]*entry),
		now:     now,
	}
}

func (m *Memory) lookup(id string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[id]
}

// lockLive returns the locked entry for id if it holds a live session.
func (m *Memory) lockLive(id string) (*entry, bool) {
	for {
		e := m.lookup(id)
		if e == nil {
			return nil, false
		}
		e.mu.Lock()
		if e.removed {
			// Replaced by Create or Delete while we waited.
			e.mu.Unlock()
			continue
		}
		if e.session.Expired(m.now()) {
			e.mu.Unlock()
			return nil, false
		}
		return e, true
	}
}

func (m *Memory) Get(ctx context.Context, id string) (models.Session, error) {
	if err := ctx.Err(); err != nil {
		return models.Session{}, err
	}

	e, ok := m.lockLive(id)
	if !ok {
		return models.Session{}, ErrNotFound
	}
	defer e.mu.Unlock()

	return e.session.Clone(), nil
}

func (m *Memory) Set(ctx context.Context, s models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("session id is required")
	}

	for {
		e := m.getOrCreate(s.ID)
		e.mu.Lock()
		if e.removed {
			e.mu.Unlock()
			continue
		}
		e.session = s.Clone()
		e.mu.Unlock()
		return nil
	}
}

func (m *Memory) Create(ctx context.Context, s models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("session id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[s.ID]; ok {
		e.mu.Lock()
		if !e.removed && !e.session.Expired(m.now()) {
			e.mu.Unlock()
			return ErrExists
		}
		e.removed = true
		e.mu.Unlock()
	}

	m.entries[s.ID] = &entry{session: s.Clone()}

	return nil
}

func (m *Memory) Update(ctx context.Context, id string, fn UpdateFunc) (models.Session, error) {
	if err := ctx.Err(); err != nil {
		return models.Session{}, err
	}

	e, ok := m.lockLive(id)
	if !ok {
		return models.Session{}, ErrNotFound
	}
	defer e.mu.Unlock()

	next := e.session.Clone()
	if err := fn(&next); err != nil {
		return models.Session{}, err
	}
	next.ID = id
	e.session = next

	return next.Clone(), nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()

	if ok {
		e.mu.Lock()
		e.removed = true
		e.mu.Unlock()
	}
	return nil
}

func (m *Memory) Sweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := m.now()
	removed := 0

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.entries {
		e.mu.Lock()
		if e.session.Expired(now) {
			e.removed = true
			delete(m.entries, id)
			removed++
		}
		e.mu.Unlock()
	}

	return removed, nil
}

// Len reports the number of stored sessions, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) getOrCreate(id string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		e = &entry{}
		m.entries[id] = e
	}
	return e
}
