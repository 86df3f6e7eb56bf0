/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package game implements the session state machine: creating sessions,
// joining them, recording guesses and advancing rounds until a winner is set.
package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/Seednode/homebet/internal/errors"
	"github.com/Seednode/homebet/internal/id"
	"github.com/Seednode/homebet/internal/listing"
	"github.com/Seednode/homebet/internal/models"
	"github.com/Seednode/homebet/internal/store"
)

const (
	DefaultTTL         = 24 * time.Hour
	DefaultSwapTimeout = 15 * time.Second
	DefaultCity        = "Provo"
	DefaultState       = "UT"
	DefaultLimit       = 5
	DefaultMaxLimit    = 20

	// MinHandleLength is counted in runes after trimming.
	MinHandleLength = 2

	// SoloHandle replaces an empty solo handle.
	SoloHandle = "You"

	createAttempts = 3
)

var tracer = otel.Tracer("github.com/Seednode/homebet/internal/game")

// Options configures a Service. Zero values select the defaults above.
type Options struct {
	TTL          time.Duration
	SwapTimeout  time.Duration
	DefaultCity  string
	DefaultState string
	DefaultLimit int
	MaxLimit     int

	Now      func() time.Time
	NewID    func() (string, error)
	Fallback func(n int) []models.Property
	Logf     func(format string, args ...any)
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.SwapTimeout <= 0 {
		o.SwapTimeout = DefaultSwapTimeout
	}
	if o.DefaultCity == "" {
		o.DefaultCity = DefaultCity
	}
	if o.DefaultState == "" {
		o.DefaultState = DefaultState
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = DefaultMaxLimit
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = DefaultLimit
	}
	if o.DefaultLimit > o.MaxLimit {
		o.DefaultLimit = o.MaxLimit
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = id.NewID
	}
	if o.Fallback == nil {
		o.Fallback = listing.Fallback
	}
	return o
}

// Service runs the session state machine over an injected store.
type Service struct {
	store   store.Store
	fetcher listing.Fetcher
	opts    Options

	swaps sync.WaitGroup
}

// NewService returns a Service backed by st. A nil fetcher disables the
// background listing swap, leaving every session on fallback listings.
func NewService(st store.Store, fetcher listing.Fetcher, opts Options) *Service {
	return &Service{
		store:   st,
		fetcher: fetcher,
		opts:    opts.withDefaults(),
	}
}

// TTL is the lifetime given to new sessions.
func (s *Service) TTL() time.Duration {
	return s.opts.TTL
}

// Wait blocks until every background listing swap has finished.
func (s *Service) Wait() {
	s.swaps.Wait()
}

// CreateParams describes a new session.
type CreateParams struct {
	Handle   string
	City     string
	State    string
	Location string
	Limit    int
	Solo     bool
}

// Create starts a session with one player. Multiplayer sessions wait for a
// second player; solo sessions start active.
func (s *Service) Create(ctx context.Context, p CreateParams) (session models.Session, err error) {
	ctx, span := tracer.Start(ctx, "game.Create", trace.WithAttributes(attribute.Bool("game.solo", p.Solo)))
	defer func() { endSpan(span, err) }()

	handle := strings.TrimSpace(p.Handle)
	if p.Solo && handle == "" {
		handle = SoloHandle
	}
	if err := validateHandle(handle); err != nil {
		return models.Session{}, err
	}

	limit := s.clampLimit(p.Limit)
	query := listing.Query{City: p.City, State: p.State, Location: p.Location, Limit: limit}.Resolve()
	if query.City == "" {
		query.City = s.opts.DefaultCity
	}
	if query.State == "" {
		query.State = s.opts.DefaultState
	}

	now := s.opts.Now()
	status := models.StatusWaiting
	if p.Solo {
		status = models.StatusActive
	}

	session = models.Session{
		Players: []models.Player{{
			ID:       models.Player1,
			Handle:   handle,
			Guesses:  []models.Guess{},
			IsReady:  true,
			JoinedAt: now.UnixMilli(),
		}},
		Properties: s.opts.Fallback(limit),
		Status:     status,
		CreatedAt:  now.UnixMilli(),
		ExpiresAt:  now.Add(s.opts.TTL).UnixMilli(),
	}
	if len(session.Properties) == 0 {
		return models.Session{}, apperrors.New(apperrors.CodeInternal, "no listings available")
	}

	for attempt := 1; ; attempt++ {
		session.ID, err = s.opts.NewID()
		if err != nil {
			return models.Session{}, apperrors.Wrap(apperrors.CodeInternal, "generate session id", err)
		}

		err = s.store.Create(ctx, session)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrExists) || attempt == createAttempts {
			return models.Session{}, storeError(err)
		}
	}

	span.SetAttributes(attribute.String("game.session_id", session.ID))
	s.logf("SESSION: Created %s for %q (solo=%t, %d listings)", session.ID, handle, p.Solo, len(session.Properties))

	if s.fetcher != nil {
		s.swaps.Add(1)
		go s.swapListings(context.WithoutCancel(ctx), session.ID, query)
	}

	return session, nil
}

// Join adds the second player to a waiting session.
func (s *Service) Join(ctx context.Context, sessionID, handle string) (session models.Session, err error) {
	ctx, span := tracer.Start(ctx, "game.Join", trace.WithAttributes(attribute.String("game.session_id", sessionID)))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(sessionID) == "" {
		return models.Session{}, apperrors.New(apperrors.CodeValidation, "missing session id")
	}
	handle = strings.TrimSpace(handle)
	if err := validateHandle(handle); err != nil {
		return models.Session{}, err
	}

	now := s.opts.Now()
	session, err = s.store.Update(ctx, sessionID, func(sess *models.Session) error {
		if sess.Status != models.StatusWaiting || len(sess.Players) >= models.MaxPlayers {
			return apperrors.New(apperrors.CodeInvalidState, "session is not joinable")
		}
		sess.Players = append(sess.Players, models.Player{
			ID:       models.Player2,
			Handle:   handle,
			Guesses:  []models.Guess{},
			IsReady:  true,
			JoinedAt: now.UnixMilli(),
		})
		sess.Status = models.StatusActive
		return nil
	})
	if err != nil {
		return models.Session{}, storeError(err)
	}

	s.logf("SESSION: %q joined %s", handle, sessionID)

	return session, nil
}

// Get returns the live session with the given id.
func (s *Service) Get(ctx context.Context, sessionID string) (models.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return models.Session{}, apperrors.New(apperrors.CodeValidation, "missing session id")
	}

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return models.Session{}, storeError(err)
	}
	return session, nil
}

func (s *Service) clampLimit(n int) int {
	if n <= 0 {
		return s.opts.DefaultLimit
	}
	return min(n, s.opts.MaxLimit)
}

func validateHandle(handle string) error {
	if utf8.RuneCountInString(handle) < MinHandleLength {
		return apperrors.New(apperrors.CodeValidation, "handle must be at least 2 characters")
	}
	return nil
}

// storeError translates store sentinels into domain errors. Domain errors
// returned from update functions pass through unchanged.
func storeError(err error) error {
	var appErr *apperrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, store.ErrNotFound):
		return apperrors.New(apperrors.CodeNotFound, "session not found")
	case errors.Is(err, store.ErrExists):
		return apperrors.New(apperrors.CodeInvalidState, "session already exists")
	default:
		return apperrors.Wrap(apperrors.CodeInternal, "session store", err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) logf(format string, args ...any) {
	if s.opts.Logf != nil {
		s.opts.Logf(format, args...)
	}
}
