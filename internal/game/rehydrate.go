/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/Seednode/homebet/internal/errors"
	"github.com/Seednode/homebet/internal/models"
	"github.com/Seednode/homebet/internal/store"
)

// Rehydrate restores a client's cached snapshot when the server no longer
// holds the session. It never overwrites a live session and reports whether
// anything was restored.
func (s *Service) Rehydrate(ctx context.Context, snapshot models.Session) (restored bool, err error) {
	ctx, span := tracer.Start(ctx, "game.Rehydrate", trace.WithAttributes(attribute.String("game.session_id", snapshot.ID)))
	defer func() {
		span.SetAttributes(attribute.Bool("game.restored", restored))
		endSpan(span, err)
	}()

	if err := s.validateSnapshot(snapshot); err != nil {
		return false, apperrors.Wrap(apperrors.CodeValidation, "invalid session snapshot", err)
	}

	err = s.store.Create(ctx, snapshot.Clone())
	if errors.Is(err, store.ErrExists) {
		return false, nil
	}
	if err != nil {
		return false, storeError(err)
	}

	s.logf("SESSION: Rehydrated %s from client snapshot", snapshot.ID)

	return true, nil
}

func (s *Service) validateSnapshot(snap models.Session) error {
	if strings.TrimSpace(snap.ID) == "" {
		return errors.New("missing id")
	}
	if n := len(snap.Players); n < 1 || n > models.MaxPlayers {
		return fmt.Errorf("expected 1 to %d players, got %d", models.MaxPlayers, n)
	}
	for i, p := range snap.Players {
		want := models.Player1
		if i == 1 {
			want = models.Player2
		}
		if p.ID != want {
			return fmt.Errorf("player %d has id %q, want %q", i, p.ID, want)
		}
	}
	if len(snap.Properties) == 0 {
		return errors.New("no properties")
	}
	seen := make(map[string]struct{}, len(snap.Properties))
	for _, p := range snap.Properties {
		if !p.Admissible() {
			return fmt.Errorf("property %q is not admissible", p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("property %q listed twice", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	if !snap.Status.Valid() {
		return fmt.Errorf("unknown status %q", snap.Status)
	}
	if snap.CurrentPropertyIndex < 0 || snap.CurrentPropertyIndex >= len(snap.Properties) {
		return fmt.Errorf("property index %d out of range", snap.CurrentPropertyIndex)
	}
	if snap.Winner != "" && snap.Status != models.StatusCompleted {
		return errors.New("winner set on unfinished session")
	}
	if snap.Status == models.StatusCompleted && snap.Winner == "" {
		return errors.New("completed session has no winner")
	}
	if snap.Status == models.StatusWaiting && len(snap.Players) != 1 {
		return fmt.Errorf("waiting session has %d players", len(snap.Players))
	}
	if snap.Expired(s.opts.Now()) {
		return errors.New("session expired")
	}
	return nil
}
