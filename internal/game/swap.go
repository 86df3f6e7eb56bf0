/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"errors"

	"github.com/Seednode/homebet/internal/listing"
	"github.com/Seednode/homebet/internal/models"
)

var errSwapSkipped = errors.New("guesses already recorded")

// swapListings replaces a fresh session's fallback listings with live ones.
// Any failure leaves the session as it was.
func (s *Service) swapListings(ctx context.Context, sessionID string, q listing.Query) {
	defer s.swaps.Done()

	ctx, cancel := context.WithTimeout(ctx, s.opts.SwapTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "game.swapListings")
	defer span.End()

	fetched, err := s.fetcher.Fetch(ctx, q)
	if err != nil {
		s.logf("LISTING: Keeping fallback listings for %s: %v", sessionID, err)
		return
	}

	props := make([]models.Property, 0, len(fetched))
	seen := make(map[string]struct{}, len(fetched))
	for _, p := range fetched {
		if !p.Admissible() {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		p = p.Clone()
		if p.Source == "" {
			p.Source = models.SourceAPI
		}
		props = append(props, p)
		if q.Limit > 0 && len(props) == q.Limit {
			break
		}
	}
	if len(props) == 0 {
		s.logf("LISTING: No usable listings for %s, keeping fallback", sessionID)
		return
	}

	_, err = s.store.Update(ctx, sessionID, func(sess *models.Session) error {
		if sess.HasGuesses() {
			return errSwapSkipped
		}
		sess.Properties = props
		if sess.CurrentPropertyIndex >= len(props) {
			sess.CurrentPropertyIndex = len(props) - 1
		}
		return nil
	})
	if err != nil {
		s.logf("LISTING: Skipped listing swap for %s: %v", sessionID, err)
		return
	}

	s.logf("LISTING: Swapped in %d live listings for %s", len(props), sessionID)
}
