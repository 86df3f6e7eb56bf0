/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"math"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/Seednode/homebet/internal/errors"
	"github.com/Seednode/homebet/internal/models"
	"github.com/Seednode/homebet/internal/scoring"
)

// GuessParams identifies one player's answer for the current round.
type GuessParams struct {
	SessionID  string
	PlayerID   string
	PropertyID string
	Amount     float64
}

// GuessResult is the session after the guess was applied, along with the
// score the server computed for it.
type GuessResult struct {
	Session models.Session
	Score   scoring.Result
}

// SubmitGuess scores a guess against the current round's price, records it
// and advances the round once every player has answered.
func (s *Service) SubmitGuess(ctx context.Context, p GuessParams) (result GuessResult, err error) {
	ctx, span := tracer.Start(ctx, "game.SubmitGuess", trace.WithAttributes(
		attribute.String("game.session_id", p.SessionID),
		attribute.String("game.player_id", p.PlayerID),
		attribute.String("game.property_id", p.PropertyID),
	))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(p.SessionID) == "" {
		return GuessResult{}, apperrors.New(apperrors.CodeValidation, "missing session id")
	}
	if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) || p.Amount < 0 {
		return GuessResult{}, apperrors.New(apperrors.CodeValidation, "amount must be a non-negative number")
	}

	now := s.opts.Now()
	var score scoring.Result
	var price float64

	session, err := s.store.Update(ctx, p.SessionID, func(sess *models.Session) error {
		player := sess.Player(p.PlayerID)
		if player == nil {
			return apperrors.New(apperrors.CodeNotFound, "player not found")
		}
		if sess.Status != models.StatusActive {
			return apperrors.New(apperrors.CodeInvalidState, "session is not active")
		}

		current, ok := sess.CurrentProperty()
		if !ok {
			return apperrors.New(apperrors.CodeInvalidState, "session has no current property")
		}
		if current.ID != p.PropertyID {
			return apperrors.New(apperrors.CodeStaleRound, "property is not the current round")
		}
		if player.HasGuessed(current.ID) {
			return apperrors.New(apperrors.CodeDuplicateGuess, "guess already recorded for this property")
		}

		var err error
		score, err = scoring.Score(current.Price, p.Amount)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "score guess", err)
		}
		price = current.Price

		player.Guesses = append(player.Guesses, models.Guess{
			PropertyID: current.ID,
			Amount:     p.Amount,
			Points:     score.Points,
			Accuracy:   score.Accuracy,
			Timestamp:  now.UnixMilli(),
		})
		player.Score += score.Points

		advance(sess, current.ID)
		return nil
	})
	if err != nil {
		return GuessResult{}, storeError(err)
	}

	s.logf("SESSION: %s %s guessed %s on %s (actual %s, %d points)",
		p.SessionID, p.PlayerID, models.FormatPrice(p.Amount), p.PropertyID, models.FormatPrice(price), score.Points)
	if session.Status == models.StatusCompleted {
		s.logf("SESSION: %s completed, winner %s", p.SessionID, session.Winner)
	}

	return GuessResult{Session: session, Score: score}, nil
}

// advance moves to the next round, or completes the session, once every
// player has guessed propertyID.
func advance(sess *models.Session, propertyID string) {
	for i := range sess.Players {
		if !sess.Players[i].HasGuessed(propertyID) {
			return
		}
	}

	if sess.CurrentPropertyIndex < len(sess.Properties)-1 {
		sess.CurrentPropertyIndex++
		return
	}

	sess.Status = models.StatusCompleted
	sess.Winner = winner(sess.Players)
}

// winner picks the strictly higher score, or Tie on equal scores. A solo
// player always wins.
func winner(players []models.Player) string {
	switch len(players) {
	case 0:
		return ""
	case 1:
		return players[0].ID
	}

	a, b := players[0], players[1]
	switch {
	case a.Score > b.Score:
		return a.ID
	case b.Score > a.Score:
		return b.ID
	default:
		return models.Tie
	}
}
