/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package models

import "time"

// Status is the lifecycle state of a session.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// Player identifiers are fixed by join order.
const (
	Player1 = "player1"
	Player2 = "player2"

	// Tie is the winner sentinel for equal final scores.
	Tie = "tie"

	// MaxPlayers is the capacity of a session.
	MaxPlayers = 2
)

// Guess is one player's answer for one property. Timestamp is in Unix
// milliseconds.
type Guess struct {
	PropertyID string  `json:"propertyId"`
	Amount     float64 `json:"amount"`
	Points     int     `json:"points"`
	Accuracy   float64 `json:"accuracy"`
	Timestamp  int64   `json:"timestamp"`
}

// Player is a participant in a session. JoinedAt is in Unix milliseconds.
type Player struct {
	ID       string  `json:"id"`
	Handle   string  `json:"handle"`
	Score    int     `json:"score"`
	Guesses  []Guess `json:"guesses"`
	IsReady  bool    `json:"isReady"`
	JoinedAt int64   `json:"joinedAt"`
}

// HasGuessed reports whether the player already answered propertyID.
func (p *Player) HasGuessed(propertyID string) bool {
	for _, g := range p.Guesses {
		if g.PropertyID == propertyID {
			return true
		}
	}
	return false
}

// Session is the root aggregate of one game. CreatedAt and ExpiresAt are in
// Unix milliseconds.
type Session struct {
	ID                   string     `json:"id"`
	Players              []Player   `json:"players"`
	Properties           []Property `json:"properties"`
	CurrentPropertyIndex int        `json:"currentPropertyIndex"`
	Status               Status     `json:"status"`
	CreatedAt            int64      `json:"createdAt"`
	ExpiresAt            int64      `json:"expiresAt"`
	Winner               string     `json:"winner,omitempty"`
}

// Expired reports whether the session's lifetime has elapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt <= now.UnixMilli()
}

// Player returns the player with the given id, or nil.
func (s *Session) Player(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// CurrentProperty returns the property of the current round.
func (s *Session) CurrentProperty() (Property, bool) {
	if s.CurrentPropertyIndex < 0 || s.CurrentPropertyIndex >= len(s.Properties) {
		return Property{}, false
	}
	return s.Properties[s.CurrentPropertyIndex], true
}

// HasGuesses reports whether any player has recorded a guess.
func (s *Session) HasGuesses() bool {
	for _, p := range s.Players {
		if len(p.Guesses) > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.Guesses = append([]Guess(nil), p.Guesses...)
		players[i] = p
	}
	s.Players = players

	props := make([]Property, len(s.Properties))
	for i, p := range s.Properties {
		props[i] = p.Clone()
	}
	s.Properties = props

	return s
}
