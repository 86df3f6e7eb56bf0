/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package api holds the JSON request and response bodies shared by the HTTP
// handlers and the Go client.
package api

import "github.com/Seednode/homebet/internal/models"

type CreateRequest struct {
	Handle string `json:"handle"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type SoloRequest struct {
	Handle   string `json:"handle,omitempty"`
	Location string `json:"location,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type CreateResponse struct {
	SessionID string `json:"sessionId"`
}

type SessionResponse struct {
	Session        models.Session `json:"session"`
	PollIntervalMs int64          `json:"pollIntervalMs"`
}

type JoinRequest struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
}

// GuessRequest carries a player's answer. Points and Accuracy are accepted
// for compatibility with older clients and ignored.
type GuessRequest struct {
	ID         string   `json:"id"`
	PlayerID   string   `json:"playerId"`
	PropertyID string   `json:"propertyId"`
	Amount     *float64 `json:"amount"`
	Points     *float64 `json:"points,omitempty"`
	Accuracy   *float64 `json:"accuracy,omitempty"`
}

type GuessResponse struct {
	OK       bool    `json:"ok"`
	Points   int     `json:"points"`
	Accuracy float64 `json:"accuracy"`
	Bonus    bool    `json:"bonus"`
	Perfect  bool    `json:"perfect"`
}

type RehydrateRequest struct {
	Session *models.Session `json:"session"`
}

type RehydrateResponse struct {
	OK       bool `json:"ok"`
	Restored bool `json:"restored"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type PropertiesResponse struct {
	Properties []models.Property `json:"properties"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
