/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package client talks to a homebet server and mirrors a session by polling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Seednode/homebet/internal/api"
	apperrors "github.com/Seednode/homebet/internal/errors"
	"github.com/Seednode/homebet/internal/models"
	"github.com/Seednode/homebet/internal/scoring"
)

const maxResponseBytes = 8 << 20

// Client wraps the session endpoints of one server.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the server at baseURL, including any route
// prefix. A nil httpClient uses a client with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		base: strings.TrimSuffix(baseURL, "/"),
		http: httpClient,
	}
}

// Create starts a multiplayer session and returns its id.
func (c *Client) Create(ctx context.Context, req api.CreateRequest) (string, error) {
	var resp api.CreateResponse
	if err := c.do(ctx, http.MethodPost, "/session", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// CreateSolo starts a single-player session and returns its id.
func (c *Client) CreateSolo(ctx context.Context, req api.SoloRequest) (string, error) {
	var resp api.CreateResponse
	if err := c.do(ctx, http.MethodPost, "/solo", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// Join adds handle to the session as the second player.
func (c *Client) Join(ctx context.Context, sessionID, handle string) error {
	return c.do(ctx, http.MethodPost, "/session/join", nil, api.JoinRequest{ID: sessionID, Handle: handle}, &api.OKResponse{})
}

// Get returns the session along with the poll interval the server suggests.
func (c *Client) Get(ctx context.Context, sessionID string) (models.Session, time.Duration, error) {
	var resp api.SessionResponse
	err := c.do(ctx, http.MethodGet, "/session", url.Values{"id": {sessionID}}, nil, &resp)
	if err != nil {
		return models.Session{}, 0, err
	}
	return resp.Session, time.Duration(resp.PollIntervalMs) * time.Millisecond, nil
}

// Guess submits a guess and returns the server's score for it.
func (c *Client) Guess(ctx context.Context, sessionID, playerID, propertyID string, amount float64) (scoring.Result, error) {
	req := api.GuessRequest{
		ID:         sessionID,
		PlayerID:   playerID,
		PropertyID: propertyID,
		Amount:     &amount,
	}

	var resp api.GuessResponse
	if err := c.do(ctx, http.MethodPost, "/session/guess", nil, req, &resp); err != nil {
		return scoring.Result{}, err
	}
	return scoring.Result{
		Points:   resp.Points,
		Accuracy: resp.Accuracy,
		Bonus:    resp.Bonus,
		Perfect:  resp.Perfect,
	}, nil
}

// Rehydrate offers a cached snapshot to the server and reports whether it
// was restored.
func (c *Client) Rehydrate(ctx context.Context, snapshot models.Session) (bool, error) {
	var resp api.RehydrateResponse
	if err := c.do(ctx, http.MethodPost, "/session/rehydrate", nil, api.RehydrateRequest{Session: &snapshot}, &resp); err != nil {
		return false, err
	}
	return resp.Restored, nil
}

// Properties fetches live listings through the server's provider proxy.
func (c *Client) Properties(ctx context.Context, city, state string, limit int) ([]models.Property, error) {
	params := url.Values{}
	if city != "" {
		params.Set("city", city)
	}
	if state != "" {
		params.Set("state", state)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp api.PropertiesResponse
	if err := c.do(ctx, http.MethodGet, "/properties", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Properties, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// responseError rebuilds the server's domain error so callers can match it
// with errors.Is.
func responseError(status int, data []byte) error {
	var body api.ErrorResponse
	_ = json.Unmarshal(data, &body)

	message := body.Error
	if message == "" {
		message = strings.TrimSpace(string(data))
	}
	if message == "" {
		message = http.StatusText(status)
	}

	code := apperrors.Code(body.Code)
	if code == "" {
		code = codeForStatus(status)
	}

	return apperrors.New(code, message)
}

func codeForStatus(status int) apperrors.Code {
	switch {
	case status == http.StatusNotFound:
		return apperrors.CodeNotFound
	case status == http.StatusBadGateway:
		return apperrors.CodeUpstream
	case status >= 400 && status < 500:
		return apperrors.CodeValidation
	default:
		return apperrors.CodeInternal
	}
}
