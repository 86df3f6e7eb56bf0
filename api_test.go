/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Seednode/homebet/internal/api"
	"github.com/Seednode/homebet/internal/client"
	apperrors "github.com/Seednode/homebet/internal/errors"
	"github.com/Seednode/homebet/internal/game"
	"github.com/Seednode/homebet/internal/listing"
	"github.com/Seednode/homebet/internal/models"
	"github.com/Seednode/homebet/internal/store"
)

type fakeListings struct {
	props []models.Property
	err   error

	mu    sync.Mutex
	query listing.Query
}

func (f *fakeListings) Fetch(ctx context.Context, q listing.Query) ([]models.Property, error) {
	f.mu.Lock()
	f.query = q
	f.mu.Unlock()
	return f.props, f.err
}

func (f *fakeListings) lastQuery() listing.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

func missingKeyError() error {
	_, err := listing.NewProvider(listing.Config{}).Fetch(context.Background(), listing.Query{})
	return err
}

type testServer struct {
	url   string
	svc   *game.Service
	store *store.Memory
}

func testConfig() *Config {
	return &Config{
		defaultCity:   "Provo",
		defaultLimit:  3,
		defaultState:  "UT",
		fetchTimeout:  time.Second,
		maxLimit:      5,
		pollInterval:  2 * time.Second,
		port:          8080,
		sessionTTL:    24 * time.Hour,
		storeKind:     storeMemory,
		sweepInterval: time.Minute,
	}
}

func newTestServer(t *testing.T, cfg *Config, listings listing.Fetcher) *testServer {
	t.Helper()

	st := store.NewMemory(nil)
	svc := game.NewService(st, nil, game.Options{
		TTL:          cfg.sessionTTL,
		DefaultCity:  cfg.defaultCity,
		DefaultState: cfg.defaultState,
		DefaultLimit: cfg.defaultLimit,
		MaxLimit:     cfg.maxLimit,
		Fallback: func(n int) []models.Property {
			props := make([]models.Property, n)
			for i := range props {
				props[i] = models.Property{
					ID:      fmt.Sprintf("p%d", i+1),
					Address: fmt.Sprintf("%d Main St", i+1),
					Price:   float64(100000 * (i + 1)),
					Images:  []string{listing.PlaceholderImage},
				}
			}
			return props
		},
	})
	if listings == nil {
		listings = &fakeListings{}
	}

	errs := make(chan error, 64)
	srv := httptest.NewServer(newRouter(cfg, svc, listings, errs))
	t.Cleanup(srv.Close)
	t.Cleanup(svc.Wait)

	return &testServer{url: srv.URL + cfg.prefix, svc: svc, store: st}
}

func postJSON(t *testing.T, target string, body any) (*http.Response, []byte) {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}

	resp, err := http.Post(target, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func get(t *testing.T, target string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(target)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decodeError(t *testing.T, data []byte) api.ErrorResponse {
	t.Helper()
	var body api.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode error body %q: %v", data, err)
	}
	return body
}

func TestCreateAndGetSession(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)

	resp, data := postJSON(t, ts.url+"/session", api.CreateRequest{Handle: "Ann"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("security headers missing")
	}

	var created api.CreateResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.SessionID == "" {
		t.Fatal("empty session id")
	}

	resp, data = get(t, ts.url+"/session?id="+created.SessionID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, body %s", resp.StatusCode, data)
	}

	var got api.SessionResponse
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Session.Status != models.StatusWaiting {
		t.Fatalf("status = %s, want waiting", got.Session.Status)
	}
	if len(got.Session.Players) != 1 || got.Session.Players[0].Handle != "Ann" {
		t.Fatalf("players = %+v", got.Session.Players)
	}
	if len(got.Session.Properties) != 3 {
		t.Fatalf("properties = %d, want default of 3", len(got.Session.Properties))
	}
	if got.PollIntervalMs != 2000 {
		t.Fatalf("pollIntervalMs = %d", got.PollIntervalMs)
	}
}

func TestSessionErrors(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)

	waiting, err := ts.svc.Create(context.Background(), game.CreateParams{Handle: "Ann"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	active, err := ts.svc.Create(context.Background(), game.CreateParams{Handle: "Ann", Solo: true})
	if err != nil {
		t.Fatalf("Create solo: %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   apperrors.Code
	}{
		{"short handle", http.MethodPost, "/session", api.CreateRequest{Handle: "A"}, http.StatusBadRequest, apperrors.CodeValidation},
		{"bad json", http.MethodPost, "/session", "{", http.StatusBadRequest, apperrors.CodeValidation},
		{"missing id", http.MethodGet, "/session", nil, http.StatusBadRequest, apperrors.CodeValidation},
		{"unknown session", http.MethodGet, "/session?id=nope", nil, http.StatusNotFound, apperrors.CodeNotFound},
		{"join unknown", http.MethodPost, "/session/join", api.JoinRequest{ID: "nope", Handle: "Bob"}, http.StatusNotFound, apperrors.CodeNotFound},
		{"join solo", http.MethodPost, "/session/join", api.JoinRequest{ID: active.ID, Handle: "Bob"}, http.StatusBadRequest, apperrors.CodeInvalidState},
		{"guess missing amount", http.MethodPost, "/session/guess", map[string]string{"id": active.ID, "playerId": "player1", "propertyId": "p1"}, http.StatusBadRequest, apperrors.CodeValidation},
		{"guess waiting", http.MethodPost, "/session/guess", map[string]any{"id": waiting.ID, "playerId": "player1", "propertyId": "p1", "amount": 1}, http.StatusBadRequest, apperrors.CodeInvalidState},
		{"guess stale", http.MethodPost, "/session/guess", map[string]any{"id": active.ID, "playerId": "player1", "propertyId": "p2", "amount": 1}, http.StatusBadRequest, apperrors.CodeStaleRound},
		{"guess unknown player", http.MethodPost, "/session/guess", map[string]any{"id": active.ID, "playerId": "player2", "propertyId": "p1", "amount": 1}, http.StatusNotFound, apperrors.CodeNotFound},
		{"rehydrate missing session", http.MethodPost, "/session/rehydrate", map[string]any{}, http.StatusBadRequest, apperrors.CodeValidation},
		{"rehydrate invalid", http.MethodPost, "/session/rehydrate", api.RehydrateRequest{Session: &models.Session{ID: "x"}}, http.StatusBadRequest, apperrors.CodeValidation},
		{"qr missing id", http.MethodGet, "/session/qr", nil, http.StatusBadRequest, apperrors.CodeValidation},
		{"qr unknown", http.MethodGet, "/session/qr?id=nope", nil, http.StatusNotFound, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			var data []byte
			if tt.method == http.MethodGet {
				resp, data = get(t, ts.url+tt.path)
			} else {
				resp, data = postJSON(t, ts.url+tt.path, tt.body)
			}

			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.status, data)
			}
			body := decodeError(t, data)
			if body.Code != string(tt.code) || body.Error == "" {
				t.Fatalf("error body = %+v, want code %s", body, tt.code)
			}
		})
	}
}

func TestDuplicateGuessOverHTTP(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)

	session, err := ts.svc.Create(context.Background(), game.CreateParams{Solo: true, Limit: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Client-supplied points are ignored.
	body := map[string]any{"id": session.ID, "playerId": "player1", "propertyId": "p1", "amount": 100000, "points": 9999, "accuracy": 100}
	resp, data := postJSON(t, ts.url+"/session/guess", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("guess status = %d, body %s", resp.StatusCode, data)
	}

	var res api.GuessResponse
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.OK || !res.Perfect || res.Points != 120 || res.Accuracy != 100 {
		t.Fatalf("guess response = %+v", res)
	}

	resp, data = postJSON(t, ts.url+"/session/guess", map[string]any{"id": session.ID, "playerId": "player1", "propertyId": "p2", "amount": 0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second round status = %d, body %s", resp.StatusCode, data)
	}

	resp, data = postJSON(t, ts.url+"/session/guess", map[string]any{"id": session.ID, "playerId": "player1", "propertyId": "p2", "amount": 200000})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("repeat guess on completed session status = %d", resp.StatusCode)
	}

	got, err := ts.svc.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Players[0].Score != 130 || got.Status != models.StatusCompleted || got.Winner != models.Player1 {
		t.Fatalf("session = %+v", got)
	}
}

func TestTwoPlayerGameWithClient(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	ctx := context.Background()
	c := client.New(ts.url, nil)

	id, err := c.Create(ctx, api.CreateRequest{Handle: "Ann", Limit: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := c.Join(ctx, id, "Bob"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := c.Join(ctx, id, "Cat"); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("third join err = %v, want invalid state", err)
	}

	rounds := []struct {
		property string
		ann, bob float64
	}{
		{"p1", 100000, 50000},
		{"p2", 150000, 195000},
	}
	for _, r := range rounds {
		if _, err := c.Guess(ctx, id, models.Player1, r.property, r.ann); err != nil {
			t.Fatalf("Guess Ann %s: %v", r.property, err)
		}
		if _, err := c.Guess(ctx, id, models.Player1, r.property, r.ann); !errors.Is(err, apperrors.ErrDuplicateGuess) {
			t.Fatalf("duplicate guess err = %v", err)
		}
		if _, err := c.Guess(ctx, id, models.Player2, r.property, r.bob); err != nil {
			t.Fatalf("Guess Bob %s: %v", r.property, err)
		}
	}

	session, interval, err := c.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if interval != 2*time.Second {
		t.Fatalf("interval = %v", interval)
	}
	if session.Status != models.StatusCompleted {
		t.Fatalf("status = %s", session.Status)
	}
	// Ann: 120 + 75, Bob: 50 + 110.
	if session.Players[0].Score != 195 || session.Players[1].Score != 160 || session.Winner != models.Player1 {
		t.Fatalf("scores %d/%d winner %q", session.Players[0].Score, session.Players[1].Score, session.Winner)
	}
}

func TestMirrorRehydratesAfterRestart(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	ctx := context.Background()
	c := client.New(ts.url, nil)

	id, err := c.CreateSolo(ctx, api.SoloRequest{})
	if err != nil {
		t.Fatalf("CreateSolo: %v", err)
	}

	m := client.NewMirror(c, id)
	first, err := m.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if first.Players[0].Handle != game.SoloHandle || first.Status != models.StatusActive {
		t.Fatalf("solo session = %+v", first)
	}

	// Simulates a cold start that lost every session.
	if err := ts.store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	restored, err := m.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll after loss: %v", err)
	}
	if restored.ID != id {
		t.Fatalf("restored id = %q", restored.ID)
	}

	again, err := m.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll after rehydrate: %v", err)
	}
	if again.Players[0].Handle != game.SoloHandle {
		t.Fatalf("server copy = %+v", again)
	}

	live, err := c.Rehydrate(ctx, first)
	if err != nil {
		t.Fatalf("Rehydrate live: %v", err)
	}
	if live {
		t.Fatal("rehydrate overwrote a live session")
	}
}

func TestSessionQR(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)

	session, err := ts.svc.Create(context.Background(), game.CreateParams{Handle: "Ann"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resp, data := get(t, ts.url+"/session/qr?id="+session.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("content type = %q", resp.Header.Get("Content-Type"))
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != qrSize {
		t.Fatalf("qr width = %d, want %d", img.Bounds().Dx(), qrSize)
	}
}

func TestShareURL(t *testing.T) {
	cfg := testConfig()
	cfg.prefix = "/bet"

	r := httptest.NewRequest(http.MethodGet, "/bet/session/qr?id=abc", nil)
	r.Host = "example.com"
	r.Header.Set("X-Forwarded-Proto", "https")

	if got := shareURL(cfg, r, "abc"); got != "https://example.com/bet/game/abc" {
		t.Fatalf("shareURL = %q", got)
	}

	r.Header.Set("X-Forwarded-Proto", "gopher")
	if got := shareURL(cfg, r, "abc"); got != "http://example.com/bet/game/abc" {
		t.Fatalf("shareURL ignored bad proto: %q", got)
	}
}

func TestProperties(t *testing.T) {
	listings := &fakeListings{props: []models.Property{{ID: "live", Price: 1}}}
	ts := newTestServer(t, testConfig(), listings)

	resp, data := get(t, ts.url+"/properties?city=Denver&limit=50")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, data)
	}

	var body api.PropertiesResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Properties) != 1 || body.Properties[0].ID != "live" {
		t.Fatalf("properties = %+v", body.Properties)
	}
	if q := listings.lastQuery(); q.City != "Denver" || q.State != "UT" || q.Limit != 5 {
		t.Fatalf("query = %+v", q)
	}

	resp, _ = get(t, ts.url+"/properties?limit=zero")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", resp.StatusCode)
	}
}

func TestPropertiesErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		details bool
	}{
		{"missing key", missingKeyError(), http.StatusInternalServerError, false},
		{"upstream", apperrors.Wrap(apperrors.CodeUpstream, "listing provider unavailable", errors.New("upstream returned 503")), http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, testConfig(), &fakeListings{err: tt.err})

			resp, data := get(t, ts.url+"/properties")
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body := decodeError(t, data)
			if tt.details != (body.Details != "") {
				t.Fatalf("details = %q", body.Details)
			}
			if body.Error == "internal server error" {
				t.Fatalf("error message hidden: %+v", body)
			}
		})
	}
}

func TestPlainEndpoints(t *testing.T) {
	cfg := testConfig()
	cfg.prefix = "/bet"
	ts := newTestServer(t, cfg, nil)

	session, err := ts.svc.Create(context.Background(), game.CreateParams{Handle: "Ann"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "Ok\n"},
		{"/version", "homebet v" + releaseVersion + "\n"},
		{"/robots.txt", "User-agent: *"},
		{"/", "POST /bet/session"},
		{"/game/" + session.ID, "status=waiting"},
	}

	for _, tt := range tests {
		resp, data := get(t, ts.url+tt.path)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d", tt.path, resp.StatusCode)
		}
		if !strings.Contains(string(data), tt.want) {
			t.Fatalf("GET %s body = %q, want %q", tt.path, data, tt.want)
		}
	}

	resp, _ := get(t, ts.url+"/game/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown game page status = %d", resp.StatusCode)
	}
}

func TestErrorBodyHidesInternalCauses(t *testing.T) {
	status, body := errorBody(errors.New("disk on fire"))
	if status != http.StatusInternalServerError || body.Error != "internal server error" {
		t.Fatalf("plain error = %d %+v", status, body)
	}

	status, body = errorBody(apperrors.Wrap(apperrors.CodeInternal, "session store", errors.New("disk on fire")))
	if status != http.StatusInternalServerError || body.Error != "session store" {
		t.Fatalf("wrapped internal = %d %+v", status, body)
	}

	status, body = errorBody(apperrors.Wrap(apperrors.CodeValidation, "invalid session snapshot", errors.New("no properties")))
	if status != http.StatusBadRequest || body.Error != "invalid session snapshot: no properties" {
		t.Fatalf("validation = %d %+v", status, body)
	}
}

func TestHumanReadableSize(t *testing.T) {
	tests := map[int64]string{
		0:         "0 B",
		999:       "999 B",
		1000:      "1.0 kB",
		1500:      "1.5 kB",
		2_500_000: "2.5 MB",
	}
	for in, want := range tests {
		if got := humanReadableSize(in); got != want {
			t.Fatalf("humanReadableSize(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestDescribeSession(t *testing.T) {
	s := models.Session{
		ID:         "abc",
		Status:     models.StatusCompleted,
		Properties: []models.Property{{ID: "p1", Address: "1 Main St"}},
		Players:    []models.Player{{ID: models.Player1, Handle: "Ann", Score: 120}},
		Winner:     models.Player1,
	}

	want := "abc status=completed round=1/1 player1(Ann)=120 winner=player1"
	if got := describeSession(s); got != want {
		t.Fatalf("describeSession = %q, want %q", got, want)
	}
}

func TestDrainErrorsStopsOnClose(t *testing.T) {
	errs := make(chan error, 2)
	done := drainErrors(&Config{}, errs)

	errs <- errors.New("first")
	errs <- errors.New("second")
	close(errs)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drain goroutine did not exit after errs closed")
	}
}
