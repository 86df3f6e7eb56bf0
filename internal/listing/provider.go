/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package listing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/Seednode/homebet/internal/errors"
	"github.com/Seednode/homebet/internal/models"
)

const maxBodyBytes = 8 << 20

var tracer = otel.Tracer("github.com/Seednode/homebet/internal/listing")

// Query selects listings from the provider.
type Query struct {
	City     string
	State    string
	Location string
	Limit    int
}

// Resolve fills City and State from a "City, ST" Location when they are unset.
func (q Query) Resolve() Query {
	if (q.City == "" || q.State == "") && q.Location != "" {
		city, state, found := strings.Cut(q.Location, ",")
		if found {
			if q.City == "" {
				q.City = strings.TrimSpace(city)
			}
			if q.State == "" {
				q.State = strings.TrimSpace(state)
			}
		}
	}
	return q
}

func (q Query) key() string {
	return strings.ToLower(q.City) + "|" + strings.ToLower(q.State) + "|" + strconv.Itoa(q.Limit)
}

// Fetcher retrieves normalized listings.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) ([]models.Property, error)
}

// Config holds the upstream provider settings.
type Config struct {
	APIKey       string        `env:"RAPIDAPI_KEY"`
	Host         string        `env:"RAPIDAPI_HOST" envDefault:"realtor.p.rapidapi.com"`
	BaseURL      string        `env:"HOMEBET_UPSTREAM_BASE_URL"`
	MaxTries     uint          `env:"HOMEBET_UPSTREAM_MAX_TRIES" envDefault:"3"`
	Timeout      time.Duration `env:"HOMEBET_UPSTREAM_TIMEOUT" envDefault:"10s"`
	RetryInitial time.Duration `env:"HOMEBET_UPSTREAM_RETRY_INITIAL" envDefault:"250ms"`
}

// LoadConfig reads the provider settings from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) endpoint() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return "https://" + c.Host
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// Provider fetches for-sale listings from a Realtor-compatible RapidAPI host.
type Provider struct {
	cfg    Config
	client *http.Client
	group  singleflight.Group

	// Logf receives diagnostic messages. Nil disables logging.
	Logf func(format string, args ...any)
}

// NewProvider returns a provider for cfg.
func NewProvider(cfg Config) *Provider {
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether the provider has credentials.
func (p *Provider) Configured() bool {
	return p.cfg.APIKey != ""
}

// Fetch returns up to q.Limit normalized listings. Concurrent calls for the
// same query share one upstream request.
func (p *Provider) Fetch(ctx context.Context, q Query) ([]models.Property, error) {
	if !p.Configured() {
		return nil, apperrors.New(apperrors.CodeInternal, "server missing RAPIDAPI_KEY")
	}

	q = q.Resolve()
	if q.Limit <= 0 {
		q.Limit = 5
	}

	ctx, span := tracer.Start(ctx, "listing.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("listing.city", q.City),
		attribute.String("listing.state", q.State),
		attribute.Int("listing.limit", q.Limit),
	)

	// The shared fetch outlives any single caller.
	flight := p.group.DoChan(q.key(), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.Timeout)
		defer cancel()
		return p.fetch(fetchCtx, q)
	})

	var res singleflight.Result
	select {
	case res = <-flight:
	case <-ctx.Done():
		res.Err = ctx.Err()
	}
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		return nil, res.Err
	}
	shared := res.Shared

	props := res.Val.([]models.Property)
	out := make([]models.Property, len(props))
	for i, prop := range props {
		out[i] = prop.Clone()
	}

	p.logf("LISTING: Fetched %d listings for %s, %s (shared=%t)", len(out), q.City, q.State, shared)

	return out, nil
}

func (p *Provider) fetch(ctx context.Context, q Query) ([]models.Property, error) {
	params := url.Values{}
	params.Set("city", q.City)
	params.Set("state_code", q.State)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("offset", "0")
	params.Set("sort", "relevance")
	target := p.cfg.endpoint() + "/properties/v2/list-for-sale?" + params.Encode()

	b := backoff.NewExponentialBackOff()
	if p.cfg.RetryInitial > 0 {
		b.InitialInterval = p.cfg.RetryInitial
	}

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return p.get(ctx, target)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(p.cfg.MaxTries))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstream, "fetch listings", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, apperrors.New(apperrors.CodeUpstream, "upstream returned invalid JSON")
	}

	records := resultRecords(gjson.ParseBytes(body))
	props := NormalizeAll(records)
	if len(props) > q.Limit {
		props = props[:q.Limit]
	}
	return props, nil
}

func (p *Provider) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("X-RapidAPI-Key", p.cfg.APIKey)
	req.Header.Set("X-RapidAPI-Host", p.cfg.Host)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	return body, nil
}

// resultRecords finds the listing array across the response shapes the
// provider family uses.
func resultRecords(doc gjson.Result) []gjson.Result {
	for _, path := range []string{"properties", "data", "results", "data.home_search.results", "data.results"} {
		if v := doc.Get(path); v.IsArray() {
			return v.Array()
		}
	}
	return nil
}

func (p *Provider) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}
