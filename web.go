/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/homebet/internal/api"
	"github.com/Seednode/homebet/internal/game"
	"github.com/Seednode/homebet/internal/listing"
	"github.com/Seednode/homebet/internal/store"
	"github.com/Seednode/homebet/internal/telemetry"
)

const (
	logDate string        = `2006-01-02T15:04:05.000-07:00`
	timeout time.Duration = 10 * time.Second

	maxRequestBytes int64 = 1 << 20
)

func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(), fullscreen=(), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any, errs chan<- error) int {
	data, err := json.Marshal(v)
	if err != nil {
		errs <- err

		status = http.StatusInternalServerError
		data = []byte(`{"error":"internal server error","code":"INTERNAL"}`)
	}
	data = append(data, '\n')

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	written, err := w.Write(data)
	if err != nil {
		errs <- err
	}

	return written
}

// decodeJSON reads a request body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))

	err := dec.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func serveVersion(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write([]byte("homebet v" + releaseVersion + "\n"))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Version page (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// drainErrors logs handler errors until errs is closed.
func drainErrors(cfg *Config, errs <-chan error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for err := range errs {
			logf(cfg, "SERVE: %v", err)
		}
	}()
	return done
}

func newRouter(cfg *Config, svc *game.Service, listings listing.Fetcher, errs chan<- error) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		logf(cfg, "SERVE: Recovered from panic on %s %s: %v", r.Method, r.URL.Path, i)

		writeJSON(cfg, w, http.StatusInternalServerError, api.ErrorResponse{
			Error: "An error has occurred. Please try again.",
			Code:  "INTERNAL",
		}, errs)
	}

	mux.GET(cfg.prefix+"/", serveIndex(cfg, errs))

	mux.GET(cfg.prefix+"/game/:id", serveGamePage(cfg, svc, errs))

	mux.GET(cfg.prefix+"/healthz", serveHealthCheck(cfg, errs))

	mux.GET(cfg.prefix+"/robots.txt", serveRobots(cfg, errs))

	mux.GET(cfg.prefix+"/version", serveVersion(cfg, errs))

	mux.GET(cfg.prefix+"/properties", serveProperties(cfg, listings, errs))

	registerSessionAPI(cfg, svc, mux, errs)

	if cfg.profile {
		registerProfileHandlers(cfg, mux)
	}

	return mux
}

func openStore(cfg *Config) (store.Store, error) {
	switch cfg.storeKind {
	case storeSQLite:
		return store.OpenSQLite(cfg.storePath, nil)
	case storeBolt:
		return store.OpenBolt(cfg.storePath, nil)
	case storeMemory, "":
		return store.NewMemory(nil), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.storeKind)
	}
}

func ServePage(ctx context.Context, cfg *Config) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	logf(cfg, "START: homebet v%s", releaseVersion)

	traceCfg, err := telemetry.LoadConfig()
	if err != nil {
		return err
	}
	shutdownTracing, err := telemetry.Setup(ctx, "homebet", traceCfg)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()
	if traceCfg.Active() {
		logf(cfg, "START: Exporting traces to %s", traceCfg.Endpoint)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	logf(cfg, "START: Using %s session store", cfg.storeKind)

	providerCfg, err := listing.LoadConfig()
	if err != nil {
		return err
	}
	provider := listing.NewProvider(providerCfg)
	provider.Logf = func(format string, args ...any) { logf(cfg, format, args...) }

	var fetcher listing.Fetcher
	if provider.Configured() {
		fetcher = provider
	} else {
		logf(cfg, "START: RAPIDAPI_KEY not set, sessions will use fallback listings")
	}

	svc := game.NewService(st, fetcher, game.Options{
		TTL:          cfg.sessionTTL,
		SwapTimeout:  cfg.fetchTimeout,
		DefaultCity:  cfg.defaultCity,
		DefaultState: cfg.defaultState,
		DefaultLimit: cfg.defaultLimit,
		MaxLimit:     cfg.maxLimit,
		Logf:         func(format string, args ...any) { logf(cfg, format, args...) },
	})
	defer svc.Wait()

	errs := make(chan error, 64)
	drained := drainErrors(cfg, errs)

	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           newRouter(cfg, svc, provider, errs),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	go store.RunSweeper(ctx, st, cfg.sweepInterval, func(format string, args ...any) { logf(cfg, format, args...) })

	serveErr := make(chan error, 1)
	go func() {
		var err error
		logf(cfg, "SERVE: Listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)
		if cfg.tlsKey != "" && cfg.tlsCert != "" {
			err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		close(errs)
		<-drained
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Handlers may still hold errs if shutdown timed out.
	if err := srv.Shutdown(shutdownCtx); err == nil {
		close(errs)
		<-drained
	}

	logf(cfg, "SERVE: Shut down")

	return nil
}
