/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/homebet/internal/api"
	apperrors "github.com/Seednode/homebet/internal/errors"
	"github.com/Seednode/homebet/internal/game"
	"github.com/Seednode/homebet/internal/listing"
)

var errBadBody = apperrors.New(apperrors.CodeValidation, "invalid request body")

func logRequest(cfg *Config, r *http.Request, written int, startTime time.Time, format string, args ...any) {
	logf(cfg, "SERVE: "+format+" (%s) to %s in %s",
		append(args,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)...,
	)
}

func serveCreateSession(cfg *Config, svc *game.Service, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req api.CreateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(cfg, w, r, errBadBody, errs)

			return
		}

		session, err := svc.Create(r.Context(), game.CreateParams{
			Handle: req.Handle,
			City:   req.City,
			State:  req.State,
			Limit:  req.Limit,
		})
		if err != nil {
			writeError(cfg, w, r, err, errs)

			return
		}

		written := writeJSON(cfg, w, http.StatusOK, api.CreateResponse{SessionID: session.ID}, errs)

		logRequest(cfg, r, written, startTime, "Created session %s", session.ID)
	}
}

func serveCreateSolo(cfg *Config, svc *game.Service, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req api.SoloRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(cfg, w, r, errBadBody, errs)

			return
		}

		session, err := svc.Create(r.Context(), game.CreateParams{
			Handle:   req.Handle,
			City:     req.City,
			State:    req.State,
			Location: strings.TrimSpace(req.Location),
			Limit:    req.Limit,
			Solo:     true,
		})
		if err != nil {
			writeError(cfg, w, r, err, errs)

			return
		}

		written := writeJSON(cfg, w, http.StatusOK, api.CreateResponse{SessionID: session.ID}, errs)

		logRequest(cfg, r, written, startTime, "Created solo session %s", session.ID)
	}
}

func serveGetSession(cfg *Config, svc *game.Service, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(cfg, w, r, apperrors.New(apperrors.CodeValidation, "missing id"), errs)

			return
		}

		session, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(cfg, w, r, err, errs)

			return
		}

		written := writeJSON(cfg, w, http.StatusOK, api.SessionResponse{
			Session:        session,
			PollIntervalMs: cfg.pollInterval.Milliseconds(),
		}, errs)

		logRequest(cfg, r, written, startTime, "Session %s", id)
	}
}

func serveJoinSession(cfg *Config, svc *game.Service, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req api.JoinRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(cfg, w, r, errBadBody, errs)

			return
		}

		if _, err := svc.Join(r.Context(), req.ID, req.Handle); err != nil {
			writeError(cfg, w, r, err, errs)

			return
		}

		written := writeJSON(cfg, w, http.StatusOK, api.OKResponse{OK: true}, errs)

		logRequest(cfg, r, written, startTime, "Joined session %s", req.ID)
	}
}

func serveSubmitGuess(cfg *Config, svc *game.Service, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req api.GuessRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(cfg, w, r, errBadBody, errs)

			return
		}

		if req.ID == "" || req.PlayerID == "" || req.PropertyID == "" || req.Amount == nil {
			writeError(cfg, w, r, apperrors.New(apperrors.CodeValidation, "missing fields"), errs)

			return
		}

		res, err := svc.SubmitGuess(r.Context(), game.GuessParams{
			SessionID:  req.ID,
			PlayerID:   req.PlayerID,
			PropertyID: req.PropertyID,
			Amount:     *req.Amount,
		})
		if err != nil {
			writeError(cfg, w, r, err, errs)

			return
		}

		written := writeJSON(cfg, w, http.StatusOK, api.GuessResponse{
			OK:       true,
			Points:   res.Score.Points,
			Accuracy: res.Score.Accuracy,
			Bonus:    res.Score.Bonus,
			Perfect:  res.Score.Perfect,
		}, errs)

		logRequest(cfg, r, written, startTime, "Guess from %s in session %s", req.PlayerID, req.ID)
	}
}

func serveRehydrate(cfg *Config, svc *game.Service, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req api.RehydrateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(cfg, w, r, errBadBody, errs)

			return
		}

		if req.Session == nil {
			writeError(cfg, w, r, apperrors.New(apperrors.CodeValidation, "missing session"), errs)

			return
		}

		restored, err := svc.Rehydrate(r.Context(), *req.Session)
		if err != nil {
			writeError(cfg, w, r, err, errs)

			return
		}

		written := writeJSON(cfg, w, http.StatusOK, api.RehydrateResponse{OK: true, Restored: restored}, errs)

		logRequest(cfg, r, written, startTime, "Rehydrate of session %s (restored=%t)", req.Session.ID, restored)
	}
}

func serveProperties(cfg *Config, listings listing.Fetcher, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		q := r.URL.Query()

		query := listing.Query{
			City:  q.Get("city"),
			State: q.Get("state"),
			Limit: cfg.defaultLimit,
		}
		if query.City == "" {
			query.City = cfg.defaultCity
		}
		if query.State == "" {
			query.State = cfg.defaultState
		}

		if raw := q.Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				writeError(cfg, w, r, apperrors.New(apperrors.CodeValidation, "limit must be a positive integer"), errs)

				return
			}
			query.Limit = min(limit, cfg.maxLimit)
		}

		props, err := listings.Fetch(r.Context(), query)
		if err != nil {
			writeError(cfg, w, r, err, errs)

			return
		}

		written := writeJSON(cfg, w, http.StatusOK, api.PropertiesResponse{Properties: props}, errs)

		logRequest(cfg, r, written, startTime, "%d listings for %s, %s", len(props), query.City, query.State)
	}
}

func registerSessionAPI(cfg *Config, svc *game.Service, mux *httprouter.Router, errs chan<- error) {
	mux.POST(cfg.prefix+"/session", serveCreateSession(cfg, svc, errs))
	mux.GET(cfg.prefix+"/session", serveGetSession(cfg, svc, errs))
	mux.POST(cfg.prefix+"/session/join", serveJoinSession(cfg, svc, errs))
	mux.POST(cfg.prefix+"/session/guess", serveSubmitGuess(cfg, svc, errs))
	mux.POST(cfg.prefix+"/session/rehydrate", serveRehydrate(cfg, svc, errs))
	mux.GET(cfg.prefix+"/session/qr", serveSessionQR(cfg, svc, errs))
	mux.POST(cfg.prefix+"/solo", serveCreateSolo(cfg, svc, errs))
}
