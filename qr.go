/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	apperrors "github.com/Seednode/homebet/internal/errors"
	"github.com/Seednode/homebet/internal/game"
)

const qrSize = 320

// shareURL is the address a second player opens to join the session.
func shareURL(cfg *Config, r *http.Request, sessionID string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix + "/game/" + url.PathEscape(sessionID)
}

func serveSessionQR(cfg *Config, svc *game.Service, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(cfg, w, r, apperrors.New(apperrors.CodeValidation, "missing id"), errs)

			return
		}

		if _, err := svc.Get(r.Context(), id); err != nil {
			writeError(cfg, w, r, err, errs)

			return
		}

		png, err := qrcode.Encode(shareURL(cfg, r, id), qrcode.Medium, qrSize)
		if err != nil {
			writeError(cfg, w, r, apperrors.Wrap(apperrors.CodeInternal, "qr generation failed", err), errs)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logRequest(cfg, r, written, startTime, "QR code for session %s", id)
	}
}
