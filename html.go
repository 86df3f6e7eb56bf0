/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/homebet/internal/game"
	"github.com/Seednode/homebet/internal/models"
)

func writeText(cfg *Config, w http.ResponseWriter, status int, data string, errs chan<- error) int {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	written, err := w.Write([]byte(data))
	if err != nil {
		errs <- err
	}

	return written
}

func serveIndex(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		p := cfg.prefix

		var b strings.Builder
		fmt.Fprintf(&b, "homebet v%s\n\n", releaseVersion)
		fmt.Fprintf(&b, "POST %s/session            {handle, city?, state?, limit?}\n", p)
		fmt.Fprintf(&b, "GET  %s/session?id=\n", p)
		fmt.Fprintf(&b, "POST %s/session/join       {id, handle}\n", p)
		fmt.Fprintf(&b, "POST %s/session/guess      {id, playerId, propertyId, amount}\n", p)
		fmt.Fprintf(&b, "POST %s/session/rehydrate  {session}\n", p)
		fmt.Fprintf(&b, "GET  %s/session/qr?id=\n", p)
		fmt.Fprintf(&b, "POST %s/solo               {handle?, location?, city?, state?, limit?}\n", p)
		fmt.Fprintf(&b, "GET  %s/properties?city=&state=&limit=\n", p)

		written := writeText(cfg, w, http.StatusOK, b.String(), errs)

		logRequest(cfg, r, written, startTime, "Index")
	}
}

// serveGamePage answers the share link with a plain-text summary of the
// session it points to.
func serveGamePage(cfg *Config, svc *game.Service, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		session, err := svc.Get(r.Context(), p.ByName("id"))
		if err != nil {
			status, body := errorBody(err)
			writeText(cfg, w, status, body.Error+"\n", errs)

			return
		}

		var b strings.Builder
		b.WriteString(describeSession(session))
		b.WriteString("\n")
		if session.Status == models.StatusWaiting {
			fmt.Fprintf(&b, "\nJoin with: POST %s/session/join {\"id\": %q, \"handle\": \"...\"}\n", cfg.prefix, session.ID)
		}

		written := writeText(cfg, w, http.StatusOK, b.String(), errs)

		logRequest(cfg, r, written, startTime, "Game page for session %s", session.ID)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		writeText(cfg, w, http.StatusOK, "Ok\n", errs)
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: /session
Disallow: /game/
Disallow: /properties

User-agent: Amazonbot
Disallow: /

User-agent: Bytespider
Disallow: /

User-agent: CCBot
Disallow: /

User-agent: GPTBot
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))

		writeText(cfg, w, http.StatusOK, data, errs)
	}
}
