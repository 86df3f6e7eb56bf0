/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Seednode/homebet/internal/api"
	apperrors "github.com/Seednode/homebet/internal/errors"
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// errorBody converts err into the status and body sent to clients. Internal
// causes are logged, never returned.
func errorBody(err error) (int, api.ErrorResponse) {
	code := apperrors.CodeOf(err)

	body := api.ErrorResponse{
		Error: "internal server error",
		Code:  string(code),
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		switch code {
		case apperrors.CodeInternal:
			body.Error = appErr.Message
		case apperrors.CodeUpstream:
			body.Error = appErr.Message
			if appErr.Cause != nil {
				body.Details = appErr.Cause.Error()
			}
		default:
			body.Error = appErr.Error()
		}
	}

	return code.HTTPStatus(), body
}

func writeError(cfg *Config, w http.ResponseWriter, r *http.Request, err error, errs chan<- error) {
	status, body := errorBody(err)

	if status >= http.StatusInternalServerError {
		logf(cfg, "SERVE: %s %s from %s failed: %v", r.Method, r.URL.Path, realIP(r), err)
	}

	writeJSON(cfg, w, status, body, errs)
}
