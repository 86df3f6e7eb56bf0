/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/Seednode/homebet/internal/client"
	"github.com/Seednode/homebet/internal/models"
)

// describeSession renders a one-line summary of a session snapshot.
func describeSession(s models.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s status=%s round=%d/%d", s.ID, s.Status, s.CurrentPropertyIndex+1, len(s.Properties))

	for _, p := range s.Players {
		fmt.Fprintf(&b, " %s(%s)=%d", p.ID, p.Handle, p.Score)
	}

	if current, ok := s.CurrentProperty(); ok && s.Status != models.StatusCompleted {
		fmt.Fprintf(&b, " property=%q", current.Address)
	}

	if s.Winner != "" {
		fmt.Fprintf(&b, " winner=%s", s.Winner)
	}

	return b.String()
}

func watchSession(ctx context.Context, wc *watchConfig, out io.Writer) error {
	c := client.New(wc.server, nil)
	m := client.NewMirror(c, wc.id)
	m.Interval = wc.interval
	m.Logf = func(format string, args ...any) {
		log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
	}

	var last string
	m.OnUpdate = func(s models.Session) {
		line := describeSession(s)
		if line == last {
			return
		}
		last = line
		fmt.Fprintln(out, line)
	}

	// Fails fast on a bad id or an unreachable server before polling.
	if _, err := m.Poll(ctx); err != nil {
		return err
	}

	err := m.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
