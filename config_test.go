/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"tls pair", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-key"},
		{"port", func(c *Config) { c.port = 70000 }, "invalid port"},
		{"store kind", func(c *Config) { c.storeKind = "redis" }, "invalid store"},
		{"sqlite path", func(c *Config) { c.storeKind = storeSQLite }, "--store-path"},
		{"bolt path", func(c *Config) { c.storeKind = storeBolt; c.storePath = "homebet.db" }, ""},
		{"ttl", func(c *Config) { c.sessionTTL = 0 }, "session ttl"},
		{"poll", func(c *Config) { c.pollInterval = -time.Second }, "poll interval"},
		{"sweep disabled", func(c *Config) { c.sweepInterval = 0 }, ""},
		{"sweep", func(c *Config) { c.sweepInterval = -time.Second }, "sweep interval"},
		{"fetch timeout", func(c *Config) { c.fetchTimeout = 0 }, "fetch timeout"},
		{"max limit", func(c *Config) { c.maxLimit = 0 }, "max limit"},
		{"default limit", func(c *Config) { c.defaultLimit = 6 }, "default limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			switch {
			case tt.want == "" && err != nil:
				t.Fatalf("validate: %v", err)
			case tt.want != "" && err == nil:
				t.Fatalf("validate succeeded, want error containing %q", tt.want)
			case tt.want != "" && !strings.Contains(err.Error(), tt.want):
				t.Fatalf("validate = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestFlagDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	if cfg.port != 8080 || cfg.bind != "0.0.0.0" {
		t.Fatalf("listen = %s:%d", cfg.bind, cfg.port)
	}
	if cfg.sessionTTL != 24*time.Hour || cfg.pollInterval != 2*time.Second || cfg.sweepInterval != 10*time.Minute {
		t.Fatalf("durations = %s %s %s", cfg.sessionTTL, cfg.pollInterval, cfg.sweepInterval)
	}
	if cfg.storeKind != storeMemory || cfg.defaultCity != "Provo" || cfg.defaultState != "UT" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.defaultLimit != 5 || cfg.maxLimit != 20 || cfg.fetchTimeout != 15*time.Second {
		t.Fatalf("limits = %d/%d timeout %s", cfg.defaultLimit, cfg.maxLimit, cfg.fetchTimeout)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestFlagsFromEnv(t *testing.T) {
	t.Setenv("HOMEBET_PORT", "9090")
	t.Setenv("HOMEBET_STORE", "sqlite")
	t.Setenv("HOMEBET_STORE_PATH", "/tmp/homebet.sqlite")
	t.Setenv("HOMEBET_SESSION_TTL", "2h")

	cfg := &Config{}
	cmd := newCmd(cfg)
	if err := cmd.ParseFlags([]string{"--session_ttl", "3h"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	if cfg.port != 9090 || cfg.storeKind != storeSQLite || cfg.storePath != "/tmp/homebet.sqlite" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.sessionTTL != 3*time.Hour {
		t.Fatalf("sessionTTL = %s, want flag to override env", cfg.sessionTTL)
	}
}

func TestWatchCommand(t *testing.T) {
	cmd := newCmd(&Config{})

	watch, _, err := cmd.Find([]string{"watch"})
	if err != nil || watch.Name() != "watch" {
		t.Fatalf("Find(watch) = %v, %v", watch, err)
	}

	wc := &watchConfig{server: "http://localhost:8080"}
	if err := wc.validate(); err == nil || !strings.Contains(err.Error(), "--id") {
		t.Fatalf("validate without id = %v", err)
	}
	wc.id = "abc"
	if err := wc.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
