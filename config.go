/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	storeMemory = "memory"
	storeSQLite = "sqlite"
	storeBolt   = "bolt"
)

type Config struct {
	bind          string
	defaultCity   string
	defaultLimit  int
	defaultState  string
	fetchTimeout  time.Duration
	maxLimit      int
	pollInterval  time.Duration
	port          int
	prefix        string
	profile       bool
	sessionTTL    time.Duration
	storeKind     string
	storePath     string
	sweepInterval time.Duration
	tlsCert       string
	tlsKey        string
	verbose       bool
	version       bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}

	switch c.storeKind {
	case storeMemory:
	case storeSQLite, storeBolt:
		if strings.TrimSpace(c.storePath) == "" {
			return fmt.Errorf("--store-path is required for the %s store", c.storeKind)
		}
	default:
		return fmt.Errorf("invalid store (must be one of memory, sqlite, bolt): %q", c.storeKind)
	}

	if c.sessionTTL <= 0 {
		return fmt.Errorf("invalid session ttl (must be positive): %s", c.sessionTTL)
	}
	if c.pollInterval <= 0 {
		return fmt.Errorf("invalid poll interval (must be positive): %s", c.pollInterval)
	}
	if c.sweepInterval < 0 {
		return fmt.Errorf("invalid sweep interval (must not be negative): %s", c.sweepInterval)
	}
	if c.fetchTimeout <= 0 {
		return fmt.Errorf("invalid fetch timeout (must be positive): %s", c.fetchTimeout)
	}
	if c.maxLimit < 1 {
		return fmt.Errorf("invalid max limit (must be at least 1): %d", c.maxLimit)
	}
	if c.defaultLimit < 1 || c.defaultLimit > c.maxLimit {
		return fmt.Errorf("invalid default limit (must be between 1-%d inclusive): %d", c.maxLimit, c.defaultLimit)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

type watchConfig struct {
	server   string
	id       string
	interval time.Duration
}

func (c *watchConfig) validate() error {
	if c.server == "" {
		return errors.New("--server is required")
	}
	if c.id == "" {
		return errors.New("--id is required")
	}
	if c.interval < 0 {
		return fmt.Errorf("invalid interval (must not be negative): %s", c.interval)
	}
	return nil
}

func normalizeFlags(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

// bindEnv lets every flag in fs be set from its HOMEBET_ environment variable.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newViper(prefix string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func newCmd(cfg *Config) *cobra.Command {
	v := newViper("HOMEBET")

	cmd := &cobra.Command{
		Use:           "homebet",
		Short:         "A two-player real-estate price guessing game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	normalizeFlags(fs)

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: HOMEBET_BIND)")
	fs.StringVar(&cfg.defaultCity, "default-city", "Provo", "city used when a session does not name one (env: HOMEBET_DEFAULT_CITY)")
	fs.IntVar(&cfg.defaultLimit, "default-limit", 5, "properties per session when a request does not ask for a count (env: HOMEBET_DEFAULT_LIMIT)")
	fs.StringVar(&cfg.defaultState, "default-state", "UT", "state code used when a session does not name one (env: HOMEBET_DEFAULT_STATE)")
	fs.DurationVar(&cfg.fetchTimeout, "fetch-timeout", 15*time.Second, "time allowed for fetching live listings after a session is created (env: HOMEBET_FETCH_TIMEOUT)")
	fs.IntVar(&cfg.maxLimit, "max-limit", 20, "maximum properties per session (env: HOMEBET_MAX_LIMIT)")
	fs.DurationVar(&cfg.pollInterval, "poll-interval", 2*time.Second, "poll interval advertised to clients (env: HOMEBET_POLL_INTERVAL)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: HOMEBET_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: HOMEBET_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: HOMEBET_PROFILE)")
	fs.DurationVar(&cfg.sessionTTL, "session-ttl", 24*time.Hour, "lifetime of a game session (env: HOMEBET_SESSION_TTL)")
	fs.StringVar(&cfg.storeKind, "store", storeMemory, "session store backend: memory, sqlite or bolt (env: HOMEBET_STORE)")
	fs.StringVar(&cfg.storePath, "store-path", "", "database file for the sqlite and bolt stores (env: HOMEBET_STORE_PATH)")
	fs.DurationVar(&cfg.sweepInterval, "sweep-interval", 10*time.Minute, "time between sweeps of expired sessions, 0 to disable (env: HOMEBET_SWEEP_INTERVAL)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: HOMEBET_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: HOMEBET_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: HOMEBET_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: HOMEBET_VERSION)")

	bindEnv(v, fs)

	cmd.AddCommand(newWatchCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("homebet v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newWatchCmd() *cobra.Command {
	v := newViper("HOMEBET_WATCH")
	wc := &watchConfig{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a session by polling a homebet server.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wc.validate(); err != nil {
				return err
			}
			return watchSession(cmd.Context(), wc, cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()

	normalizeFlags(fs)

	fs.StringVar(&wc.server, "server", "http://localhost:8080", "base URL of the server, including any prefix (env: HOMEBET_WATCH_SERVER)")
	fs.StringVar(&wc.id, "id", "", "session to follow (env: HOMEBET_WATCH_ID)")
	fs.DurationVar(&wc.interval, "interval", 0, "poll interval, 0 to use the server's (env: HOMEBET_WATCH_INTERVAL)")

	bindEnv(v, fs)

	return cmd
}
