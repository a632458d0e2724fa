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

type Config struct {
	bind          string
	db            string
	defaultLocale string
	port          int
	prefix        string
	profile       bool
	reapInterval  time.Duration
	roomRetention time.Duration
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
	if c.db == "" {
		return errors.New("--db must not be empty")
	}
	if !supportedLocale(c.defaultLocale) {
		return fmt.Errorf("unsupported locale (must be one of %s): %s", strings.Join(supportedLocales, ", "), c.defaultLocale)
	}
	if c.roomRetention <= 0 {
		return fmt.Errorf("invalid room retention (must be positive): %s", c.roomRetention)
	}
	if c.reapInterval <= 0 {
		return fmt.Errorf("invalid reap interval (must be positive): %s", c.reapInterval)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CRAZYSTAR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "crazystar",
		Short:         "A real-time party game of secret powers, revealed all at once.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: CRAZYSTAR_BIND)")
	fs.StringVar(&cfg.db, "db", "crazystar.db", "path to the room/power database file (env: CRAZYSTAR_DB)")
	fs.StringVar(&cfg.defaultLocale, "default-locale", "fr", "locale used before a visitor picks one (env: CRAZYSTAR_DEFAULT_LOCALE)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: CRAZYSTAR_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: CRAZYSTAR_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: CRAZYSTAR_PROFILE)")
	fs.DurationVar(&cfg.reapInterval, "reap-interval", 24*time.Hour, "time between sweeps for expired rooms (env: CRAZYSTAR_REAP_INTERVAL)")
	fs.DurationVar(&cfg.roomRetention, "room-retention", 24*time.Hour, "time before rooms expire, measured from creation (env: CRAZYSTAR_ROOM_RETENTION)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: CRAZYSTAR_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: CRAZYSTAR_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: CRAZYSTAR_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: CRAZYSTAR_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("crazystar v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
