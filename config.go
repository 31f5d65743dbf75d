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
	bind             string
	eliminationPause time.Duration
	maxPlayers       int
	minPlayers       int
	origin           string
	port             int
	prefix           string
	profile          bool
	revealDelay      time.Duration
	speakingTime     time.Duration
	tlsCert          string
	tlsKey           string
	verbose          bool
	version          bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.minPlayers < 3 {
		return fmt.Errorf("invalid minimum player count (must be at least 3): %d", c.minPlayers)
	}
	if c.maxPlayers < c.minPlayers {
		return fmt.Errorf("maximum player count (%d) must not be lower than minimum (%d)", c.maxPlayers, c.minPlayers)
	}
	if c.revealDelay <= 0 || c.speakingTime <= 0 || c.eliminationPause <= 0 {
		return errors.New("all game timers must be positive durations")
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
	v.SetEnvPrefix("ODDWORD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "oddword",
		Short:         "A social deduction word game, served as a single self-contained webapp.",
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

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: ODDWORD_BIND)")
	fs.DurationVar(&cfg.eliminationPause, "elimination-pause", 3*time.Second, "pause after an elimination before the next round begins (env: ODDWORD_ELIMINATION_PAUSE)")
	fs.IntVar(&cfg.maxPlayers, "max-players", 10, "maximum players per room (env: ODDWORD_MAX_PLAYERS)")
	fs.IntVar(&cfg.minPlayers, "min-players", 4, "minimum players required to start a game (env: ODDWORD_MIN_PLAYERS)")
	fs.StringVar(&cfg.origin, "origin", "", "allowed websocket origin, empty to allow any (env: ODDWORD_ORIGIN)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: ODDWORD_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: ODDWORD_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: ODDWORD_PROFILE)")
	fs.DurationVar(&cfg.revealDelay, "reveal-delay", 5*time.Second, "time players get to read their role before speaking begins (env: ODDWORD_REVEAL_DELAY)")
	fs.DurationVar(&cfg.speakingTime, "speaking-time", 30*time.Second, "time budget per speaker turn (env: ODDWORD_SPEAKING_TIME)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: ODDWORD_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: ODDWORD_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: ODDWORD_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: ODDWORD_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("oddword v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
