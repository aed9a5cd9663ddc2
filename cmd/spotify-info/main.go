package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ricky12Awesome/spotify-info/internal/config"
	"github.com/Ricky12Awesome/spotify-info/internal/errors"
	"github.com/Ricky12Awesome/spotify-info/pkg/server"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "spotify-info",
		Short: "Receive now-playing telemetry from the Spotify player extension",
		Long: `spotify-info listens on a loopback WebSocket for the Spotify player
extension and decodes the track, playback state and progress updates it sends.

The listener reconnects transparently whenever the player restarts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				errors.DisableColors()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/spotify-info/config.toml)")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&g.logFormat, "log-format", "", "Log format: text or json")
	flags.StringVar(&g.addr, "addr", "", "Listener address (default 127.0.0.1:19532)")
	flags.IntVar(&g.port, "port", 0, "Listener port on the loopback interface")
	flags.StringVar(&g.codec, "codec", "", "Wire codec: tagged or json")
	flags.DurationVar(&g.progressInterval, "progress-interval", 0, "Progress update interval to request from the player")
	flags.BoolVar(&g.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		listenCmd(g),
		watchCmd(g),
		emitCmd(g),
		versionCmd(),
	)

	return rootCmd
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath       string
	logLevel         string
	logFormat        string
	addr             string
	port             int
	codec            string
	progressInterval time.Duration
	noColor          bool
}

// load reads the config file and environment, then applies flags the user set.
func (g *globalOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Listener.Address = g.addr
	}
	if flags.Changed("port") {
		cfg.Listener.Address = server.LocalAddress(g.port)
	}
	if flags.Changed("codec") {
		cfg.Listener.Codec = g.codec
	}
	if flags.Changed("progress-interval") {
		cfg.Listener.ProgressIntervalMS = int(g.progressInterval.Milliseconds())
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// bind converts the listener section and binds it.
func bind(cfg *config.Config, logger *slog.Logger, configure func(*server.ServerConfig)) (*server.Listener, error) {
	sc, err := cfg.ServerConfig()
	if err != nil {
		return nil, err
	}
	sc.Logger = logger
	if configure != nil {
		configure(sc)
	}

	l, err := server.Bind(sc)
	if err != nil {
		return nil, errors.New(errors.CodeBindFailed).
			WithDetail("Address " + sc.Address + " is not available.").
			Wrap(err)
	}
	return l, nil
}
