package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Ricky12Awesome/spotify-info/internal/errors"
	"github.com/Ricky12Awesome/spotify-info/internal/status"
	"github.com/Ricky12Awesome/spotify-info/pkg/metrics"
	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
	"github.com/Ricky12Awesome/spotify-info/pkg/server"
	"github.com/Ricky12Awesome/spotify-info/pkg/source"
)

func watchCmd(g *globalOptions) *cobra.Command {
	var (
		runFor     time.Duration
		statusAddr string
		noStatus   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the current track in the background and serve it over HTTP",
		Long: `Run the listener in the background and keep the latest track snapshot.

Track changes are printed as they happen. Unless disabled, the snapshot is
served on the status address:

  GET /track     current track as JSON (204 before the first track)
  GET /healthz   listener state
  GET /metrics   Prometheus metrics

Use --for to stop after a fixed time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("status-addr") {
				cfg.Status.Address = statusAddr
			}
			if noStatus {
				cfg.Status.Disabled = true
			}
			logger := newLogger(cfg.Log, cmd.ErrOrStderr())

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			collector := metrics.New(metrics.WithRegistry(reg))

			l, err := bind(cfg, logger, func(sc *server.ServerConfig) {
				sc.Metrics = collector
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if runFor > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, runFor)
				defer cancel()
			}

			out := cmd.OutOrStdout()
			handle := source.NewHandle()
			w := source.NewWatcher(l, handle,
				source.WithToken(source.TokenFromContext(ctx)),
				source.OnTrackChange(func(t protocol.TrackInfo) {
					fmt.Fprintln(out, "Now playing "+describeTrack(t))
				}),
				source.OnEvent(func(ev protocol.Event) {
					if sc, ok := ev.(protocol.StateChanged); ok {
						fmt.Fprintln(out, "Playback "+sc.State.String())
					}
				}),
				source.OnError(func(err error) {
					logger.Warn("watch error", "error", err)
				}),
			)

			if !cfg.Status.Disabled && cfg.Status.Address != "" {
				srv, err := serveStatus(cfg.Status.Address, status.NewRouter(handle,
					status.WithSource(w),
					status.WithGatherer(reg),
				))
				if err != nil {
					_ = w.Stop()
					return err
				}
				logger.Info("status server listening", "addr", cfg.Status.Address)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			w.Start()
			waitErr := w.Wait()
			_ = w.Stop()

			if track, ok := handle.Get(); ok {
				fmt.Fprintln(out, "Last track "+describeTrack(track))
			}
			if waitErr != nil {
				return errors.New(errors.CodeListenerClosed).Wrap(waitErr)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&runFor, "for", 0, "Stop after this long (0 = run until interrupted)")
	cmd.Flags().StringVar(&statusAddr, "status-addr", "", "Status HTTP address (default 127.0.0.1:19533, empty disables)")
	cmd.Flags().BoolVar(&noStatus, "no-status", false, "Do not serve the status endpoints")

	return cmd
}

// serveStatus binds addr synchronously so bind errors surface before the
// watcher starts, then serves handler in the background.
func serveStatus(addr string, handler http.Handler) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.New(errors.CodeStatusServer).Wrap(err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.Serve(ln)
	}()
	return srv, nil
}
