package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ricky12Awesome/spotify-info/internal/errors"
	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
	"github.com/Ricky12Awesome/spotify-info/pkg/source"
)

func listenCmd(g *globalOptions) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print events from the player as they arrive",
		Long: `Bind the listener and print every decoded event until interrupted.

Decode errors are logged and skipped. When the player disconnects the
listener waits for it to come back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log, cmd.ErrOrStderr())

			l, err := bind(cfg, logger, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stream := source.NewStream(l, source.WithToken(source.TokenFromContext(ctx)))
			defer stream.Close()

			out := cmd.OutOrStdout()
			received := 0
			for ev, err := range stream.Events() {
				if err != nil {
					if stream.State() == source.Closed {
						return errors.New(errors.CodeListenerClosed).Wrap(err)
					}
					logger.Warn("receive failed", "error", err)
					continue
				}

				fmt.Fprintln(out, describeEvent(ev))
				received++
				if count > 0 && received >= count {
					break
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Exit after this many events (0 = run until interrupted)")

	return cmd
}

// describeEvent renders an event as one human-readable line.
func describeEvent(ev protocol.Event) string {
	switch e := ev.(type) {
	case protocol.TrackChanged:
		return "Changed track to " + describeTrack(e.Track)
	case protocol.StateChanged:
		return "Changed state to " + e.State.String()
	case protocol.ProgressChanged:
		return fmt.Sprintf("Changed progress to %.3f", e.Fraction)
	default:
		return fmt.Sprintf("Unknown event %T", ev)
	}
}

func describeTrack(t protocol.TrackInfo) string {
	s := fmt.Sprintf("%q", t.Title)
	if artist := t.Artist(); artist != "" {
		s += " by " + artist
	}
	if t.Album != "" {
		s += fmt.Sprintf(" (%s)", t.Album)
	}
	return fmt.Sprintf("%s [%s, %s]", s, t.State, t.Duration)
}
