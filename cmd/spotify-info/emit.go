package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/Ricky12Awesome/spotify-info/internal/errors"
	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
)

// trackFlags are the optional TrackInfo fields of `emit track`.
type trackFlags struct {
	uri        string
	album      string
	state      string
	duration   time.Duration
	cover      string
	background string
}

func emitCmd(g *globalOptions) *cobra.Command {
	var (
		tf   trackFlags
		hold time.Duration
		raw  bool
	)

	cmd := &cobra.Command{
		Use:   "emit EVENT [ARGS...]",
		Short: "Act as the player and send one event to a running listener",
		Long: `Connect to a listener the way the player extension does and send one event.

Events:
  track UID TITLE [ARTIST...]   a track change (see --album, --state, --duration)
  state playing|paused|stopped  a playback state change (numeric codes work too)
  progress FRACTION             a progress update
  raw FRAME                     FRAME sent verbatim

With --hold the connection stays open and control messages from the
listener, such as progress interval requests, are printed.`,
		Example: `  spotify-info emit track 4uLU6hMC "Never Gonna Give You Up" "Rick Astley"
  spotify-info emit state paused
  spotify-info emit --codec json progress 0.42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			codec, err := protocol.CodecByName(cfg.Listener.Codec)
			if err != nil {
				return errors.New(errors.CodeUnknownCodec).Wrap(err)
			}

			var frame []byte
			if args[0] == "raw" || raw {
				if len(args) < 2 {
					return errors.New(errors.CodeBadFrame).WithDetail("raw needs a FRAME argument.")
				}
				frame = []byte(strings.Join(args[1:], " "))
			} else {
				ev, err := buildEvent(args, tf)
				if err != nil {
					return errors.New(errors.CodeBadFrame).Wrap(err)
				}
				if frame, err = codec.EncodeEvent(ev); err != nil {
					return errors.New(errors.CodeBadFrame).Wrap(err)
				}
			}

			target := url.URL{Scheme: "ws", Host: cfg.Listener.Address, Path: cfg.Listener.Path}
			conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), target.String(), nil)
			if err != nil {
				return errors.New(errors.CodeDialFailed).Wrap(err)
			}
			defer conn.Close()

			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return errors.New(errors.CodeDialFailed).Wrap(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", frame)

			if hold > 0 {
				printControls(cmd, conn, codec, hold)
			}

			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&tf.uri, "uri", "", "Track URI (default spotify:track:UID)")
	flags.StringVar(&tf.album, "album", "", "Album name")
	flags.StringVar(&tf.state, "state", "playing", "Playback state of the track")
	flags.DurationVar(&tf.duration, "duration", 3*time.Minute, "Track duration")
	flags.StringVar(&tf.cover, "cover", "", "Cover image URL")
	flags.StringVar(&tf.background, "background", "", "Background image URL")
	flags.DurationVar(&hold, "hold", 0, "Keep the connection open this long and print control messages")
	flags.BoolVar(&raw, "raw", false, "Send the arguments verbatim")

	return cmd
}

// buildEvent turns emit arguments into an Event.
func buildEvent(args []string, tf trackFlags) (protocol.Event, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("missing event kind")
	}

	switch strings.ToLower(args[0]) {
	case "track":
		if len(args) < 3 {
			return nil, fmt.Errorf("track needs UID and TITLE")
		}
		state, err := parseState(tf.state)
		if err != nil {
			return nil, err
		}
		uri := tf.uri
		if uri == "" {
			uri = "spotify:track:" + args[1]
		}
		artists := args[3:]
		if len(artists) == 0 {
			artists = []string{"Unknown Artist"}
		}
		return protocol.TrackChanged{Track: protocol.TrackInfo{
			UID:           args[1],
			URI:           uri,
			State:         state,
			Duration:      tf.duration,
			Title:         args[2],
			Album:         tf.album,
			Artists:       artists,
			CoverURL:      optionalFlag(tf.cover),
			BackgroundURL: optionalFlag(tf.background),
		}}, nil

	case "state":
		if len(args) < 2 {
			return nil, fmt.Errorf("state needs a value")
		}
		state, err := parseState(args[1])
		if err != nil {
			return nil, err
		}
		return protocol.StateChanged{State: state}, nil

	case "progress":
		if len(args) < 2 {
			return nil, fmt.Errorf("progress needs a fraction")
		}
		f, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid fraction %q", args[1])
		}
		return protocol.ProgressChanged{Fraction: f}, nil

	default:
		return nil, fmt.Errorf("unknown event %q", args[0])
	}
}

// parseState accepts a state name or its wire code.
func parseState(s string) (protocol.PlaybackState, error) {
	switch strings.ToLower(s) {
	case "playing":
		return protocol.Playing, nil
	case "paused":
		return protocol.Paused, nil
	case "stopped":
		return protocol.Stopped, nil
	}
	code, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return protocol.Stopped, fmt.Errorf("invalid state %q", s)
	}
	return protocol.StateFromCode(code), nil
}

func optionalFlag(s string) *string {
	if s == "" {
		return nil
	}
	return protocol.Optional(s)
}

type controlDecoder interface {
	DecodeControl(frame []byte) (protocol.Control, error)
}

// printControls prints control frames received within hold.
func printControls(cmd *cobra.Command, conn *websocket.Conn, codec protocol.Codec, hold time.Duration) {
	out := cmd.OutOrStdout()
	_ = conn.SetReadDeadline(time.Now().Add(hold))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		dec, ok := codec.(controlDecoder)
		if !ok {
			fmt.Fprintf(out, "control %s\n", data)
			continue
		}
		c, err := dec.DecodeControl(data)
		if err != nil {
			fmt.Fprintf(out, "control %s (%v)\n", data, err)
			continue
		}
		if sp, ok := c.(protocol.SetProgressInterval); ok {
			fmt.Fprintf(out, "control %s interval=%s\n", c.ControlType(), sp.Interval)
			continue
		}
		fmt.Fprintf(out, "control %s\n", c.ControlType())
	}
}
