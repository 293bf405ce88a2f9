package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/protocol"
)

// WatchOptions controls a watch session
type WatchOptions struct {
	Join   string // Room to join; a new room is requested when empty
	Ready  bool   // Ready up whenever the room is waiting on us
	ExitOn string // Stop after this event arrives
}

func newWatchCmd() *cobra.Command {
	var opts WatchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open a room (or join one) and stream its events",
		Long: `Connect to the game socket, request a new room or join an existing one,
and print every event the server sends.

Events include:
  - requestRoomResponse: The code of the new room
  - gameReady: The room is full
  - opponentReady: The other player is ready
  - dataReady: A round started, with its letters and anagrams
  - scoreboardUpdate: A player reported a score
  - opponentLeft: The other player left or disconnected

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch(ctx, output(cmd), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Join, "join", "", "Join this room instead of requesting a new one")
	cmd.Flags().BoolVar(&opts.Ready, "ready", false, "Ready up automatically")
	cmd.Flags().StringVar(&opts.ExitOn, "exit-on", "", "Disconnect after receiving this event")

	return cmd
}

func watch(ctx context.Context, out *Output, opts WatchOptions) error {
	sock, err := dialSocket(ctx)
	if err != nil {
		return err
	}
	defer sock.close()
	sock.closeOnDone(ctx)

	room := strings.ToUpper(opts.Join)
	if room != "" {
		err = sock.emit(protocol.EventRequestToJoin, room)
	} else {
		err = sock.emit(protocol.EventRequestRoom)
	}
	if err != nil {
		return err
	}

	for {
		f, err := sock.next(time.Time{})
		if err != nil {
			if ctx.Err() != nil {
				if !out.JSON() {
					out.PrintMessage("Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		args, _ := json.Marshal(f.Args)
		out.Print(SocketEvent{Time: time.Now(), Event: f.Event, Args: args})

		switch model.EventType(f.Event) {
		case model.EventRequestRoomResponse:
			if err := f.Arg(0, &room); err != nil {
				return err
			}
		case model.EventResponseRequestToJoin:
			var accepted bool
			if err := f.Arg(0, &accepted); err != nil {
				return err
			}
			if !accepted {
				return fmt.Errorf("could not join room %s", room)
			}
		case model.EventGameReady:
			if opts.Ready && room != "" {
				if err := sock.emit(protocol.EventPlayerReady, room); err != nil {
					return err
				}
			}
		case model.EventError:
			if cfg.Verbose {
				var body model.ErrorPayload
				_ = f.Arg(0, &body)
				out.PrintMessage("server error: " + body.Message)
			}
		}

		if opts.ExitOn != "" && f.Event == opts.ExitOn {
			return nil
		}
	}
}
