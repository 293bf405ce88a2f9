package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/protocol"
)

func newPingCmd() *cobra.Command {
	var (
		count    int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Measure round-trip latency over the game socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return errors.New("count must be at least 1")
			}

			sock, err := dialSocket(cmd.Context())
			if err != nil {
				return err
			}
			defer sock.close()

			result := PingResult{Samples: make([]time.Duration, 0, count)}
			for i := range count {
				if i > 0 {
					time.Sleep(interval)
				}
				rtt, err := pingOnce(sock)
				if err != nil {
					return err
				}
				result.Samples = append(result.Samples, rtt)
			}
			summarize(&result)

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", 3, "Number of pings")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "Delay between pings")

	return cmd
}

func pingOnce(sock *socket) (time.Duration, error) {
	sent := time.Now()
	ts := float64(sent.UnixMilli())
	if err := sock.emit(protocol.EventPingServer, ts); err != nil {
		return 0, err
	}

	deadline := sent.Add(cfg.Timeout)
	for {
		f, err := sock.next(deadline)
		if err != nil {
			return 0, fmt.Errorf("waiting for pong: %w", err)
		}
		if f.Event != string(model.EventPingFromServer) {
			continue
		}
		var echoed float64
		if err := f.Arg(0, &echoed); err == nil && echoed == ts {
			return time.Since(sent), nil
		}
	}
}

func summarize(p *PingResult) {
	if len(p.Samples) == 0 {
		return
	}
	var total time.Duration
	p.Min, p.Max = p.Samples[0], p.Samples[0]
	for _, d := range p.Samples {
		total += d
		p.Min = min(p.Min, d)
		p.Max = max(p.Max, d)
	}
	p.Avg = total / time.Duration(len(p.Samples))
}
