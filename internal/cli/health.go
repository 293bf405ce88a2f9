package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const healthPollInterval = 250 * time.Millisecond

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long: `Report server status along with the number of open connections and rooms.

With --wait, keep polling until the server answers or the wait expires.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := checkHealth(cmd.Context(), wait)
			if err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Retry until the server is up, for at most this long")

	return cmd
}

func checkHealth(ctx context.Context, wait time.Duration) (HealthResult, error) {
	var result HealthResult
	deadline := time.Now().Add(wait)

	for {
		err := client.Get(ctx, "/api/v1/health", &result)
		if err == nil {
			return result, nil
		}
		if wait <= 0 || time.Now().After(deadline) {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, fmt.Errorf("waiting for server: %w", ctx.Err())
		case <-time.After(healthPollInterval):
		}
	}
}
