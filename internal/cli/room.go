package cli

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room inspection commands",
	}

	cmd.AddCommand(newRoomInfoCmd())
	cmd.AddCommand(newRoomQRCmd())

	return cmd
}

func roomPath(code string) string {
	return "/api/v1/rooms/" + url.PathEscape(strings.ToUpper(code))
}

func newRoomInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <code>",
		Short: "Show a room's members, scores and state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room

			if err := client.Get(cmd.Context(), roomPath(args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRoomQRCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "qr <code>",
		Short: "Save a QR code of the room's join link as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := client.Raw(cmd.Context(), roomPath(args[0])+"/qr")
			if err != nil {
				return err
			}

			path := file
			if path == "" {
				path = strings.ToUpper(args[0]) + ".png"
			}
			if err := os.WriteFile(path, png, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			output(cmd).PrintMessage("QR code saved to " + path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Output file (default: <CODE>.png)")

	return cmd
}
