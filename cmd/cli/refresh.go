package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/urlregistry/cmd"
)

// RefreshCmd represents the 'refresh' command.
var RefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute expiry status for every short URL and print a summary.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		a, err := cmd.NewApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		a.Registry.RefreshExpiryStatus(c.Context())
		s := a.Registry.Summary(0)

		out := c.OutOrStdout()
		fmt.Fprintf(out, "Total: %d  Active: %d  Expired: %d  Clicks: %d\n", s.TotalURLs, s.ActiveURLs, s.ExpiredURLs, s.TotalClicks)
		for i, top := range s.TopByClicks {
			fmt.Fprintf(out, "%2d. %s (%d clicks)\n", i+1, top.ShortCode, top.Clicks)
		}
		return nil
	},
}

func init() {
	cmd.RootCmd.AddCommand(RefreshCmd)
}
