package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/urlregistry/cmd"
)

// StatsCmd represents the 'stats' command. Expired aliases still have statistics.
var StatsCmd = &cobra.Command{
	Use:   "stats [short-code]",
	Short: "Get statistics for a short URL",
	Long:  `Get the record and click history for the provided short code.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

func runStats(c *cobra.Command, args []string) error {
	a, err := cmd.NewApp(c.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	shortCode := args[0]
	rec, err := a.Registry.Get(shortCode)
	if err != nil {
		return errors.New(guidance(shortCode, err))
	}

	out := c.OutOrStdout()
	fmt.Fprintf(out, "Statistics for short code: %s\n", rec.ShortCode)
	fmt.Fprintf(out, "Original URL: %s\n", rec.OriginalURL)
	fmt.Fprintf(out, "Status: %s\n", status(rec))
	fmt.Fprintf(out, "Created: %s\n", rec.CreatedAt.Format(timeLayout))
	fmt.Fprintf(out, "Expires: %s\n", rec.ExpiresAt.Format(timeLayout))
	fmt.Fprintf(out, "Total clicks: %d\n", rec.ClickCount())
	for _, click := range rec.Clicks {
		fmt.Fprintf(out, "  %s  %-30s  %s\n", click.Timestamp.Format(timeLayout), click.Referrer, click.Location)
	}
	return nil
}
