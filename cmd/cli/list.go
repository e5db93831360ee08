package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/axellelanca/urlregistry/cmd"
)

// ListCmd represents the 'list' command.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every short URL in creation order.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		a, err := cmd.NewApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		records := a.Registry.List()
		if len(records) == 0 {
			fmt.Fprintln(c.OutOrStdout(), "No short URLs yet.")
			return nil
		}

		w := tabwriter.NewWriter(c.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tSTATUS\tCLICKS\tEXPIRES\tURL")
		for i := range records {
			rec := &records[i]
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", rec.ShortCode, status(rec), rec.ClickCount(), rec.ExpiresAt.Format(timeLayout), rec.OriginalURL)
		}
		return w.Flush()
	},
}

func init() {
	cmd.RootCmd.AddCommand(ListCmd)
}
