package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/urlregistry/cmd"
)

var clearLogsFlag bool

// LogsCmd represents the 'logs' command.
var LogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the persisted event log, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		a, err := cmd.NewApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out := c.OutOrStdout()
		if clearLogsFlag {
			a.Events.Clear()
			fmt.Fprintln(out, "Event log cleared.")
			return nil
		}

		for _, e := range a.Events.Entries() {
			fmt.Fprintf(out, "%s [%-7s] %s", e.Timestamp.Format(timeLayout), e.Level, e.Message)
			if len(e.Data) > 0 {
				fmt.Fprintf(out, " %v", e.Data)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	LogsCmd.Flags().BoolVar(&clearLogsFlag, "clear", false, "Remove every entry")
	cmd.RootCmd.AddCommand(LogsCmd)
}
