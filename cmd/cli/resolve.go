package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/urlregistry/cmd"
	customerrors "github.com/axellelanca/urlregistry/internal/errors"
	"github.com/axellelanca/urlregistry/internal/location"
)

var referrerFlag string

// ResolveCmd represents the 'resolve' command. A successful resolution counts as a click.
var ResolveCmd = &cobra.Command{
	Use:   "resolve [short-code]",
	Short: "Resolve a short code to its original URL and record a click.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		a, err := cmd.NewApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		code := args[0]
		rec, err := a.Registry.Visit(c.Context(), code, referrerFlag, location.Mock{})
		if err != nil {
			var lookup *customerrors.LookupError
			if errors.As(err, &lookup) {
				return errors.New(guidance(code, err))
			}
			return err
		}

		fmt.Fprintln(c.OutOrStdout(), rec.OriginalURL)
		return nil
	},
}

func init() {
	ResolveCmd.Flags().StringVar(&referrerFlag, "referrer", "", "Referrer to record (default Direct)")
	cmd.RootCmd.AddCommand(ResolveCmd)
}
