package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/urlregistry/cmd"
	"github.com/axellelanca/urlregistry/internal/services"
)

var (
	longURLFlag  string
	codeFlag     string
	validityFlag int
)

// CreateCmd represents the 'create' command.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a short URL for a long URL.",
	Long: `Create a short alias with a validity window in minutes (1 to 10080).
Without --code a random 6-character code is generated.

Example:
  urlregistry create --url="https://go.dev/doc" --code=godocs --validity=60`,
	RunE: func(c *cobra.Command, args []string) error {
		a, err := cmd.NewApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		validity := validityFlag
		if !c.Flags().Changed("validity") {
			validity = a.Config.Registry.DefaultValidityMinutes
		}

		rec, err := a.Registry.Create(c.Context(), services.CreateRequest{
			OriginalURL:     longURLFlag,
			CustomShortCode: codeFlag,
			ValidityMinutes: validity,
		})
		if err != nil {
			return fmt.Errorf("failed to create short URL: %w", err)
		}

		out := c.OutOrStdout()
		fmt.Fprintln(out, "Short URL created successfully:")
		fmt.Fprintf(out, "Code: %s\n", rec.ShortCode)
		fmt.Fprintf(out, "Full URL: %s\n", a.ShortURL(rec.ShortCode))
		fmt.Fprintf(out, "Expires: %s\n", rec.ExpiresAt.Format(timeLayout))
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVar(&longURLFlag, "url", "", "The long URL to shorten")
	CreateCmd.Flags().StringVar(&codeFlag, "code", "", "Custom short code (3-20 letters or digits)")
	CreateCmd.Flags().IntVar(&validityFlag, "validity", 0, "Validity in minutes (default from config)")
	_ = CreateCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(CreateCmd)
}
