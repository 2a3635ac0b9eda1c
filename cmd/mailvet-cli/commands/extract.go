package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/mailvet/mailvet/validator"
	"github.com/spf13/cobra"
)

var extractSettings = &ExtractSettings{}

var extractCmd = &cobra.Command{
	Use:   "extract <input>",
	Short: "Extract e-mail addresses from a text file",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("unable to read %q, reason: %w", args[0], err)
		}

		emails := validator.ExtractAddresses(string(text))
		if len(emails) == 0 {
			cmd.PrintErrln("No email addresses found in file")
			return nil
		}

		cmd.PrintErrf("Found %d unique email addresses:\n", len(emails))
		for _, email := range emails {
			cmd.Printf("  %s\n", email)
		}

		if extractSettings.Output == "" {
			return nil
		}

		content := strings.Join(emails, "\n") + "\n"
		if err := os.WriteFile(extractSettings.Output, []byte(content), 0o644); err != nil {
			return fmt.Errorf("unable to write %q, reason: %w", extractSettings.Output, err)
		}

		cmd.PrintErrf("\nEmails saved to %s\n", extractSettings.Output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractSettings.Output, "output", "o", "", "Output file for extracted emails")
}
