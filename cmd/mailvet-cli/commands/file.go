package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/mailvet/mailvet/batch"
	"github.com/mailvet/mailvet/report"
	"github.com/mailvet/mailvet/validator"
	"github.com/spf13/cobra"
)

var fileSettings = &FileSettings{}

var fileCmd = &cobra.Command{
	Use:   "file <input>",
	Short: "Validate e-mail addresses from a file, one per line, concurrently",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("unable to open %q, reason: %w", args[0], err)
		}

		defer func() {
			_ = f.Close()
		}()

		emails, err := createLineIterator(f).Collect()
		if err != nil {
			return fmt.Errorf("unable to read %q, reason: %w", args[0], err)
		}

		if len(emails) == 0 {
			cmd.PrintErrln("No emails found in file")
			return nil
		}

		cmd.PrintErrf("Validating %d emails...\n", len(emails))

		v := newLookupValidator(fileSettings.Resolver)
		engine := batch.NewEngine(v.Check,
			batch.WithWorkers(fileSettings.Workers),
			batch.WithProgress(func(completed, total int) {
				fmt.Fprintf(cmd.ErrOrStderr(), "\rProgress: %.1f%%", float64(completed)/float64(total)*100)
			}),
		)

		results, summary := engine.Run(cmd.Context(), emails, validator.Request{
			CheckMX:     !fileSettings.SkipMX,
			CheckDomain: !fileSettings.SkipDomain,
		})

		cmd.PrintErrln("\nValidation complete!")
		_ = report.WriteSummary(cmd.ErrOrStderr(), summary)

		var out io.Writer = cmd.OutOrStdout()
		if fileSettings.Output != "" {
			dst, err := os.Create(fileSettings.Output)
			if err != nil {
				return fmt.Errorf("unable to create %q, reason: %w", fileSettings.Output, err)
			}

			defer func() {
				_ = dst.Close()
			}()

			out = dst
		}

		if err := report.Write(out, fileSettings.Format, results); err != nil {
			return fmt.Errorf("unable to write results, reason: %w", err)
		}

		if fileSettings.Output != "" {
			cmd.PrintErrf("Results saved to %s\n", fileSettings.Output)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(fileCmd)

	fileCmd.Flags().StringVarP(&fileSettings.Output, "output", "o", "", "Output file for results, stdout when omitted")
	fileCmd.Flags().StringVarP(&fileSettings.Format, "format", "f", report.FormatCSV, "Output format, csv or json")
	fileCmd.Flags().IntVarP(&fileSettings.Workers, "workers", "w", batch.DefaultWorkers, "Number of concurrent workers")
	fileCmd.Flags().BoolVar(&fileSettings.SkipMX, "no-mx", false, "Skip the MX record check")
	fileCmd.Flags().BoolVar(&fileSettings.SkipDomain, "no-domain", false, "Skip the domain existence check")
	fileCmd.Flags().IPVar(&fileSettings.Resolver, "resolver", nil, "Custom resolver to use, otherwise system default is used")
}
