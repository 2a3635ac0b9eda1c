package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mailvet/mailvet/validator"
	"github.com/spf13/cobra"
)

var checkSettings = &CheckSettings{}

var checkCmd = &cobra.Command{
	Use:   "check [email]",
	Short: "Validate e-mail addresses, one as argument or many over stdin",
	Long:  ``,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			return errors.New("too many arguments, expected 0 or 1")
		}

		if len(args) > 0 && isStdinPiped() {
			return errors.New("can't read both from stdin and argument")
		}

		if len(args) == 0 && !isStdinPiped() {
			return errors.New("missing argument")
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		v := newLookupValidator(checkSettings.Resolver)

		var it = createLineIterator(os.Stdin)
		if len(args) > 0 {
			it = createLineIterator(strings.NewReader(args[0]))
		}

		req := validator.Request{
			CheckMX:     !checkSettings.SkipMX,
			CheckDomain: !checkSettings.SkipDomain,
		}

		asJSON := checkSettings.JSONOutput || isStdoutPiped()
		jsonEncoder := json.NewEncoder(cmd.OutOrStdout())

		for it.Next() {
			email, err := it.Value()
			if err != nil {
				cmd.PrintErrln(err)
				continue
			}

			if email == "" {
				continue
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			req.Email = email
			r := v.Check(ctx, req)
			cancel()

			if asJSON {
				if err := jsonEncoder.Encode(r); err != nil {
					cmd.PrintErrln(err)
				}
				continue
			}

			printResultBlock(cmd.OutOrStdout(), r, req)
		}

		return it.Close()
	},
}

// printResultBlock renders a single result the way a human wants to read it
func printResultBlock(w io.Writer, r validator.Result, req validator.Request) {
	divider := strings.Repeat("-", 50)

	fmt.Fprintf(w, "\nEmail: %s\n%s\n", r.Email, divider)
	fmt.Fprintf(w, "Format validation: %s\n", passFail(r.ValidFormat))

	if r.ValidFormat {
		if req.CheckMX {
			value, _ := r.HasMX.Bool()
			fmt.Fprintf(w, "MX records: %s\n", passFail(value))
		}

		if req.CheckDomain {
			value, _ := r.DomainExists.Bool()
			fmt.Fprintf(w, "Domain exists: %s\n", passFail(value))
		}
	}

	fmt.Fprintf(w, "Overall status: %s\n%s\n", strings.ToUpper(r.Status.String()), divider)
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}

	return "fail"
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkSettings.SkipMX, "no-mx", false, "Skip the MX record check")
	checkCmd.Flags().BoolVar(&checkSettings.SkipDomain, "no-domain", false, "Skip the domain existence check")
	checkCmd.Flags().BoolVar(&checkSettings.JSONOutput, "json", false, "One JSON document per line, implied when stdout is a pipe")
	checkCmd.Flags().IPVar(&checkSettings.Resolver, "resolver", nil, "Custom resolver to use, otherwise system default is used")
}
