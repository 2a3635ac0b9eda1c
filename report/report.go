// Package report renders a result collection for the two supported sinks: CSV rows for spreadsheets and a
// pretty-printed JSON document. Unknown signals render as N/A in CSV and null in JSON.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mailvet/mailvet/batch"
	"github.com/mailvet/mailvet/types"
	"github.com/mailvet/mailvet/validator"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Write renders the results in the named format.
func Write(w io.Writer, format string, results []validator.Result) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, results)
	case FormatJSON:
		return WriteJSON(w, results)
	}

	return fmt.Errorf("unsupported output format %q", format)
}

func WriteCSV(w io.Writer, results []validator.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Email", "Format Valid", "Has MX", "Domain Exists", "Status"}); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Email,
			yesNo(r.ValidFormat),
			tristateCell(r.HasMX),
			tristateCell(r.DomainExists),
			r.Status.String(),
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, results []validator.Result) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")

	if results == nil {
		results = []validator.Result{}
	}

	return e.Encode(results)
}

// WriteSummary renders the per-status counts as a human readable block.
func WriteSummary(w io.Writer, s batch.Summary) error {
	_, err := fmt.Fprintf(w, "\nSummary:\nValid: %d\nDoubtful: %d\nInvalid: %d\n", s.Valid, s.Doubtful, s.Invalid)
	return err
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}

	return "No"
}

func tristateCell(t types.Tristate) string {
	value, known := t.Bool()
	if !known {
		return "N/A"
	}

	return yesNo(value)
}
