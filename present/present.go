// Package present renders harmonized transactions for people and spreadsheets.
package present

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/helpcomp/camt-harmonizer/camt"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatXLSX  = "xlsx"

	unknownDate = "unknown"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatTable, FormatJSON, FormatXLSX}

var header = []string{"Date", "Montant", "Libellé Original", "Libellé Harmonisé", "Référence"}

// Write renders transactions to w in the given format.
func Write(w io.Writer, format string, transactions []camt.Transaction) error {
	switch format {
	case FormatTable, "":
		return Table(w, transactions)
	case FormatJSON:
		return JSON(w, transactions)
	case FormatXLSX:
		return XLSX(w, transactions)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

type row struct {
	Date            string      `json:"date"`
	Amount          json.Number `json:"amount"`
	OriginalLabel   string      `json:"originalLabel"`
	HarmonizedLabel string      `json:"harmonizedLabel"`
	Reference       string      `json:"reference"`
}

func toRow(t camt.Transaction) row {
	date := unknownDate
	if t.HasKnownDate() {
		date = t.Date.String()
	}
	return row{
		Date:            date,
		Amount:          json.Number(t.Amount.StringFixed(2)),
		OriginalLabel:   t.OriginalLabel,
		HarmonizedLabel: t.HarmonizedLabel,
		Reference:       t.Reference,
	}
}

// Table prints the tab aligned results table.
func Table(w io.Writer, transactions []camt.Transaction) error {
	if _, err := fmt.Fprintf(w, "\n--- Results (%d) ---\n", len(transactions)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, t := range transactions {
		r := toRow(t)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", r.Date, r.Amount, r.OriginalLabel, r.HarmonizedLabel, r.Reference)
	}
	return tw.Flush()
}

func JSON(w io.Writer, transactions []camt.Transaction) error {
	rows := make([]row, len(transactions))
	for i, t := range transactions {
		rows[i] = toRow(t)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rows)
}
