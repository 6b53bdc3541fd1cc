// Package export turns the ledger into a CSV file and hands it to a share
// collaborator.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"controle_vendas/internal/sales"
)

// ErrNothingToExport is returned when the ledger is empty. It is an
// informational condition, not a failure.
var ErrNothingToExport = errors.New("nothing to export")

// Header is the first row of every export.
var Header = []string{"Produto", "Preço"}

// EncodeCSV renders the sales as CSV: the header row, then one row per sale
// with the price fixed to two decimals. Rows are separated by "\n" and the
// last row has no trailing newline. Fields holding commas, quotes or line
// breaks are quoted.
func EncodeCSV(list []sales.Sale) (string, error) {
	if len(list) == 0 {
		return "", ErrNothingToExport
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range list {
		if err := w.Write([]string{s.ProductName, s.Price.StringFixed(2)}); err != nil {
			return "", fmt.Errorf("failed to write sale %s: %w", s.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
