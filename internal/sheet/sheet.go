// Package sheet provides positional row storage for the listing table.
// Row numbers are 1-based and row 1 is always the header.
package sheet

import (
	"context"
	"fmt"
	"strings"
)

// RowStore reads and writes raw rows of the listing table.
type RowStore interface {
	// ReadRows returns every row including the header; index i holds row i+1.
	ReadRows(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, row []string) error
	UpdateRow(ctx context.Context, rowNumber int, row []string) error
}

// splitRange splits "Sayfa1!A:N" into the sheet title and the first/last column letters.
func splitRange(a1 string) (title, first, last string, err error) {
	bang := strings.LastIndex(a1, "!")
	if bang <= 0 {
		return "", "", "", fmt.Errorf("invalid sheet range %q", a1)
	}
	title = a1[:bang]
	cols := strings.Split(a1[bang+1:], ":")
	if len(cols) != 2 || cols[0] == "" || cols[1] == "" {
		return "", "", "", fmt.Errorf("invalid sheet range %q", a1)
	}
	return title, strings.TrimRight(cols[0], "0123456789"), strings.TrimRight(cols[1], "0123456789"), nil
}

// rowRange builds the A1 range covering a single row, e.g. "Sayfa1!A5:N5".
func rowRange(title, first, last string, rowNumber int) string {
	return fmt.Sprintf("%s!%s%d:%s%d", title, first, rowNumber, last, rowNumber)
}
