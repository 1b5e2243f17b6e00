package sheet

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const valueInputUserEntered = "USER_ENTERED"

// GoogleSheet stores listing rows in a Google Sheets spreadsheet.
type GoogleSheet struct {
	svc           *sheets.Service
	spreadsheetID string
	readRange     string
	title         string
	firstCol      string
	lastCol       string
}

// NewGoogleSheet connects to the spreadsheet with the given client options
// (normally the service-account credentials with the spreadsheets scope).
func NewGoogleSheet(ctx context.Context, spreadsheetID, a1Range string, opts ...option.ClientOption) (*GoogleSheet, error) {
	title, first, last, err := splitRange(a1Range)
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &GoogleSheet{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		readRange:     a1Range,
		title:         title,
		firstCol:      first,
		lastCol:       last,
	}, nil
}

// ReadRows fetches the whole range.
func (g *GoogleSheet) ReadRows(ctx context.Context) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet range %s: %w", g.readRange, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		row := make([]string, len(values))
		for j, v := range values {
			row[j] = fmt.Sprint(v)
		}
		rows[i] = row
	}
	return rows, nil
}

// AppendRow adds a row after the last non-empty row of the range.
func (g *GoogleSheet) AppendRow(ctx context.Context, row []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toValues(row)}}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, g.readRange, vr).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", g.readRange, err)
	}
	return nil
}

// UpdateRow overwrites one row in place.
func (g *GoogleSheet) UpdateRow(ctx context.Context, rowNumber int, row []string) error {
	if rowNumber < 1 {
		return fmt.Errorf("invalid row number %d", rowNumber)
	}
	target := rowRange(g.title, g.firstCol, g.lastCol, rowNumber)
	vr := &sheets.ValueRange{Values: [][]interface{}{toValues(row)}}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, target, vr).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update sheet range %s: %w", target, err)
	}
	return nil
}

func toValues(row []string) []interface{} {
	values := make([]interface{}, len(row))
	for i, c := range row {
		values[i] = c
	}
	return values
}
