package sheet

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteSheet keeps the listing table in a local SQLite file. It mirrors the
// positional behaviour of the spreadsheet so the site can run without Google
// credentials.
type SQLiteSheet struct {
	db      *sql.DB
	columns int
}

// OpenSQLiteSheet opens (or creates) the database at path and seeds the header row.
func OpenSQLiteSheet(ctx context.Context, path string, header []string) (*SQLiteSheet, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteSheet{db: db, columns: len(header)}
	if err := s.migrate(ctx, header); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *SQLiteSheet) Close() error {
	return s.db.Close()
}

func (s *SQLiteSheet) columnNames() []string {
	names := make([]string, s.columns)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i)
	}
	return names
}

func (s *SQLiteSheet) migrate(ctx context.Context, header []string) error {
	defs := make([]string, s.columns)
	for i, name := range s.columnNames() {
		defs[i] = name + " TEXT NOT NULL DEFAULT ''"
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS sheet_rows (row_number INTEGER PRIMARY KEY, %s)", strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create sheet_rows table: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sheet_rows").Scan(&count); err != nil {
		return fmt.Errorf("failed to count sheet rows: %w", err)
	}
	if count == 0 {
		return s.UpdateRow(ctx, 1, header)
	}
	return nil
}

// ReadRows returns all rows ordered by row number. Gaps are returned as empty rows.
func (s *SQLiteSheet) ReadRows(ctx context.Context) ([][]string, error) {
	query := fmt.Sprintf("SELECT row_number, %s FROM sheet_rows ORDER BY row_number", strings.Join(s.columnNames(), ", "))
	rs, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet rows: %w", err)
	}
	defer rs.Close()

	var rows [][]string
	for rs.Next() {
		var rowNumber int
		cells := make([]string, s.columns)
		dest := make([]interface{}, 0, s.columns+1)
		dest = append(dest, &rowNumber)
		for i := range cells {
			dest = append(dest, &cells[i])
		}
		if err := rs.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan sheet row: %w", err)
		}
		for len(rows) < rowNumber-1 {
			rows = append(rows, []string{})
		}
		rows = append(rows, trimTrailingEmpty(cells))
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sheet rows: %w", err)
	}
	return rows, nil
}

// AppendRow writes the row after the current last row.
func (s *SQLiteSheet) AppendRow(ctx context.Context, row []string) error {
	var last sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(row_number) FROM sheet_rows").Scan(&last); err != nil {
		return fmt.Errorf("failed to find last sheet row: %w", err)
	}
	return s.UpdateRow(ctx, int(last.Int64)+1, row)
}

// UpdateRow writes the row at the given position, creating it if needed.
func (s *SQLiteSheet) UpdateRow(ctx context.Context, rowNumber int, row []string) error {
	if rowNumber < 1 {
		return fmt.Errorf("invalid row number %d", rowNumber)
	}
	if len(row) > s.columns {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), s.columns)
	}
	names := s.columnNames()
	placeholders := make([]string, len(names))
	updates := make([]string, len(names))
	args := make([]interface{}, 0, len(names)+1)
	args = append(args, rowNumber)
	for i, name := range names {
		placeholders[i] = "?"
		updates[i] = fmt.Sprintf("%s = excluded.%s", name, name)
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		args = append(args, cell)
	}
	stmt := fmt.Sprintf(
		"INSERT INTO sheet_rows (row_number, %s) VALUES (?, %s) ON CONFLICT(row_number) DO UPDATE SET %s",
		strings.Join(names, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "),
	)
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to write sheet row %d: %w", rowNumber, err)
	}
	return nil
}

// trimTrailingEmpty mimics the Sheets API, which omits empty trailing cells.
func trimTrailingEmpty(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}
