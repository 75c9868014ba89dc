// Package schema treats SQLite table layouts as data. Lesson columns are
// added at runtime, so every store reads its column list at open time and
// addresses cells by column name instead of compile-time fields.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// TypeText is the column type used for every dynamic lesson column.
const TypeText = "TEXT"

// Column describes one live table column.
type Column struct {
	Name string `db:"name"`
	Type string `db:"type"`
}

// Columns introspects the live column set of a table, in declaration order.
func Columns(ctx context.Context, db *sqlx.DB, table string) ([]Column, error) {
	var cols []Column
	if err := db.SelectContext(ctx, &cols, `SELECT name, type FROM pragma_table_info(?)`, table); err != nil {
		return nil, fmt.Errorf("introspect %s: %w", table, err)
	}
	return cols, nil
}

// Has reports whether the column list contains a column with the given name.
func Has(cols []Column, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Names flattens a column list to its names.
func Names(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// AddColumn appends a nullable column to the table. SQLite only supports
// additive column changes, which is exactly the evolution model the stores
// rely on; existing columns are never renamed, dropped or reordered.
func AddColumn(ctx context.Context, db *sqlx.DB, table string, col Column) error {
	if err := ValidateName(col.Name); err != nil {
		return err
	}
	typ := col.Type
	if typ == "" {
		typ = TypeText
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", QuoteIdent(table), QuoteIdent(col.Name), typ)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("add column %q to %s: %w", col.Name, table, err)
	}
	return nil
}

// ValidateName rejects identifiers that cannot be represented safely.
// Lesson names are free text, so anything printable is allowed; only empty
// names and embedded NUL/newline characters are refused.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty column name")
	}
	if strings.ContainsAny(name, "\x00\n\r") {
		return fmt.Errorf("column name %q contains control characters", name)
	}
	return nil
}

// QuoteIdent wraps an identifier in double quotes, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
