package sqldb

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type dialect struct {
	name       string
	driverName string
	textType   string
	maxParams  int
	orderBy    string
	quote      func(ident string) string
	createSQL  func(table, columnDefs string) string
	existsSQL  string
}

func doubleQuote(ident string) string { return `"` + ident + `"` }

func bracketQuote(ident string) string { return "[" + ident + "]" }

var dialects = map[string]*dialect{
	"sqlite": {
		name:       "sqlite",
		driverName: "sqlite",
		textType:   "TEXT",
		maxParams:  32766,
		orderBy:    "rowid",
		quote:      doubleQuote,
		createSQL: func(table, defs string) string {
			return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, defs)
		},
		existsSQL: "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
	},
	"postgres": {
		name:       "postgres",
		driverName: "postgres",
		textType:   "TEXT",
		maxParams:  65535,
		quote:      doubleQuote,
		createSQL: func(table, defs string) string {
			return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, defs)
		},
		existsSQL: "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?",
	},
	"sqlserver": {
		name:       "sqlserver",
		driverName: "sqlserver",
		textType:   "NVARCHAR(MAX)",
		maxParams:  2100,
		quote:      bracketQuote,
		createSQL: func(table, defs string) string {
			return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)", strings.Trim(table, "[]"), table, defs)
		},
		existsSQL: "SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = ?",
	},
}

var aliases = map[string]string{
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
	"postgres":   "postgres",
	"postgresql": "postgres",
	"pg":         "postgres",
	"sqlserver":  "sqlserver",
	"mssql":      "sqlserver",
}

func dialectFor(driver string) (*dialect, error) {
	name, ok := aliases[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}
	return dialects[name], nil
}

func (d *dialect) createTable(table string, columns []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = d.quote(col) + " " + d.textType
	}
	return d.createSQL(d.quote(table), strings.Join(defs, ", "))
}

func (d *dialect) columnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = d.quote(col)
	}
	return strings.Join(quoted, ", ")
}

// insertBatch builds a multi-row INSERT with ? placeholders; callers Rebind it.
func (d *dialect) insertBatch(table string, columns []string, rows int) string {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	values := make([]string, rows)
	for i := range values {
		values[i] = tuple
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", d.quote(table), d.columnList(columns), strings.Join(values, ", "))
}

func (d *dialect) selectAll(table string, columns []string) string {
	q := fmt.Sprintf("SELECT %s FROM %s", d.columnList(columns), d.quote(table))
	if d.orderBy != "" {
		q += " ORDER BY " + d.orderBy
	}
	return q
}

// batchRows caps the rows per statement so the bound parameters stay under the driver limit.
func (d *dialect) batchRows(want, columns int) int {
	limit := d.maxParams / columns
	if limit < 1 {
		limit = 1
	}
	if want > limit {
		return limit
	}
	return want
}
