// Package executor runs compiled aggregation queries against DuckDB.
//
// DuckDB is a reference implementation of aggql.Executor used by the CLI,
// the transports and tests. Any database/sql driver can be used the same way.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hugr-lab/aggql/catalog"
	"github.com/hugr-lab/aggql/result"
)

// DuckDB executes queries on a DuckDB database.
// It is safe for concurrent use.
type DuckDB struct {
	db     *sql.DB
	logger *slog.Logger
	owned  bool
}

// Open opens a DuckDB database. An empty path opens an in-memory database.
func Open(path string, logger *slog.Logger) (*DuckDB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	d := New(db, logger)
	d.owned = true
	return d, nil
}

// New wraps an existing database handle. Close does not close db.
func New(db *sql.DB, logger *slog.Logger) *DuckDB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DuckDB{db: db, logger: logger}
}

// DB returns the underlying database handle.
func (d *DuckDB) DB() *sql.DB { return d.db }

// Close closes the database if it was opened by Open.
func (d *DuckDB) Close() error {
	if d.owned {
		return d.db.Close()
	}
	return nil
}

// Exec runs statements that return no rows, such as CREATE TABLE or INSERT.
func (d *DuckDB) Exec(ctx context.Context, query string) error {
	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// Execute runs a query and returns its rows with every cell formatted as text.
func (d *DuckDB) Execute(ctx context.Context, query string) (*result.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	out := &result.Rows{
		Columns: make([]string, len(types)),
		Types:   make([]string, len(types)),
	}
	for i, ct := range types {
		out.Columns[i] = ct.Name()
		out.Types[i] = ct.DatabaseTypeName()
	}

	cells := make([]any, len(types))
	ptrs := make([]any, len(types))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make([]*string, len(cells))
		for i, v := range cells {
			row[i] = formatCell(v, out.Types[i])
		}
		out.Values = append(out.Values, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	d.logger.Debug("Query executed",
		"rows", len(out.Values),
		"columns", len(out.Columns),
		"duration", time.Since(start),
	)
	return out, nil
}

// Describe returns the column types of a table or subquery without reading rows.
func (d *DuckDB) Describe(ctx context.Context, table string) (*catalog.ColumnTypes, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT * FROM "+table+" LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	return catalog.FromSQLColumnTypes(types)
}

func formatCell(v any, dbType string) *string {
	if v == nil {
		return nil
	}
	var s string
	switch v := v.(type) {
	case string:
		s = v
	case []byte:
		if strings.EqualFold(dbType, "UUID") && len(v) == 16 {
			if id, err := uuid.FromBytes(v); err == nil {
				s = id.String()
				break
			}
		}
		s = string(v)
	case bool:
		s = strconv.FormatBool(v)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		s = formatTime(v, dbType)
	case duckdb.Decimal:
		s = decimal.NewFromBigInt(v.Value, -int32(v.Scale)).StringFixed(int32(v.Scale))
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	return &s
}

func formatTime(t time.Time, dbType string) string {
	switch catalog.TypeID(dbType).Normalize() {
	case catalog.TypeIDDate:
		return t.Format(time.DateOnly)
	case catalog.TypeIDTime:
		return t.Format("15:04:05.999999")
	case catalog.TypeIDTimestampTZ:
		return t.Format("2006-01-02 15:04:05.999999Z07:00")
	}
	return t.Format("2006-01-02 15:04:05.999999")
}
