package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/evdash/internal/core"
)

// Querier is the subset of *pgxpool.Pool used to load records.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LoadPostgres reads every row of table. Column names are mapped to
// canonical fields the same way file headers are, and extra columns are
// kept. table may be schema-qualified ("public.vehicles").
func LoadPostgres(ctx context.Context, db Querier, table string) ([]core.Record, error) {
	query, err := selectAllQuery(table)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query records from %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, fd := range fields {
		names[i] = CanonicalField(fd.Name)
	}

	records := make([]core.Record, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("query records from %s: %w", table, err)
		}
		rec := make(core.Record, len(values))
		for i, v := range values {
			if v == nil {
				continue
			}
			if _, exists := rec[names[i]]; exists {
				continue
			}
			rec[names[i]] = pgValue(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query records from %s: %w", table, err)
	}

	return records, nil
}

// selectAllQuery builds a SELECT with the table identifier quoted.
func selectAllQuery(table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", fmt.Errorf("query records: table name is empty")
	}
	parts := strings.Split(table, ".")
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("query records: invalid table name %q", table)
		}
	}
	return "SELECT * FROM " + pgx.Identifier(parts).Sanitize(), nil
}

// pgValue converts driver values into the kinds core.Record understands.
func pgValue(v any) any {
	switch val := v.(type) {
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return float64(val)
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.DateOnly)
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}
