package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/evdash/internal/core"
)

// ContextCheckInterval is how often (in rows) CSV decoding checks for
// cancellation.
var ContextCheckInterval = 100

// DecodeCSV reads a CSV file whose first non-empty row is the header.
// A UTF-8 byte order mark is stripped and invalid UTF-8 is replaced with
// U+FFFD. Empty cells are left out of the record so they read as absent.
func DecodeCSV(ctx context.Context, r io.Reader) ([]core.Record, error) {
	decoded := transform.NewReader(r, unicode.UTF8BOM.NewDecoder())

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var header []string
	records := make([]core.Record, 0)

	for line := 0; ; line++ {
		if line%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		if isEmptyRow(row) {
			continue
		}

		if header == nil {
			header = make([]string, len(row))
			for i, h := range row {
				header[i] = CanonicalField(cleanCell(h))
			}
			continue
		}

		records = append(records, buildRecord(header, row))
	}

	return records, nil
}

func buildRecord(header, row []string) core.Record {
	rec := make(core.Record, len(header))
	for i, field := range header {
		if i >= len(row) || field == "" {
			continue
		}
		cell := cleanCell(row[i])
		if cell == "" {
			continue
		}
		if _, exists := rec[field]; exists {
			continue
		}
		rec[field] = cellValue(field, cell)
	}
	return rec
}

// cellValue parses ElectricRange cells as integers. Every other cell
// stays text so that years and VINs keep their exact spelling.
func cellValue(field, cell string) any {
	if field == core.FieldRange {
		if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(cell, 64); err == nil {
			return f
		}
	}
	return cell
}

// cleanCell trims whitespace and strips the ="..." wrapper spreadsheet
// exports put around values that look numeric.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
