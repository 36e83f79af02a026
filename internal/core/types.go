// Package core provides the in-memory data-view engine for vehicle records.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Canonical record field names.
const (
	FieldVIN         = "VIN"
	FieldMake        = "Make"
	FieldModel       = "Model"
	FieldModelYear   = "ModelYear"
	FieldVehicleType = "ElectricVehicleType"
	FieldRange       = "ElectricRange"
	FieldCounty      = "County"
)

// Record is a single vehicle registration keyed by field name.
// Values are strings, integers, floats, json.Number or nil.
// Records are treated as read-only once loaded.
type Record map[string]any

// Get returns the value for field. A nil value is reported as absent.
func (r Record) Get(field string) (any, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Text returns the string representation of field, or "" when absent.
func (r Record) Text(field string) string {
	v, ok := r.Get(field)
	if !ok {
		return ""
	}
	return formatValue(v)
}

// Int returns field as an integer when it holds an integer kind or a
// string that parses as one.
func (r Record) Int(field string) (int64, bool) {
	v, ok := r.Get(field)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// formatValue converts a record value to the text used for search,
// filtering and export.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toInt converts integer-like values. Floats are accepted only when whole.
func toInt(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint:
		return int64(val), true
	case uint64:
		return int64(val), true
	case float32:
		if float32(int64(val)) == val {
			return int64(val), true
		}
	case float64:
		if float64(int64(val)) == val {
			return int64(val), true
		}
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, true
		}
		if f, err := val.Float64(); err == nil && float64(int64(f)) == f {
			return int64(f), true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// SortDirection is the ordering applied to the sort key.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// ColumnKind determines how a column's values compare and render.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumeric
)

// Column describes one display column of the vehicle table.
type Column struct {
	Name  string     // Display header: "Year"
	Field string     // Record field: "ModelYear"
	Kind  ColumnKind // Comparison/render hint
}

// ViewState holds the user-controlled parameters of the table view.
type ViewState struct {
	SearchQuery string          // Lower-cased; empty means no search
	FilterYear  string          // Exact ModelYear match; empty means unset
	FilterType  string          // Exact ElectricVehicleType match; empty means unset
	SortKey     string          // Record field name
	SortDir     SortDirection   // asc or desc
	Page        int             // Zero-based; never clamped
	PageSize    int             // Fixed, positive
	Columns     map[string]bool // Column name -> visible
}

// clone returns a copy that shares no mutable state with s.
func (s ViewState) clone() ViewState {
	cols := make(map[string]bool, len(s.Columns))
	for k, v := range s.Columns {
		cols[k] = v
	}
	s.Columns = cols
	return s
}

// DerivedView is the result of applying a ViewState to a record collection.
type DerivedView struct {
	Rows           []Record // Visible page, in sorted order
	TotalFiltered  int      // Size of the filtered collection before pagination
	Export         []Record // Full filtered and sorted collection
	Page           int
	PageSize       int
	TotalPages     int
	SortKey        string
	SortDir        SortDirection
	SearchQuery    string
	FilterYear     string
	FilterType     string
	VisibleColumns []Column
}

// HasPrev reports whether a page precedes the current one.
func (v DerivedView) HasPrev() bool {
	return v.Page > 0
}

// HasNext reports whether a page follows the current one.
func (v DerivedView) HasNext() bool {
	return v.Page < v.TotalPages-1
}

// FilterOptions lists the distinct values offered by the year and type filters.
type FilterOptions struct {
	Years []string
	Types []string
}
