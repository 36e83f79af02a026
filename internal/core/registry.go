package core

import (
	"fmt"
	"strings"
	"sync"
)

var (
	registry   []Column
	registryMu sync.RWMutex
)

func init() {
	Register(Column{Name: "VIN", Field: FieldVIN, Kind: KindText})
	Register(Column{Name: "Make", Field: FieldMake, Kind: KindText})
	Register(Column{Name: "Model", Field: FieldModel, Kind: KindText})
	Register(Column{Name: "Year", Field: FieldModelYear, Kind: KindText})
	Register(Column{Name: "Type", Field: FieldVehicleType, Kind: KindText})
	Register(Column{Name: "Range", Field: FieldRange, Kind: KindNumeric})
	Register(Column{Name: "County", Field: FieldCounty, Kind: KindText})
}

// Register appends a column to the table layout.
// Panics if a column with the same name is already registered.
func Register(col Column) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, c := range registry {
		if strings.EqualFold(c.Name, col.Name) {
			panic(fmt.Sprintf("column already registered: %s", col.Name))
		}
	}
	if col.Field == "" {
		col.Field = col.Name
	}

	registry = append(registry, col)
}

// Columns returns all registered columns in display order.
func Columns() []Column {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Column, len(registry))
	copy(result, registry)
	return result
}

// ColumnNames returns the display names of all columns in order.
func ColumnNames() []string {
	cols := Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// ColumnByName looks up a column by display name or record field,
// case-insensitively.
func ColumnByName(name string) (Column, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	name = strings.TrimSpace(name)
	for _, c := range registry {
		if strings.EqualFold(c.Name, name) || strings.EqualFold(c.Field, name) {
			return c, true
		}
	}
	return Column{}, false
}

// ResolveField maps a column name to its record field.
// Names that match no column are returned unchanged with ok=false.
func ResolveField(name string) (string, bool) {
	if c, ok := ColumnByName(name); ok {
		return c.Field, true
	}
	return name, false
}

// columnForField returns the column bound to a record field.
func columnForField(field string) (Column, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, c := range registry {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnCount returns the number of registered columns.
func ColumnCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
