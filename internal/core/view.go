package core

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// DefaultPageSize is the number of rows per table page.
const DefaultPageSize = 10

// DefaultSortKey is the field the table is ordered by initially.
const DefaultSortKey = FieldVIN

// NewViewState returns the initial state: no search or filters, VIN
// ascending, first page, every column visible.
func NewViewState(pageSize int) ViewState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	cols := make(map[string]bool, ColumnCount())
	for _, name := range ColumnNames() {
		cols[name] = true
	}
	return ViewState{
		SortKey:  DefaultSortKey,
		SortDir:  SortAsc,
		PageSize: pageSize,
		Columns:  cols,
	}
}

// TableView owns a ViewState over a static record collection.
// All methods are safe for concurrent use; each mutation is applied
// atomically with respect to reads.
type TableView struct {
	mu      sync.Mutex
	records []Record
	state   ViewState
}

// NewTableView creates a view over records with a fixed page size.
func NewTableView(records []Record, pageSize int) *TableView {
	return &TableView{
		records: records,
		state:   NewViewState(pageSize),
	}
}

// SetSearch stores the lower-cased search text.
func (tv *TableView) SetSearch(text string) {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	tv.state.SearchQuery = strings.ToLower(text)
}

// SetSort sorts by the given column or field. Selecting the current key
// flips the direction; a new key starts ascending.
func (tv *TableView) SetSort(name string) {
	field, _ := ResolveField(name)

	tv.mu.Lock()
	defer tv.mu.Unlock()
	if field == tv.state.SortKey {
		tv.state.SortDir = tv.state.SortDir.Flip()
		return
	}
	tv.state.SortKey = field
	tv.state.SortDir = SortAsc
}

// SetPage moves to page n. The page is not clamped; a page past the end
// yields no rows.
func (tv *TableView) SetPage(n int) {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	tv.state.Page = n
}

// SetFilterYear sets or, with "", clears the model year filter.
// The current page is kept.
func (tv *TableView) SetFilterYear(year string) {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	tv.state.FilterYear = year
}

// SetFilterType sets or, with "", clears the vehicle type filter.
// The current page is kept.
func (tv *TableView) SetFilterType(vehicleType string) {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	tv.state.FilterType = vehicleType
}

// ResetFilters clears search, year and type. Page and sort are kept.
func (tv *TableView) ResetFilters() {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	tv.state.SearchQuery = ""
	tv.state.FilterYear = ""
	tv.state.FilterType = ""
}

// ToggleColumn flips the visibility of a column.
func (tv *TableView) ToggleColumn(name string) {
	if c, ok := ColumnByName(name); ok {
		name = c.Name
	}

	tv.mu.Lock()
	defer tv.mu.Unlock()
	tv.state.Columns[name] = !tv.state.Columns[name]
}

// State returns a copy of the current view state.
func (tv *TableView) State() ViewState {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	return tv.state.clone()
}

// View derives the current page from the records and state.
func (tv *TableView) View() DerivedView {
	return ComputeView(tv.records, tv.State())
}

// ExportCSV serializes the filtered and sorted records, ignoring
// pagination and column visibility.
func (tv *TableView) ExportCSV() []byte {
	return ExportCSV(tv.View().Export)
}

// Records returns the underlying collection.
func (tv *TableView) Records() []Record {
	return tv.records
}

// FilterOptions returns the distinct years and types present in the
// collection. Years are ordered naturally, types by first appearance.
func (tv *TableView) FilterOptions() FilterOptions {
	return BuildFilterOptions(tv.records)
}

// BuildFilterOptions collects distinct ModelYear and ElectricVehicleType values.
func BuildFilterOptions(records []Record) FilterOptions {
	years := CountByYear(records)
	types := CountByType(records)

	opts := FilterOptions{
		Years: make([]string, 0, len(years)),
		Types: make([]string, 0, len(types)),
	}
	for _, y := range years {
		if y.Year != "" {
			opts.Years = append(opts.Years, y.Year)
		}
	}
	for _, t := range types {
		if t.Type != "" {
			opts.Types = append(opts.Types, t.Type)
		}
	}
	return opts
}

// ComputeView applies state to records: filter, relevance-first stable
// sort, then paginate. It does not modify records.
func ComputeView(records []Record, state ViewState) DerivedView {
	filtered := filterRecords(records, state)
	sortRecords(filtered, state)

	pageSize := state.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages := 1
	if n := len(filtered); n > 0 {
		totalPages = (n-1)/pageSize + 1
	}

	return DerivedView{
		Rows:           paginate(filtered, state.Page, pageSize),
		TotalFiltered:  len(filtered),
		Export:         filtered,
		Page:           state.Page,
		PageSize:       pageSize,
		TotalPages:     totalPages,
		SortKey:        state.SortKey,
		SortDir:        state.SortDir,
		SearchQuery:    state.SearchQuery,
		FilterYear:     state.FilterYear,
		FilterType:     state.FilterType,
		VisibleColumns: visibleColumns(state.Columns),
	}
}

// filterRecords keeps records passing the year, type and search filters.
// The result is a new slice in input order.
func filterRecords(records []Record, state ViewState) []Record {
	result := make([]Record, 0, len(records))
	for _, r := range records {
		if state.FilterYear != "" && r.Text(FieldModelYear) != state.FilterYear {
			continue
		}
		if state.FilterType != "" && r.Text(FieldVehicleType) != state.FilterType {
			continue
		}
		if !matchesSearch(r, state.SearchQuery) {
			continue
		}
		result = append(result, r)
	}
	return result
}

// matchesSearch reports whether any present field contains query as a
// case-insensitive substring. An empty query matches everything.
func matchesSearch(r Record, query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	for _, v := range r {
		if v == nil {
			continue
		}
		if strings.Contains(strings.ToLower(formatValue(v)), query) {
			return true
		}
	}
	return false
}

// sortRecords orders records in place: search matches first, then by
// SortKey in SortDir. Ties keep their relative order.
func sortRecords(records []Record, state ViewState) {
	matches := make([]bool, len(records))
	idx := make([]int, len(records))
	for i, r := range records {
		idx[i] = i
		matches[i] = matchesSearch(r, state.SearchQuery)
	}

	sort.SliceStable(idx, func(i, j int) bool {
		a, b := idx[i], idx[j]
		if matches[a] != matches[b] {
			return matches[a]
		}
		return compareField(records[a], records[b], state.SortKey, state.SortDir) < 0
	})

	sorted := make([]Record, len(records))
	for i, k := range idx {
		sorted[i] = records[k]
	}
	copy(records, sorted)
}

// compareField compares the sort field of two records. Absent values
// come before present ones regardless of direction.
func compareField(a, b Record, field string, dir SortDirection) int {
	av, aok := a.Get(field)
	bv, bok := b.Get(field)

	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}

	col, _ := columnForField(field)
	c := compareValues(av, bv, col.Kind == KindNumeric)
	if dir == SortDesc {
		return -c
	}
	return c
}

// compareValues orders two present values. Numeric columns and pairs of
// numeric values compare by magnitude; everything else compares by string
// representation.
func compareValues(a, b any, numeric bool) int {
	if numeric || (isNumber(a) && isNumber(b)) {
		if af, aok := toFloat(a); aok {
			if bf, bok := toFloat(b); bok {
				switch {
				case af < bf:
					return -1
				case af > bf:
					return 1
				default:
					return 0
				}
			}
		}
	}
	return strings.Compare(formatValue(a), formatValue(b))
}

// isNumber reports whether v holds a numeric kind. Strings never do.
func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, uint, uint64, float32, float64, json.Number:
		return true
	}
	return false
}

// toFloat converts numeric kinds and numeric strings.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

// compareText orders two strings numerically when both parse as
// integers, lexicographically otherwise.
func compareText(a, b string) int {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// paginate returns records[page*size : page*size+size], clamped to the
// slice. Pages before the start or past the end are empty. The bound is
// checked before multiplying so huge pages cannot overflow.
func paginate(records []Record, page, size int) []Record {
	if page < 0 || size <= 0 || len(records) == 0 || page > (len(records)-1)/size {
		return []Record{}
	}
	start := page * size
	end := len(records)
	if size < end-start {
		end = start + size
	}
	return records[start:end]
}

// visibleColumns returns the columns flagged visible, in display order.
func visibleColumns(flags map[string]bool) []Column {
	var result []Column
	for _, c := range Columns() {
		if flags == nil || flags[c.Name] {
			result = append(result, c)
		}
	}
	return result
}
