// Package core provides the in-memory data-view engine for vehicle records.
//
// This package is the heart of the dashboard, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Architecture
//
// Two independent views are derived from the same read-only []Record:
//
//   - Aggregator: [CountByYear], [CountByType], [CountByRangeBucket],
//     [TopMakeModel] and [SummarizeRange] reduce the collection into the
//     summaries behind the charts. [Summarize] bundles all five.
//   - TableView: [TableView] owns a [ViewState] (search, filters, sort,
//     page, column visibility) and derives a [DerivedView] on every read
//     via [ComputeView].
//
// Nothing is cached. Every read recomputes from the records and the
// current state, so results are a pure function of (records, state).
//
// # Columns
//
// The table layout is a registry of [Column] values in display order. A
// column maps a header ("Year") to a record field ("ModelYear"); sort keys
// may be given as either and are resolved with [ResolveField].
//
// # Derivation
//
//  1. Filter by exact year, exact type and case-insensitive search.
//  2. Stable sort: search matches first, then the sort field in the
//     chosen direction. Absent values sort before present ones.
//  3. Paginate. Pages are not clamped; a page past the end is empty.
//
// # Export
//
// [ExportCSV] writes the full filtered and sorted set in a fixed
// seven-column layout with every cell quoted. Export ignores pagination and
// column visibility.
package core
