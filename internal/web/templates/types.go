// Package templates renders the dashboard HTML as templ components.
package templates

import (
	"github.com/JonMunkholm/evdash/internal/core"
)

// ChartRef points the dashboard at one rendered chart image.
type ChartRef struct {
	Title string
	URL   string
}

// TableData is everything the table partial needs.
type TableData struct {
	View    core.DerivedView
	Options core.FilterOptions
	Columns []core.Column // every column, for the visibility toggles
}

// DashboardData is the full page model.
type DashboardData struct {
	Total  int
	Range  *core.RangeSummary
	Charts []ChartRef
	Table  TableData
}
