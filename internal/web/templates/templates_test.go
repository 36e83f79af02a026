package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/evdash/internal/core"
)

func records() []core.Record {
	return []core.Record{
		{core.FieldVIN: "5YJ3E1EA1K", core.FieldMake: "TESLA", core.FieldModel: "MODEL 3", core.FieldModelYear: "2019",
			core.FieldVehicleType: "Battery Electric Vehicle (BEV)", core.FieldRange: int64(220), core.FieldCounty: "King"},
		{core.FieldVIN: "1N4AZ0CP5D", core.FieldMake: "NISSAN", core.FieldModel: "LEAF", core.FieldModelYear: "2013",
			core.FieldVehicleType: "Battery Electric Vehicle (BEV)", core.FieldRange: int64(75), core.FieldCounty: "Kitsap"},
		{core.FieldVIN: "1G1RC6E44E", core.FieldMake: "CHEVROLET", core.FieldModel: "<VOLT>", core.FieldModelYear: "2014",
			core.FieldVehicleType: "Plug-in Hybrid Electric Vehicle (PHEV)", core.FieldRange: int64(38), core.FieldCounty: "Snohomish"},
	}
}

func tableData(state core.ViewState) TableData {
	recs := records()
	return TableData{
		View:    core.ComputeView(recs, state),
		Options: core.BuildFilterOptions(recs),
		Columns: core.Columns(),
	}
}

func renderTable(t *testing.T, data TableData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, TablePartial(data).Render(context.Background(), &buf))
	return buf.String()
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
}

func TestFormatAverage(t *testing.T) {
	assert.Equal(t, "114.00", FormatAverage(114))
	assert.Equal(t, "10.33", FormatAverage(10.33))
}

func TestTablePartial_RowsAndHeaders(t *testing.T) {
	out := renderTable(t, tableData(core.NewViewState(10)))

	assert.True(t, strings.HasPrefix(out, `<section id="vehicle-table"`))
	assert.Contains(t, out, "VIN ▲")
	assert.Contains(t, out, "1N4AZ0CP5D")
	assert.Contains(t, out, `<td class="num">220</td>`)
	assert.Contains(t, out, "Page 1 of 1 · 3 vehicles")
	assert.NotContains(t, out, ">Next<")
	assert.NotContains(t, out, ">Previous<")
}

func TestTablePartial_EscapesValues(t *testing.T) {
	out := renderTable(t, tableData(core.NewViewState(10)))

	assert.Contains(t, out, "&lt;VOLT&gt;")
	assert.NotContains(t, out, "<VOLT>")
}

func TestTablePartial_SortIndicatorDesc(t *testing.T) {
	state := core.NewViewState(10)
	state.SortKey = core.FieldRange
	state.SortDir = core.SortDesc

	out := renderTable(t, tableData(state))

	assert.Contains(t, out, "Range ▼")
	assert.NotContains(t, out, "VIN ▲")
}

func TestTablePartial_Pager(t *testing.T) {
	state := core.NewViewState(1)
	state.Page = 1

	out := renderTable(t, tableData(state))

	assert.Contains(t, out, "Page 2 of 3 · 3 vehicles")
	assert.Contains(t, out, `hx-post="/api/view/page/0"`)
	assert.Contains(t, out, `hx-post="/api/view/page/2"`)
}

func TestTablePartial_PastLastPage(t *testing.T) {
	state := core.NewViewState(10)
	state.Page = 1 << 62

	out := renderTable(t, tableData(state))

	assert.Contains(t, out, "No matching vehicles")
	assert.Contains(t, out, `hx-post="/api/view/page/4611686018427387903"`)
	assert.NotContains(t, out, ">Next<")
}

func TestTablePartial_EscapesAttributes(t *testing.T) {
	state := core.NewViewState(10)
	state.SearchQuery = `"><script>`

	out := renderTable(t, tableData(state))

	assert.Contains(t, out, `value="&#34;&gt;&lt;script&gt;"`)
	assert.NotContains(t, out, `"><script>`)
}

func TestTablePartial_Empty(t *testing.T) {
	state := core.NewViewState(10)
	state.SearchQuery = "no such vehicle"

	out := renderTable(t, tableData(state))

	assert.Contains(t, out, "No matching vehicles")
	assert.Contains(t, out, `colspan="7"`)
}

func TestTablePartial_HiddenColumnUnchecked(t *testing.T) {
	state := core.NewViewState(10)
	state.Columns["County"] = false

	out := renderTable(t, tableData(state))

	assert.NotContains(t, out, "County ▲")
	assert.NotContains(t, out, "Kitsap")
	assert.Contains(t, out, `hx-post="/api/view/columns/County/toggle" hx-target="#vehicle-table" hx-swap="outerHTML">`)
	assert.Contains(t, out, `hx-post="/api/view/columns/VIN/toggle" hx-target="#vehicle-table" hx-swap="outerHTML" checked>`)
}

func TestTablePartial_SelectedFilter(t *testing.T) {
	state := core.NewViewState(10)
	state.FilterYear = "2014"

	out := renderTable(t, tableData(state))

	assert.Contains(t, out, `<option value="2014" selected>2014</option>`)
	assert.Contains(t, out, `<option value="2019">2019</option>`)
}

func TestDashboard(t *testing.T) {
	recs := records()
	summary := core.Summarize(recs, core.DefaultTopN)

	var buf bytes.Buffer
	err := Dashboard(DashboardData{
		Total:  1500,
		Range:  summary.Range,
		Charts: []ChartRef{{Title: "Registrations by Year", URL: "/charts/year.svg"}},
		Table:  tableData(core.NewViewState(10)),
	}).Render(context.Background(), &buf)
	require.NoError(t, err)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, "1,500 registered vehicles")
	assert.Contains(t, out, `<div id="alerts"></div>`)
	assert.Contains(t, out, `src="/charts/year.svg"`)
	assert.Contains(t, out, "<strong>220 mi</strong>")
	assert.Contains(t, out, `id="vehicle-table"`)
	assert.True(t, strings.HasSuffix(out, "</html>"))
}

func TestDashboard_NoRange(t *testing.T) {
	var buf bytes.Buffer
	err := Dashboard(DashboardData{Table: tableData(core.NewViewState(10))}).Render(context.Background(), &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "No range data")
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert("Bad <input>", "", "VIEW002").Render(context.Background(), &buf))
	out := buf.String()

	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "Bad &lt;input&gt;")
	assert.Contains(t, out, "Code: VIEW002")
	assert.NotContains(t, out, "alert-action")
}
