// Package chart renders the dashboard aggregates as SVG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/evdash/internal/core"
)

// ErrUnknownChart is returned for chart names that are not registered.
var ErrUnknownChart = errors.New("unknown chart")

// Name identifies one dashboard chart.
type Name string

const (
	Year      Name = "year"
	Type      Name = "type"
	Range     Name = "range"
	MakeModel Name = "makemodel"
	Summary   Name = "summary"
)

// Names lists every chart in dashboard order.
func Names() []Name {
	return []Name{Year, Type, Range, MakeModel, Summary}
}

// Parse validates a chart name.
func Parse(name string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Names() {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownChart, name)
}

// Title returns the heading shown above a chart.
func (n Name) Title() string {
	switch n {
	case Year:
		return "Model Year Trends"
	case Type:
		return "Vehicle Type Distribution"
	case Range:
		return "Electric Range Distribution"
	case MakeModel:
		return "Top Make and Model"
	case Summary:
		return "Electric Range Summary"
	default:
		return string(n)
	}
}

const (
	width  = 640
	height = 360
)

var (
	barColor   = drawing.ColorFromHex("1976d2")
	pieColors  = []drawing.Color{drawing.ColorFromHex("1976d2"), drawing.ColorFromHex("43a047"), drawing.ColorFromHex("fb8c00"), drawing.ColorFromHex("8e24aa")}
	emptyLabel = "none"
)

// Render writes the SVG for chart n built from s.
func Render(w io.Writer, n Name, s core.Summary) error {
	var err error
	switch n {
	case Year:
		err = RenderYears(w, s.ByYear)
	case Type:
		err = RenderTypes(w, s.ByType)
	case Range:
		err = RenderRangeBuckets(w, s.ByRange)
	case MakeModel:
		err = RenderTopModels(w, s.TopModels)
	case Summary:
		err = RenderRangeSummary(w, s.Range)
	default:
		return fmt.Errorf("%w %q", ErrUnknownChart, n)
	}
	if err != nil {
		return fmt.Errorf("render chart %s: %w", n, err)
	}
	return nil
}

// RenderYears draws registrations per model year as bars.
func RenderYears(w io.Writer, counts []core.YearCount) error {
	bars := make([]gochart.Value, len(counts))
	for i, c := range counts {
		bars[i] = gochart.Value{Label: c.Year, Value: float64(c.Count)}
	}
	return renderBars(w, Year.Title(), bars)
}

// RenderTypes draws the vehicle type split as a pie.
func RenderTypes(w io.Writer, counts []core.TypeCount) error {
	values := make([]gochart.Value, 0, len(counts))
	for i, c := range counts {
		if c.Count == 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s (%d)", typeLabel(c.Type), c.Count),
			Value: float64(c.Count),
			Style: gochart.Style{FillColor: pieColors[i%len(pieColors)]},
		})
	}
	if len(values) == 0 {
		return renderBars(w, Type.Title(), nil)
	}

	pie := gochart.PieChart{
		Title:  Type.Title(),
		Width:  width,
		Height: height,
		Values: values,
	}
	return pie.Render(gochart.SVG, w)
}

// RenderRangeBuckets draws the range histogram, one bar per 50-mile bucket.
func RenderRangeBuckets(w io.Writer, buckets []core.BucketCount) error {
	bars := make([]gochart.Value, len(buckets))
	for i, b := range buckets {
		bars[i] = gochart.Value{
			Label: fmt.Sprintf("%d-%d", b.Floor, b.Floor+core.RangeBucketWidth-1),
			Value: float64(b.Count),
		}
	}
	return renderBars(w, Range.Title(), bars)
}

// RenderTopModels draws the most registered make/model pairs.
func RenderTopModels(w io.Writer, top []core.MakeModelCount) error {
	bars := make([]gochart.Value, len(top))
	for i, m := range top {
		bars[i] = gochart.Value{Label: m.MakeModel, Value: float64(m.Count)}
	}
	return renderBars(w, MakeModel.Title(), bars)
}

// RenderRangeSummary draws min, average and max range. A nil summary
// renders the empty placeholder.
func RenderRangeSummary(w io.Writer, s *core.RangeSummary) error {
	if s == nil {
		return renderBars(w, Summary.Title(), nil)
	}
	bars := []gochart.Value{
		{Label: "Min", Value: float64(s.Min)},
		{Label: "Average", Value: s.Average},
		{Label: "Max", Value: float64(s.Max)},
	}
	return renderBars(w, Summary.Title(), bars)
}

// renderBars draws a bar chart with the y axis pinned at zero. An empty
// series renders a single zero-height "none" bar.
func renderBars(w io.Writer, title string, bars []gochart.Value) error {
	if len(bars) == 0 {
		bars = []gochart.Value{{Label: emptyLabel, Value: 0}}
	}

	top := 0.0
	for i := range bars {
		top = math.Max(top, bars[i].Value)
		if bars[i].Style.FillColor.IsZero() {
			bars[i].Style = gochart.Style{FillColor: barColor, StrokeColor: barColor}
		}
	}

	bc := gochart.BarChart{
		Title:    title,
		Width:    width,
		Height:   height,
		BarWidth: 40,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: 0, Max: axisMax(top)},
			ValueFormatter: formatTick,
		},
		Bars: bars,
	}
	return bc.Render(gochart.SVG, w)
}

// axisMax leaves headroom above the tallest bar and never returns zero.
func axisMax(top float64) float64 {
	if top <= 0 {
		return 1
	}
	return math.Ceil(top + top/10)
}

func formatTick(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return fmt.Sprint(v)
}

// typeLabel shortens "Battery Electric Vehicle (BEV)" to "BEV".
func typeLabel(t string) string {
	open := strings.LastIndex(t, "(")
	if open >= 0 && strings.HasSuffix(t, ")") && open+1 < len(t)-1 {
		return t[open+1 : len(t)-1]
	}
	if t == "" {
		return "Unknown"
	}
	return t
}
