package templates

import (
	"net/url"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/JonMunkholm/evdash/internal/core"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatAverage renders an average with two decimals and separators.
func FormatAverage(f float64) string {
	return printer.Sprintf("%.2f", f)
}

func sortPath(c core.Column) string {
	return "/api/view/sort/" + url.PathEscape(c.Name)
}

func togglePath(c core.Column) string {
	return "/api/view/columns/" + url.PathEscape(c.Name) + "/toggle"
}

func pagePath(n int) string {
	return "/api/view/page/" + strconv.Itoa(n)
}

// headerLabel marks the active sort column with its direction.
func headerLabel(c core.Column, v core.DerivedView) string {
	if c.Field != v.SortKey {
		return c.Name
	}
	if v.SortDir == core.SortDesc {
		return c.Name + " ▼"
	}
	return c.Name + " ▲"
}

func columnVisible(v core.DerivedView, c core.Column) bool {
	for _, vc := range v.VisibleColumns {
		if vc.Name == c.Name {
			return true
		}
	}
	return false
}

func emptyColspan(v core.DerivedView) string {
	return strconv.Itoa(max(len(v.VisibleColumns), 1))
}

func pageSummary(v core.DerivedView) string {
	return "Page " + FormatCount(v.Page+1) + " of " + FormatCount(v.TotalPages) +
		" · " + FormatCount(v.TotalFiltered) + " vehicles"
}
