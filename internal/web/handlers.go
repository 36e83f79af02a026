package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/evdash/internal/chart"
	"github.com/JonMunkholm/evdash/internal/core"
	"github.com/JonMunkholm/evdash/internal/logging"
	"github.com/JonMunkholm/evdash/internal/web/templates"
)

// ViewResponse is the JSON form of a derived table page.
type ViewResponse struct {
	Rows          []core.Record      `json:"rows"`
	TotalFiltered int                `json:"total_filtered"`
	Page          int                `json:"page"`
	PageSize      int                `json:"page_size"`
	TotalPages    int                `json:"total_pages"`
	SortKey       string             `json:"sort_key"`
	SortDir       core.SortDirection `json:"sort_dir"`
	SearchQuery   string             `json:"search"`
	FilterYear    string             `json:"filter_year"`
	FilterType    string             `json:"filter_type"`
	Columns       []string           `json:"columns"`
}

func newViewResponse(v core.DerivedView) ViewResponse {
	cols := make([]string, len(v.VisibleColumns))
	for i, c := range v.VisibleColumns {
		cols[i] = c.Name
	}
	return ViewResponse{
		Rows:          v.Rows,
		TotalFiltered: v.TotalFiltered,
		Page:          v.Page,
		PageSize:      v.PageSize,
		TotalPages:    v.TotalPages,
		SortKey:       v.SortKey,
		SortDir:       v.SortDir,
		SearchQuery:   v.SearchQuery,
		FilterYear:    v.FilterYear,
		FilterType:    v.FilterType,
		Columns:       cols,
	}
}

// handleDashboard renders the full dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.tableView(w, r, true)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.renderDashboard(w, r, view)
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, view *core.TableView) {
	summary := s.charts.Summary()

	refs := make([]templates.ChartRef, 0, len(chart.Names()))
	for _, n := range chart.Names() {
		refs = append(refs, templates.ChartRef{Title: n.Title(), URL: "/charts/" + string(n) + ".svg"})
	}

	data := templates.DashboardData{
		Total:  summary.Total,
		Range:  summary.Range,
		Charts: refs,
		Table:  s.tableData(view),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// handleTable renders the table partial for HTMX and the full page otherwise.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	view, err := s.tableView(w, r, true)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if !isHTMX(r) {
		s.renderDashboard(w, r, view)
		return
	}
	s.renderTable(w, r, view)
}

func (s *Server) tableData(view *core.TableView) templates.TableData {
	return templates.TableData{
		View:    view.View(),
		Options: s.filters,
		Columns: core.Columns(),
	}
}

func (s *Server) renderTable(w http.ResponseWriter, r *http.Request, view *core.TableView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.TablePartial(s.tableData(view)).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render table", "error", err)
	}
}

// handleSummary returns all five aggregates as JSON.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.charts.Summary())
}

// handleView returns the session's current page as JSON. Without a
// session it reports the initial state.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.tableView(w, r, false)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, newViewResponse(view.View()))
}

// mutate applies fn to the session view and replies with the new state:
// the table partial for HTMX, JSON otherwise. fn returns a status and
// error to reject the request without touching the view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*core.TableView) (int, error)) {
	view, err := s.tableView(w, r, true)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if status, err := fn(view); err != nil {
		s.respondError(w, r, err, status)
		return
	}

	if isHTMX(r) {
		s.renderTable(w, r, view)
		return
	}
	writeJSON(w, r, newViewResponse(view.View()))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(v *core.TableView) (int, error) {
		v.SetSearch(r.FormValue("q"))
		return 0, nil
	})
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	column := pathParam(r, "column")
	s.mutate(w, r, func(v *core.TableView) (int, error) {
		if _, ok := core.ColumnByName(column); !ok {
			return http.StatusNotFound, fmt.Errorf("sort %q: %w", column, core.ErrUnknownColumn)
		}
		v.SetSort(column)
		return 0, nil
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	raw := pathParam(r, "n")
	s.mutate(w, r, func(v *core.TableView) (int, error) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return http.StatusBadRequest, fmt.Errorf("%w %q", core.ErrInvalidPage, raw)
		}
		v.SetPage(n)
		return 0, nil
	})
}

func (s *Server) handleFilterYear(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(v *core.TableView) (int, error) {
		v.SetFilterYear(r.FormValue("value"))
		return 0, nil
	})
}

func (s *Server) handleFilterType(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(v *core.TableView) (int, error) {
		v.SetFilterType(r.FormValue("value"))
		return 0, nil
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(v *core.TableView) (int, error) {
		v.ResetFilters()
		return 0, nil
	})
}

func (s *Server) handleToggleColumn(w http.ResponseWriter, r *http.Request) {
	column := pathParam(r, "column")
	s.mutate(w, r, func(v *core.TableView) (int, error) {
		if _, ok := core.ColumnByName(column); !ok {
			return http.StatusNotFound, fmt.Errorf("toggle %q: %w", column, core.ErrUnknownColumn)
		}
		v.ToggleColumn(column)
		return 0, nil
	})
}

// handleExport downloads the session's filtered and sorted records as CSV.
// Without a session it exports every record in the default order.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view, err := s.tableView(w, r, false)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	body := view.ExportCSV()
	w.Header().Set("Content-Type", core.ExportContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, core.ExportFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if _, err := w.Write(body); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "error", err)
	}
}

// handleChart serves a cached SVG chart.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	n, err := chart.Parse(pathParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	svg, err := s.charts.SVG(n)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(svg)
}

// pathParam returns the unescaped chi URL parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
