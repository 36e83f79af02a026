package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// grid is a titled block of rows rendered in the selected output format.
type grid struct {
	title   string
	header  table.Row
	rows    []table.Row
	caption string
	numeric []int // 1-based column numbers aligned right
}

// render writes g as a go-pretty table, CSV or Markdown.
func (g grid) render(w io.Writer, format string) error {
	t := table.NewWriter()
	t.AppendHeader(g.header)
	t.AppendRows(g.rows)

	var out string
	switch format {
	case FormatCSV:
		out = t.RenderCSV()
	case FormatMarkdown:
		if g.title != "" {
			if _, err := fmt.Fprintf(w, "### %s\n\n", g.title); err != nil {
				return err
			}
		}
		out = t.RenderMarkdown()
	default:
		t.SetStyle(table.StyleLight)
		t.SetTitle(g.title)
		t.SetCaption(g.caption)
		configs := make([]table.ColumnConfig, 0, len(g.numeric))
		for _, n := range g.numeric {
			configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
		}
		t.SetColumnConfigs(configs)
		out = t.Render()
	}

	_, err := fmt.Fprintln(w, out)
	return err
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
