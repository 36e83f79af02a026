package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/evdash/internal/core"
)

// viewFlags are the table view controls shared by table and export.
type viewFlags struct {
	search     string
	year       string
	vehicle    string
	sort       string
	desc       bool
	page       int
	pageSize   int
	hide       []string
	pagination bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive text search across all fields")
	cmd.Flags().StringVar(&f.year, "year", "", "Only show this model year")
	cmd.Flags().StringVar(&f.vehicle, "type", "", "Only show this electric vehicle type")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort by column (VIN, Make, Model, Year, Type, Range, County)")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort descending")
	if f.pagination {
		cmd.Flags().IntVar(&f.page, "page", 0, "Zero-based page number")
		cmd.Flags().IntVar(&f.pageSize, "page-size", core.DefaultPageSize, "Rows per page")
		cmd.Flags().StringSliceVar(&f.hide, "hide", nil, "Hide a column; repeatable or comma-separated")
	}
}

// apply builds a TableView over records in the state the flags describe.
func (f *viewFlags) apply(records []core.Record) (*core.TableView, error) {
	tv := core.NewTableView(records, f.pageSize)
	tv.SetSearch(f.search)
	tv.SetFilterYear(f.year)
	tv.SetFilterType(f.vehicle)

	if f.sort != "" {
		c, ok := core.ColumnByName(f.sort)
		if !ok {
			return nil, fmt.Errorf("sort %q: %w", f.sort, core.ErrUnknownColumn)
		}
		if c.Field != tv.State().SortKey {
			tv.SetSort(c.Name)
		}
	}
	if f.desc {
		// selecting the current key again flips it
		tv.SetSort(tv.State().SortKey)
	}

	for _, name := range f.hide {
		if _, ok := core.ColumnByName(name); !ok {
			return nil, fmt.Errorf("hide %q: %w", name, core.ErrUnknownColumn)
		}
		tv.ToggleColumn(name)
	}

	if f.page < 0 {
		return nil, fmt.Errorf("%w %d", core.ErrInvalidPage, f.page)
	}
	tv.SetPage(f.page)
	return tv, nil
}

func newTableCommand(a *app) *cobra.Command {
	f := &viewFlags{pagination: true}

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print one page of the vehicle table",
		Example: `  evctl table --data vehicles.json --search tesla --sort Range --desc
  evctl table --data vehicles.csv --year 2020 --page 2 --hide County,VIN`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tv, err := f.apply(a.records)
			if err != nil {
				return err
			}
			v := tv.View()
			w := cmd.OutOrStdout()

			if a.output == FormatJSON {
				return renderJSON(w, pageRows(v))
			}
			return tableGrid(v).render(w, a.output)
		},
	}

	f.register(cmd)
	return cmd
}

// pageRows returns the visible page keyed by column name.
func pageRows(v core.DerivedView) []map[string]string {
	rows := make([]map[string]string, len(v.Rows))
	for i, r := range v.Rows {
		row := make(map[string]string, len(v.VisibleColumns))
		for _, c := range v.VisibleColumns {
			row[c.Name] = r.Text(c.Field)
		}
		rows[i] = row
	}
	return rows
}

func tableGrid(v core.DerivedView) grid {
	g := grid{
		header:  make(table.Row, len(v.VisibleColumns)),
		caption: fmt.Sprintf("Page %d of %d · %d vehicles", v.Page+1, v.TotalPages, v.TotalFiltered),
	}
	for i, c := range v.VisibleColumns {
		label := c.Name
		if c.Field == v.SortKey {
			if v.SortDir == core.SortDesc {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		g.header[i] = label
		if c.Kind == core.KindNumeric {
			g.numeric = append(g.numeric, i+1)
		}
	}
	for _, r := range v.Rows {
		row := make(table.Row, len(v.VisibleColumns))
		for i, c := range v.VisibleColumns {
			row[i] = r.Text(c.Field)
		}
		g.rows = append(g.rows, row)
	}
	return g
}
