package cli

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/evdash/internal/core"
)

func newSummaryCommand(a *app) *cobra.Command {
	var topN int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard aggregates",
		Long: `Print registrations by model year, vehicle type and electric range bucket,
the most common make and model pairs, and the electric range summary.`,
		Example: `  evctl summary --data vehicles.json
  evctl summary --data vehicles.csv --top 10 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := core.Summarize(a.records, topN)
			w := cmd.OutOrStdout()

			if a.output == FormatJSON {
				return renderJSON(w, s)
			}
			for _, g := range summaryGrids(s) {
				if err := g.render(w, a.output); err != nil {
					return fmt.Errorf("render %s: %w", g.title, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topN, "top", core.DefaultTopN, "Number of make and model pairs to list")
	return cmd
}

// summaryGrids lays out each aggregate as its own block.
func summaryGrids(s core.Summary) []grid {
	years := grid{title: "Registrations by Model Year", header: table.Row{"Year", "Count"}, numeric: []int{2}}
	for _, c := range s.ByYear {
		years.rows = append(years.rows, table.Row{c.Year, c.Count})
	}

	types := grid{title: "Vehicle Types", header: table.Row{"Type", "Count"}, numeric: []int{2}}
	for _, c := range s.ByType {
		types.rows = append(types.rows, table.Row{c.Type, c.Count})
	}

	ranges := grid{title: "Electric Range Buckets", header: table.Row{"Range", "Count"}, numeric: []int{2}}
	for _, b := range s.ByRange {
		label := strconv.FormatInt(b.Floor, 10) + "-" + strconv.FormatInt(b.Floor+core.RangeBucketWidth-1, 10)
		ranges.rows = append(ranges.rows, table.Row{label, b.Count})
	}

	top := grid{title: "Top Make and Model", header: table.Row{"Make and Model", "Count"}, numeric: []int{2}}
	for _, m := range s.TopModels {
		top.rows = append(top.rows, table.Row{m.MakeModel, m.Count})
	}

	rng := grid{title: "Electric Range", header: table.Row{"Min", "Average", "Max"}, numeric: []int{1, 2, 3}}
	if s.Range != nil {
		rng.rows = append(rng.rows, table.Row{s.Range.Min, strconv.FormatFloat(s.Range.Average, 'f', 2, 64), s.Range.Max})
	}
	rng.caption = fmt.Sprintf("%d vehicles", s.Total)

	return []grid{years, types, ranges, top, rng}
}
