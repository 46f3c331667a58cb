package repl

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
)

// Result is what a command hands back for display.
type Result struct {
	Message string
	Columns []schema.Column
	Rows    []data.Record
	Table   bool // print the column header even when Rows is empty
}

func PrintResult(w io.Writer, res *Result) {
	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}
	if !res.Table && len(res.Rows) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Header with column type, key marked
	for i, col := range res.Columns {
		label := fmt.Sprintf("%s (%s)", col.Name, col.Type)
		if col.PrimaryKey {
			label += " *"
		}
		fmt.Fprint(tw, label)
		if i < len(res.Columns)-1 {
			fmt.Fprint(tw, "\t")
		}
	}
	fmt.Fprintln(tw)

	// Separator
	for i := range res.Columns {
		fmt.Fprint(tw, "---")
		if i < len(res.Columns)-1 {
			fmt.Fprint(tw, "\t")
		}
	}
	fmt.Fprintln(tw)

	// Rows
	for _, row := range res.Rows {
		for i, col := range res.Columns {
			val, ok := row[col.Name]
			if !ok {
				fmt.Fprint(tw, "NULL")
			} else {
				fmt.Fprint(tw, val.String())
			}
			if i < len(res.Columns)-1 {
				fmt.Fprint(tw, "\t")
			}
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}
