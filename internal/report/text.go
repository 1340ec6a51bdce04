package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// RenderText writes the summary and a per-student table for terminal output.
// Incorrect answers are marked with a trailing "x".
func RenderText(w io.Writer, v View) error {
	stats := make([]string, 0, len(v.Cards))
	for _, c := range v.Cards {
		stats = append(stats, c.Label+": "+c.Value)
	}
	if _, err := fmt.Fprintln(w, strings.Join(stats, "  |  ")); err != nil {
		return err
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{
				PerColumn: []tw.Align{tw.AlignLeft, tw.AlignRight, tw.AlignRight, tw.AlignCenter, tw.AlignLeft},
			},
		},
	}))
	table.Header("Student Name", "Score", "Percentage", "Grade", "Answers")
	for _, r := range v.Rows {
		if err := table.Append(r.Name, r.Score, r.Percentage, r.Grade, answerStrip(r.Cells)); err != nil {
			return err
		}
	}
	return table.Render()
}

func answerStrip(cells []Cell) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.Text)
		if !c.Correct {
			b.WriteByte('x')
		}
	}
	return b.String()
}
