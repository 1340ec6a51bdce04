// Package export serializes evaluation results to downloadable artifacts.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/report"
	"github.com/pavelanni/gradesheet/internal/views"
)

// Format identifies an export artifact type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatXLSX, FormatHTML, FormatJSON}

// ParseFormat resolves a format name. "print" is accepted for html.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatHTML, FormatJSON:
		return f, nil
	case "print":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType returns the MIME type served for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// Filename returns evaluation_results_<UTC date>.<ext>.
func Filename(f Format, t time.Time) string {
	return fmt.Sprintf("evaluation_results_%s.%s", t.UTC().Format("2006-01-02"), f)
}

// Write renders run in format f. The print document is built from the presented view
// and stamped with the run's evaluation time.
func Write(ctx context.Context, w io.Writer, f Format, run model.RunExport, view report.View) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, run.Results)
	case FormatXLSX:
		return WriteXLSX(w, run.Results)
	case FormatHTML:
		return WritePrint(ctx, w, view, run.EvaluatedAt)
	case FormatJSON:
		return WriteJSON(w, run)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WritePrint writes a standalone printable HTML document of the presented results.
func WritePrint(ctx context.Context, w io.Writer, view report.View, generatedAt time.Time) error {
	return views.PrintDocument(view, generatedAt).Render(ctx, w)
}

// WriteJSON writes the run as indented JSON followed by a newline.
func WriteJSON(w io.Writer, run model.RunExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
