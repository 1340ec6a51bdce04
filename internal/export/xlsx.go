package export

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/gradesheet/internal/model"
)

const (
	// SheetName is the single worksheet of the workbook export.
	SheetName   = "Evaluation Results"
	columnWidth = 15
)

// XLSXHeader returns the workbook header row.
func XLSXHeader() []string {
	header := append([]string(nil), leadingColumns...)
	for q := 1; q <= model.NumQuestions; q++ {
		p := model.QuestionField(q)
		header = append(header, p+" Student", p+" Correct", p+" Result")
	}
	return header
}

// WriteXLSX writes a workbook with one sheet holding the header and one row per student.
func WriteXLSX(w io.Writer, results []model.StudentResult) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := XLSXHeader()
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range results {
		row := []any{r.Name, r.Timestamp, r.UniversityID, r.Email, r.Score, strconv.Itoa(r.Percentage) + "%", r.Grade}
		for _, e := range r.Evaluation {
			row = append(row, e.StudentAnswer, e.CorrectAnswer, e.ResultLabel())
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", last, columnWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
