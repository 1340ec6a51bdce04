// Package ingest decodes student response spreadsheets into records.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/gradesheet/internal/model"
)

var (
	// ErrEmptyFile is returned for zero-length uploads.
	ErrEmptyFile = errors.New("spreadsheet file is empty")
	// ErrLegacyWorkbook is returned for binary .xls files, which cannot be read.
	ErrLegacyWorkbook = errors.New("legacy .xls workbooks are not supported, save the file as .xlsx or .csv")
)

// ParseFile decodes data according to the file extension of name.
// CSV files are read as text, .xls is rejected and everything else is treated as an XLSX workbook.
func ParseFile(name string, data []byte) ([]model.StudentRecord, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ParseCSV(data)
	case ".xls":
		return nil, ErrLegacyWorkbook
	}
	return Parse(data)
}

// Parse reads the first sheet of an XLSX workbook. The first row is the header;
// every following non-blank row becomes one record.
func Parse(data []byte) ([]model.StudentRecord, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("close workbook", "error", err)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook does not contain any sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %q: %w", sheet, err)
	}
	records := toRecords(rows)
	slog.Debug("parsed workbook", "sheet", sheet, "rows", len(rows), "records", len(records))
	return records, nil
}

// ParseCSV reads comma separated text with a header row.
func ParseCSV(data []byte) ([]model.StudentRecord, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return toRecords(rows), nil
}

func toRecords(rows [][]string) []model.StudentRecord {
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	records := make([]model.StudentRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			slog.Debug("skipping blank row", "row", i+2)
			continue
		}
		rec := make(model.StudentRecord, len(header))
		for col, value := range row {
			if col >= len(header) || header[col] == "" {
				continue
			}
			if _, dup := rec[header[col]]; dup {
				continue
			}
			rec[header[col]] = value
		}
		records = append(records, rec)
	}
	return records
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
