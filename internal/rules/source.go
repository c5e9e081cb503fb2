// Package rules reads the academic rules narrated before an exam.
package rules

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/logger"
)

// Compile-time interface check.
var _ domain.RuleSource = (*FileSource)(nil)

var (
	// ErrColumnNotFound is returned when the header row has no matching column.
	ErrColumnNotFound = errors.New("rules column not found")
	// ErrUnsupportedFormat is returned for files that are neither a
	// spreadsheet nor CSV.
	ErrUnsupportedFormat = errors.New("unsupported rules file format")
)

// FileSource reads rules from .xlsx/.xlsm workbooks or .csv files. The
// first row is the header; the first sheet of a workbook is used.
type FileSource struct {
	log *logger.Logger
}

// NewFileSource creates a file-backed rule source.
func NewFileSource(log *logger.Logger) *FileSource {
	return &FileSource{log: log}
}

// Read returns every non-empty cell below the header of the named column,
// top to bottom. The header is matched exactly first, then ignoring case
// and surrounding whitespace.
func (s *FileSource) Read(ctx context.Context, path, column string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if column == "" {
		column = domain.DefaultRulesColumn
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		rows, err = readWorkbook(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	rules, err := extractColumn(rows, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	s.log.Debug("rules: read %d rules from %s (column %q)", len(rules), path, column)
	return rules, nil
}

// ReadOrEmpty reads rules and logs instead of failing. A missing or
// malformed file yields an empty list.
func ReadOrEmpty(ctx context.Context, src domain.RuleSource, path, column string, log *logger.Logger) []string {
	rules, err := src.Read(ctx, path, column)
	if err != nil {
		log.Warn("rules: %v (continuing without rules)", err)
		return []string{}
	}
	return rules
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1 // ragged rows are common in hand-edited sheets
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// extractColumn finds column in the header row and collects its non-empty
// cells.
func extractColumn(rows [][]string, column string) ([]string, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q (empty sheet)", ErrColumnNotFound, column)
	}

	idx := headerIndex(rows[0], column)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	out := []string{}
	for _, row := range rows[1:] {
		if idx >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		out = append(out, cell)
	}
	return out, nil
}

func headerIndex(header []string, column string) int {
	for i, h := range header {
		if h == column {
			return i
		}
	}
	want := strings.TrimSpace(column)
	for i, h := range header {
		if strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(h), "\ufeff"), want) {
			return i
		}
	}
	return -1
}
