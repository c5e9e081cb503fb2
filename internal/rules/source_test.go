package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hammamikhairi/proctor/internal/logger"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(t.TempDir(), "rules.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"id", "rules"},
		{1, "Switch off all phones."},
		{2, ""},
		{3, "  No talking during the exam.  "},
		{4, "Write your student number on every page."},
	})

	src := NewFileSource(logger.New(logger.LevelOff, nil))
	got, err := src.Read(context.Background(), path, "rules")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Switch off all phones.",
		"No talking during the exam.",
		"Write your student number on every page.",
	}, got)
}

func TestReadWorkbookCaseInsensitiveHeader(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{" Rules "},
		{"Bags at the front."},
	})

	src := NewFileSource(logger.New(logger.LevelOff, nil))
	got, err := src.Read(context.Background(), path, "rules")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bags at the front."}, got)
}

func TestReadDefaultsColumn(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"rules"}, {"Only pens."}})

	src := NewFileSource(logger.New(logger.LevelOff, nil))
	got, err := src.Read(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Only pens."}, got)
}

func TestReadMissingColumn(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"regulations"}, {"x"}})

	src := NewFileSource(logger.New(logger.LevelOff, nil))
	_, err := src.Read(context.Background(), path, "rules")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.csv")
	content := "rules,notes\n\"Phones off, bags away.\",x\n,\nCalculators allowed.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src := NewFileSource(logger.New(logger.LevelOff, nil))
	got, err := src.Read(context.Background(), path, "rules")
	require.NoError(t, err)
	assert.Equal(t, []string{"Phones off, bags away.", "Calculators allowed."}, got)
}

func TestReadUnsupported(t *testing.T) {
	src := NewFileSource(logger.New(logger.LevelOff, nil))
	_, err := src.Read(context.Background(), "rules.pdf", "rules")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadOrEmptyOnMissingFile(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	src := NewFileSource(log)

	got := ReadOrEmpty(context.Background(), src, filepath.Join(t.TempDir(), "nope.xlsx"), "rules", log)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewFileSource(logger.New(logger.LevelOff, nil))
	_, err := src.Read(ctx, "rules.xlsx", "rules")
	assert.ErrorIs(t, err, context.Canceled)
}
