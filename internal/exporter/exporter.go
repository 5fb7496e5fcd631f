// Package exporter writes progress reports to Excel or CSV files.
package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/studybot/pkg/models"
)

// Summary is the aggregate block written above the per-card rows.
type Summary struct {
	Total    int
	Mastered int
	Learning int
	Due      int
	Streak   int
}

// Config defines the export configuration.
type Config struct {
	FilePath  string // Destination .xlsx or .csv file
	SheetName string // Sheet to write in the Excel case
}

// DefaultConfig returns the default export configuration.
func DefaultConfig(path string) Config {
	return Config{
		FilePath:  path,
		SheetName: "Progress",
	}
}

var header = []string{
	"Question ID", "Status", "Correct", "Wrong",
	"Easiness Factor", "Interval (days)", "Repetition",
	"Last Reviewed", "Next Review",
}

// Export writes every card plus the summary to the configured file. The
// format follows the file extension, .xlsx or .csv.
func Export(cards map[string]models.CardState, summary Summary, config Config) error {
	rows := make([]models.CardState, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, card)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].QuestionID < rows[j].QuestionID
	})

	ext := strings.ToLower(filepath.Ext(config.FilePath))
	switch ext {
	case ".xlsx":
		return exportExcel(rows, summary, config)
	case ".csv":
		return exportCSV(rows, summary, config)
	default:
		return fmt.Errorf("unsupported export format: %s", ext)
	}
}

func cardRow(card models.CardState) []string {
	return []string{
		card.QuestionID,
		string(card.Status),
		strconv.Itoa(card.CorrectCount),
		strconv.Itoa(card.WrongCount),
		strconv.FormatFloat(card.EasinessFactor, 'f', 2, 64),
		strconv.Itoa(card.Interval),
		strconv.Itoa(card.Repetition),
		card.LastReviewed,
		card.NextReview,
	}
}

func summaryRows(summary Summary) [][]string {
	return [][]string{
		{"Total cards", strconv.Itoa(summary.Total)},
		{"Mastered", strconv.Itoa(summary.Mastered)},
		{"Learning", strconv.Itoa(summary.Learning)},
		{"Due today", strconv.Itoa(summary.Due)},
		{"Current streak (days)", strconv.Itoa(summary.Streak)},
	}
}

func exportExcel(rows []models.CardState, summary Summary, config Config) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = "Progress"
	}
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	f.SetActiveSheet(index)

	line := 1
	for _, row := range summaryRows(summary) {
		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{row[0], row[1]}); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
		line++
	}
	line++ // blank row between summary and table

	headerCell, _ := excelize.CoordinatesToCellName(1, line)
	headerVals := make([]interface{}, len(header))
	for i, h := range header {
		headerVals[i] = h
	}
	if err := f.SetSheetRow(sheet, headerCell, &headerVals); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	line++

	for _, card := range rows {
		vals := cardRow(card)
		cells := make([]interface{}, len(vals))
		for i, v := range vals {
			cells[i] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row for question %s: %w", card.QuestionID, err)
		}
		line++
	}

	// Drop the default sheet if we wrote to a differently named one.
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}
	return f.SaveAs(config.FilePath)
}

func exportCSV(rows []models.CardState, summary Summary, config Config) error {
	file, err := os.Create(config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	for _, row := range summaryRows(summary) {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, card := range rows {
		if err := w.Write(cardRow(card)); err != nil {
			return fmt.Errorf("failed to write row for question %s: %w", card.QuestionID, err)
		}
	}
	w.Flush()
	return w.Error()
}
