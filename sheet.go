/*
Copyright 2025 AF360 Bank Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package financeiro

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/af360bank/financeiro/model"
	"github.com/xuri/excelize/v2"
)

// ErrColumnsNotFound aborts the whole import: without the three roles there
// is nothing row-level recovery can do.
var ErrColumnsNotFound = errors.New("required columns not found")

// headerKeywords marks a row as the header row when any cell contains one of
// them. Both Portuguese and English exports are in circulation.
var headerKeywords = []string{"data", "histórico", "valor", "date", "historic", "value"}

// Role candidates are tried in order; the first column whose name contains
// the fragment wins the role.
var (
	dateCandidates        = []string{"data", "date", "dt"}
	descriptionCandidates = []string{"histórico", "historico", "historic", "descrição", "descricao"}
	amountCandidates      = []string{"valor", "value", "quantia"}
)

// columnRoles maps the three semantic roles to column indexes.
type columnRoles struct {
	Date        int
	Description int
	Amount      int
}

// readSheet loads the first worksheet of an xlsx file as a row matrix.
func readSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("spreadsheet has no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading worksheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// findHeaderRow returns the index of the first row containing a header
// keyword, or -1 when no row qualifies.
func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			text := strings.ToLower(strings.TrimSpace(cell))
			if text == "" {
				continue
			}
			for _, keyword := range headerKeywords {
				if strings.Contains(text, keyword) {
					return i
				}
			}
		}
	}
	return -1
}

// headerLabels turns a header row into column names, substituting a
// positional placeholder for blank cells.
func headerLabels(row []string) []string {
	labels := make([]string, len(row))
	for i, cell := range row {
		label := strings.TrimSpace(cell)
		if label == "" {
			label = fmt.Sprintf("column_%d", i)
		}
		labels[i] = label
	}
	return labels
}

// matchColumn returns the index of the first column whose name contains one
// of the candidate fragments, scanning candidates in priority order.
func matchColumn(labels []string, candidates []string) int {
	for _, candidate := range candidates {
		for i, label := range labels {
			if strings.Contains(strings.ToLower(label), candidate) {
				return i
			}
		}
	}
	return -1
}

// resolveStatementColumns locates the header row and maps the date,
// description and amount roles to column indexes. It returns the index of
// the first data row. Title banners above the header row are discarded.
//
// Parameters:
// - rows [][]string: The full sheet as returned by readSheet.
//
// Returns:
// - columnRoles: The resolved column indexes.
// - int: The index of the first data row.
// - error: ErrColumnsNotFound when any role is unresolved.
func resolveStatementColumns(rows [][]string) (columnRoles, int, error) {
	if len(rows) == 0 {
		return columnRoles{}, 0, ErrColumnsNotFound
	}

	headerIdx := findHeaderRow(rows)
	if headerIdx < 0 {
		headerIdx = 0
	}

	labels := headerLabels(rows[headerIdx])
	roles := columnRoles{
		Date:        matchColumn(labels, dateCandidates),
		Description: matchColumn(labels, descriptionCandidates),
		Amount:      matchColumn(labels, amountCandidates),
	}
	if roles.Date < 0 || roles.Description < 0 || roles.Amount < 0 {
		return columnRoles{}, 0, ErrColumnsNotFound
	}

	return roles, headerIdx + 1, nil
}

// excel serial dates count days from Dec 30 1899.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var genericDateLayouts = []string{
	"02-01-2006",
	"2006/01/02",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2-1-06",
	"2/1/06",
}

// parseStatementDate tries the known statement date formats in order:
// day/month/year, ISO, Excel serial, then a short list of generic layouts.
func parseStatementDate(cell string) (time.Time, error) {
	text := strings.TrimSpace(cell)
	if text == "" {
		return time.Time{}, errors.New("empty date cell")
	}

	if t, err := time.Parse("02/01/2006", text); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", text); err == nil {
		return t, nil
	}
	if serial, err := strconv.ParseFloat(text, 64); err == nil && serial > 0 {
		days := int(serial)
		return excelEpoch.AddDate(0, 0, days), nil
	}
	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", cell)
}

// parseStatementAmount normalizes a locale-formatted currency cell. When both
// separators appear, the dot is a thousands separator; a lone comma is the
// decimal point.
func parseStatementAmount(cell string) (float64, error) {
	text := strings.TrimSpace(cell)
	if text == "" {
		return 0, errors.New("empty amount cell")
	}

	text = strings.ReplaceAll(text, "R$", "")
	text = strings.Join(strings.Fields(text), "")

	hasDot := strings.Contains(text, ".")
	hasComma := strings.Contains(text, ",")
	switch {
	case hasDot && hasComma:
		text = strings.ReplaceAll(text, ".", "")
		text = strings.ReplaceAll(text, ",", ".")
	case hasComma:
		text = strings.ReplaceAll(text, ",", ".")
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q: %w", cell, err)
	}
	return value, nil
}

// normalizeRow turns a raw sheet row into a StatementRow. Blank required
// cells or unparseable values are row-level errors: the caller skips the row
// and moves on.
func normalizeRow(row []string, roles columnRoles) (*model.StatementRow, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return row[idx]
		}
		return ""
	}

	description := strings.TrimSpace(cell(roles.Description))
	if description == "" {
		return nil, errors.New("empty description cell")
	}

	date, err := parseStatementDate(cell(roles.Date))
	if err != nil {
		return nil, err
	}

	value, err := parseStatementAmount(cell(roles.Amount))
	if err != nil {
		return nil, err
	}

	return &model.StatementRow{Date: date, Description: description, Value: value}, nil
}
