// Package spreadsheet loads the route list and the airport reference table
// from xlsx workbooks. Only the first sheet of a workbook is read and the
// first row is the header.
package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/xuri/excelize/v2"
)

const (
	ColumnDepartureCity = "departure_city"
	ColumnArrivalCity   = "arrival_city"
	ColumnSearchTerm    = "search_term"
	ColumnIataCode      = "iatacode"
)

// NormalizeHeader lower cases a header and replaces spaces with underscores,
// "Departure City" -> "departure_city".
func NormalizeHeader(header string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(header)), " ", "_")
}

type table struct {
	columns map[string]int
	rows    [][]string
}

func (t table) cell(row []string, column string) string {
	idx := t.columns[column]
	if idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func (t table) require(path string, columns ...string) error {
	for _, column := range columns {
		if _, ok := t.columns[column]; !ok {
			return fmt.Errorf("%s: missing column %q", path, column)
		}
	}

	return nil
}

func readTable(path string) (table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table{}, fmt.Errorf("%s: workbook has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return table{}, fmt.Errorf("read rows: %w", err)
	}

	if len(rows) == 0 {
		return table{}, fmt.Errorf("%s: sheet %q is empty", path, sheets[0])
	}

	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[NormalizeHeader(header)] = i
	}

	return table{columns: columns, rows: rows[1:]}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

// ReadRoutes returns the route list in sheet order. Blank rows are skipped,
// a row with only one city is an error.
func ReadRoutes(path string) ([]dto.Route, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	if err := t.require(path, ColumnDepartureCity, ColumnArrivalCity); err != nil {
		return nil, err
	}

	routes := make([]dto.Route, 0, len(t.rows))
	for i, row := range t.rows {
		if isBlank(row) {
			continue
		}

		route := dto.Route{
			DepartureCity: t.cell(row, ColumnDepartureCity),
			ArrivalCity:   t.cell(row, ColumnArrivalCity),
		}
		if route.DepartureCity == "" || route.ArrivalCity == "" {
			// +2: header row and 1-based sheet rows
			return nil, fmt.Errorf("%s: row %d has an empty city", path, i+2)
		}

		routes = append(routes, route)
	}

	return routes, nil
}

// ReadAirports returns the airport reference table. Rows without a search
// term or a code can never match and are skipped.
func ReadAirports(path string) ([]dto.AirportEntry, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	if err := t.require(path, ColumnSearchTerm, ColumnIataCode); err != nil {
		return nil, err
	}

	entries := make([]dto.AirportEntry, 0, len(t.rows))
	for _, row := range t.rows {
		entry := dto.AirportEntry{
			SearchTerm: t.cell(row, ColumnSearchTerm),
			IataCode:   t.cell(row, ColumnIataCode),
		}
		if entry.SearchTerm == "" || entry.IataCode == "" {
			continue
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
