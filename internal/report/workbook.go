package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/user/isoplot_go/internal/analysis"
	"github.com/xuri/excelize/v2"
)

const maxSheetNameLen = 31

// sheetName derives a valid, unique worksheet name from a block title.
func sheetName(title string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if name == "" {
		name = fmt.Sprintf("Block %d", index)
	}
	if r := []rune(name); len(r) > maxSheetNameLen {
		name = string(r[:maxSheetNameLen])
	}

	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := " (" + strconv.Itoa(n) + ")"
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetNameLen {
			r = r[:maxSheetNameLen-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

// blockRows lays a block out column-wise: the x values of the reference
// curve, the y values of every curve, then every ratio. Shorter columns are
// left blank.
func blockRows(b *analysis.BlockResult) [][]interface{} {
	header := []interface{}{"x"}
	n := 0
	for _, c := range b.Curves {
		header = append(header, c.Title+" y")
		n = max(n, len(c.Points))
	}
	for _, r := range b.Ratios {
		header = append(header, r.Title+" ratio")
	}

	rows := make([][]interface{}, 0, n+1)
	rows = append(rows, header)
	for k := 0; k < n; k++ {
		row := make([]interface{}, len(header))
		for i, c := range b.Curves {
			if k < len(c.Points) {
				if row[0] == nil {
					row[0] = c.Points[k].X
				}
				row[1+i] = c.Points[k].Y
			}
		}
		for i, r := range b.Ratios {
			if k < len(r.Points) {
				row[1+len(b.Curves)+i] = spreadsheetValue(r.Points[k].Y)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// spreadsheetValue replaces values a cell cannot hold with text.
func spreadsheetValue(v float64) interface{} {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	switch s {
	case "NaN", "+Inf", "-Inf":
		return s
	}
	return v
}

// WriteWorkbook exports every block's curve and ratio data to an xlsx file,
// one worksheet per block.
func WriteWorkbook(path string, blocks []*analysis.BlockResult) error {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	first := true
	for _, b := range blocks {
		name := sheetName(b.Settings.Title1, b.Index, used)
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		for r, row := range blockRows(b) {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("failed to write sheet %q: %w", name, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
