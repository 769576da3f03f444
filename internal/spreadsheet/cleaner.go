package spreadsheet

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/liuqy/experiment-management/internal"
)

const (
	// headerRows are carried into the output untouched.
	headerRows = 8
	// maxColumns bounds how many leading columns are copied per row.
	maxColumns = 10
	// keyColumn is the zero-based column whose blankness decides whether
	// a data row is kept.
	keyColumn = 8
)

// Result summarizes one cleaning run.
type Result struct {
	TotalRows   int
	KeptRows    int
	DroppedRows int
}

// Cleaner filters data rows out of a workbook when their key column is
// blank. The first headerRows rows pass through verbatim and row order
// is never changed.
type Cleaner struct{}

func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean reads the first sheet of inputPath and writes the filtered rows
// to outputPath.
func (c *Cleaner) Clean(inputPath, outputPath string) (*Result, error) {
	in, err := excelize.OpenFile(inputPath)
	if err != nil {
		return nil, internal.NewIOError("failed to open workbook", err)
	}
	defer in.Close()

	sheet := in.GetSheetName(0)
	rows, err := in.GetRows(sheet)
	if err != nil {
		return nil, internal.NewIOError("failed to read workbook rows", err)
	}

	result := &Result{TotalRows: len(rows)}

	out := excelize.NewFile()
	defer out.Close()
	outSheet := out.GetSheetName(0)

	outRow := 0
	for i, row := range rows {
		if i >= headerRows && blankKey(row) {
			result.DroppedRows++
			continue
		}
		outRow++
		cell, _ := excelize.CoordinatesToCellName(1, outRow)
		if err := out.SetSheetRow(outSheet, cell, truncate(row)); err != nil {
			return nil, internal.NewIOError("failed to write workbook row", err)
		}
	}
	result.KeptRows = outRow

	if err := out.SaveAs(outputPath); err != nil {
		return nil, internal.NewIOError("failed to save workbook", err)
	}
	return result, nil
}

func blankKey(row []string) bool {
	if len(row) <= keyColumn {
		return true
	}
	return strings.TrimSpace(row[keyColumn]) == ""
}

func truncate(row []string) *[]string {
	if len(row) > maxColumns {
		row = row[:maxColumns]
	}
	cells := make([]string, len(row))
	copy(cells, row)
	return &cells
}
