package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the generated workbook.
const (
	summarySheetName = "Summary Scores"
	detailSheetName  = "Detailed Analysis"
)

// WriteWorkbook renders the summary and detailed tables as a styled
// two-sheet workbook and returns the serialized bytes.
func WriteWorkbook(summary, detailed Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheetName)
	if _, err := f.NewSheet(detailSheetName); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create styles: %w", err)
	}

	if err := writeTable(f, summarySheetName, summary, styles); err != nil {
		return nil, fmt.Errorf("failed to write summary sheet: %w", err)
	}
	if err := writeTable(f, detailSheetName, detailed, styles); err != nil {
		return nil, fmt.Errorf("failed to write detailed sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	header        int
	candidate     int
	score         int
	justification int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return sheetStyles{}, err
	}

	candidate, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: border,
	})
	if err != nil {
		return sheetStyles{}, err
	}

	// Integer display for score cells.
	score, err := f.NewStyle(&excelize.Style{
		NumFmt:    1,
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	})
	if err != nil {
		return sheetStyles{}, err
	}

	justification, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    border,
	})
	if err != nil {
		return sheetStyles{}, err
	}

	return sheetStyles{header: header, candidate: candidate, score: score, justification: justification}, nil
}

func writeTable(f *excelize.File, sheetName string, table Table, styles sheetStyles) error {
	for colIdx, colName := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetName, cell, colName)
		f.SetCellStyle(sheetName, cell, cell, styles.header)
	}

	for rowIdx, row := range table.Rows {
		for colIdx, colName := range table.Columns {
			value, ok := row[colName]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			f.SetCellValue(sheetName, cell, value)

			switch {
			case colName == ColCandidate:
				f.SetCellStyle(sheetName, cell, cell, styles.candidate)
			case strings.Contains(colName, "Justification"):
				f.SetCellStyle(sheetName, cell, cell, styles.justification)
			case strings.Contains(colName, "Score"):
				if _, numeric := value.(int); numeric {
					f.SetCellStyle(sheetName, cell, cell, styles.score)
				}
			}
		}
	}

	for colIdx, colName := range table.Columns {
		name, err := excelize.ColumnNumberToName(colIdx + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, columnWidth(table, colName)); err != nil {
			return err
		}
	}

	// Keep the header row visible while scrolling.
	return f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// columnWidth applies the fixed widths for score, justification and
// candidate columns; everything else sizes to content with a hard cap.
func columnWidth(table Table, colName string) float64 {
	switch {
	case strings.Contains(colName, "Score") && !strings.Contains(colName, "Total"):
		return 10
	case strings.Contains(colName, "Justification"):
		return 40
	case colName == ColCandidate:
		return 20
	default:
		maxLen := len(colName)
		for _, row := range table.Rows {
			if value, ok := row[colName]; ok {
				if l := len(fmt.Sprint(value)); l > maxLen {
					maxLen = l
				}
			}
		}
		if maxLen+2 > 30 {
			return 30
		}
		return float64(maxLen + 2)
	}
}
