package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readSpreadsheet reads every sheet of a workbook into row records. The
// first non-empty row of each sheet provides the field names; completely
// empty rows and sheets are dropped.
func readSpreadsheet(data []byte) ([]Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not a valid workbook: %w", err)
	}
	defer f.Close()

	var records []Record
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}

		var headers []string
		for _, row := range rows {
			if rowEmpty(row) {
				continue
			}
			if headers == nil {
				headers = row
				continue
			}
			records = append(records, rowToRecord(headers, row))
		}
	}

	return records, nil
}

func rowToRecord(headers, row []string) Record {
	fields := make([]Field, 0, len(row))
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		name := fmt.Sprintf("column_%d", i+1)
		if i < len(headers) && strings.TrimSpace(headers[i]) != "" {
			name = strings.TrimSpace(headers[i])
		}
		fields = append(fields, Field{Name: name, Value: cell})
	}
	return Record{Fields: fields}
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
