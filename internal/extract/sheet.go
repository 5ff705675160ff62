package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

type sheet struct {
	name string
	rows [][]string
}

// dumpSheets writes each sheet as a "Sheet: name" header followed by one tab-separated
// line per non-empty row. Sheets are separated by a blank line.
func dumpSheets(sheets []sheet) string {
	parts := make([]string, 0, len(sheets))
	for _, s := range sheets {
		var sb strings.Builder
		sb.WriteString("Sheet: ")
		sb.WriteString(s.name)
		for _, row := range s.rows {
			line := strings.TrimRight(strings.Join(row, "\t"), "\t ")
			if strings.TrimSpace(line) == "" {
				continue
			}
			sb.WriteByte('\n')
			sb.WriteString(line)
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n\n")
}

func decodeXLSX(buf []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		return "", failed("xlsx", err)
	}
	defer f.Close()

	var sheets []sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return "", failed("xlsx", err)
		}
		sheets = append(sheets, sheet{name: name, rows: rows})
	}
	return dumpSheets(sheets), nil
}

func decodeXLS(buf []byte) (text string, err error) {
	defer recoverAs("xls", &err)

	wb, err := xls.OpenReader(bytes.NewReader(buf), "utf-8")
	if err != nil {
		return "", failed("xls", err)
	}
	var sheets []sheet
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		s := sheet{name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol()+1)
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			s.rows = append(s.rows, cells)
		}
		sheets = append(sheets, s)
	}
	return dumpSheets(sheets), nil
}

func decodeCSV(buf []byte, name string) (string, error) {
	r := csv.NewReader(strings.NewReader(decodeText(buf)))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", failed("csv", err)
		}
		rows = append(rows, rec)
	}
	return dumpSheets([]sheet{{name: name, rows: rows}}), nil
}
