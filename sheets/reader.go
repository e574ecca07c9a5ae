// Package sheets reads the OHLCV workbook export produced by the upstream
// spreadsheet. The layout is fixed: two banner rows, a header row, then one
// seven-column block per company (Symbol, Date, Open, High, Low, Close,
// Volume) laid side by side.
package sheets

import (
	"fmt"

	"github.com/marketmagic/market-ingest-go/ingest"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet name used by the upstream export.
const DefaultSheet = "OHLVC"

const (
	headerRows = 3
	blockWidth = 7
)

// ReadWorkbook reads every company block into raw bars, in sheet order.
// Rows with no symbol or date cell are workbook padding and dropped here;
// everything else is left for the normalizer to judge.
func ReadWorkbook(path, sheet string) ([]ingest.RawBar, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) <= headerRows {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	blocks := len(rows[headerRows-1]) / blockWidth
	if blocks == 0 {
		return nil, fmt.Errorf("sheet %q header has no company blocks", sheet)
	}

	var bars []ingest.RawBar
	for block := 0; block < blocks; block++ {
		base := block * blockWidth
		for _, row := range rows[headerRows:] {
			bar := ingest.RawBar{
				Symbol: cell(row, base),
				Date:   cell(row, base+1),
				Open:   cell(row, base+2),
				High:   cell(row, base+3),
				Low:    cell(row, base+4),
				Close:  cell(row, base+5),
				Volume: cell(row, base+6),
			}
			if bar.Symbol == "" || bar.Date == "" {
				continue
			}
			bars = append(bars, bar)
		}
	}
	return bars, nil
}

// cell returns the value at column i, tolerating the ragged rows GetRows
// produces when trailing cells are empty.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
