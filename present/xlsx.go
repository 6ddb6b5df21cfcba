package present

import (
	"io"

	"github.com/helpcomp/camt-harmonizer/camt"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Transactions"

// XLSX writes a single sheet workbook with one row per transaction.
func XLSX(w io.Writer, transactions []camt.Transaction) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return err
	}

	for i, t := range transactions {
		r := toRow(t)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{r.Date, t.Amount.InexactFloat64(), r.OriginalLabel, r.HarmonizedLabel, r.Reference}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
