package report

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Report"

// WriteXLSX writes the report table as a one-sheet workbook: a title row,
// a header row, then label/amount pairs. Amounts are numeric cells with a
// currency format so the spreadsheet can keep summing them.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return errors.Wrap(err, "rename sheet")
	}

	currency := "$#,##0.00"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &currency})
	if err != nil {
		return errors.Wrap(err, "create currency style")
	}

	if err := f.SetCellValue(SheetName, "A1", r.Title); err != nil {
		return errors.Wrap(err, "write title")
	}
	if err := f.SetSheetRow(SheetName, "A2", &[]any{r.Header, "Amount"}); err != nil {
		return errors.Wrap(err, "write header")
	}

	for i, row := range r.Table() {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return errors.WithStack(err)
		}
		amount, _ := row.Amount.Round(2).Float64()
		if err := f.SetSheetRow(SheetName, cell, &[]any{row.Label, amount}); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
		amountCell, err := excelize.CoordinatesToCellName(2, i+3)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := f.SetCellStyle(SheetName, amountCell, amountCell, style); err != nil {
			return errors.Wrapf(err, "style row %d", i)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 28); err != nil {
		return errors.WithStack(err)
	}
	if err := f.SetColWidth(SheetName, "B", "B", 16); err != nil {
		return errors.WithStack(err)
	}

	return errors.Wrap(f.Write(w), "write workbook")
}
