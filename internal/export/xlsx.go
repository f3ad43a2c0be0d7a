package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"finextract/internal/domain"
)

// Sheet names of the exported workbook.
const (
	SheetInvoices     = "LISTE_DES_FACTURES"
	SheetTransactions = "TOUTES_TRANSACTIONS"
)

// WriteXLSX writes a two-sheet workbook: the invoice list and the full
// transaction ledger.
func WriteXLSX(out io.Writer, res *domain.ExtractionResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetInvoices); err != nil {
		return fmt.Errorf("export.WriteXLSX: renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetTransactions); err != nil {
		return fmt.Errorf("export.WriteXLSX: creating sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export.WriteXLSX: creating style: %w", err)
	}

	invoiceRows := make([][]interface{}, 0, len(res.Batches))
	for i := range res.Batches {
		b := &res.Batches[i]
		invoiceRows = append(invoiceRows, []interface{}{
			b.Date, b.FactureNumber, b.TotalRemiseDH, b.TotalCommissionsHT, b.TotalTVASurCommissions, b.SoldeNetRemise,
		})
	}
	if err := writeSheet(f, SheetInvoices, invoiceColumns, invoiceRows, headerStyle); err != nil {
		return err
	}

	txRows := make([][]interface{}, 0, len(res.Transactions))
	for i := range res.Transactions {
		tx := &res.Transactions[i]
		txRows = append(txRows, []interface{}{tx.Date, tx.Libelle, cellValue(tx.Debit), cellValue(tx.Credit)})
	}
	if err := writeSheet(f, SheetTransactions, transactionColumns, txRows, headerStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(out); err != nil {
		return fmt.Errorf("export.WriteXLSX: writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}, headerStyle int) error {
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("export.WriteXLSX: %s header: %w", sheet, err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("export.WriteXLSX: %s columns: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("export.WriteXLSX: %s header style: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return fmt.Errorf("export.WriteXLSX: %s column width: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export.WriteXLSX: %s row %d: %w", sheet, i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("export.WriteXLSX: %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

// cellValue leaves absent amounts as empty cells.
func cellValue(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
