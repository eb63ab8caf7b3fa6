// Package export renders period reports as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/usecase"
)

// Sheet names of a report workbook, in order.
const (
	SheetCashFlow     = "Cash flow"
	SheetDistribution = "Distribution"
	SheetClosing      = "Closing"
)

// ContentType is the MIME type of the rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type row struct {
	label string
	value interface{}
}

// Workbook builds a workbook with the cash flow, distribution and closing
// views of report. The caller closes the returned file.
func Workbook(report *usecase.PeriodReport) (*excelize.File, error) {
	f := excelize.NewFile()

	sheets := []struct {
		name string
		rows []row
	}{
		{SheetCashFlow, cashFlowRows(report.CashFlow)},
		{SheetDistribution, distributionRows(report.Distribution)},
		{SheetClosing, closingRows(report.Closing)},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			f.Close()
			return nil, err
		}

		if err := writeRows(f, sheet.name, report.Period, sheet.rows); err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %q: %w", sheet.name, err)
		}
	}

	return f, nil
}

// WriteReport renders report and streams the workbook to w.
func WriteReport(w io.Writer, report *usecase.PeriodReport) error {
	f, err := Workbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

// FileName is the download name of the workbook of period.
func FileName(period domain.Period) string {
	return fmt.Sprintf("report-%s-%s.xlsx", period.Kind, period.Label())
}

func writeRows(f *excelize.File, sheet string, period domain.Period, rows []row) error {
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Period", period.Label()}); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{"Metric", "Amount"}); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{r.label, r.value}); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheet, "A", "A", 24)
}

func cashFlowRows(cf usecase.CashFlow) []row {
	rows := []row{
		{"Collected", cf.Collected},
		{"Payments", cf.PaymentCount},
	}
	for _, method := range domain.PaymentMethods {
		rows = append(rows, row{"Collected by " + string(method), cf.ByMethod[method]})
	}
	return append(rows,
		row{"Expenses", cf.Expenses},
		row{"Reimbursable expenses", cf.Reimbursable},
		row{"Other expenses", cf.OtherExpenses},
		row{"Expense count", cf.ExpenseCount},
		row{"Net of expenses", cf.NetOfExpenses},
		row{"Payments without case", cf.OrphanPayments},
	)
}

func distributionRows(d usecase.Distribution) []row {
	return []row{
		{"To lab", d.ToLab},
		{"To A", d.ToA},
		{"To B", d.ToB},
		{"Surplus", d.Surplus},
		{"Lab commitment", d.LabCommitment},
		{"Lab pending", d.LabPending},
	}
}

func closingRows(c usecase.ClosingSnapshot) []row {
	return []row{
		{"Cases", c.Cases},
		{"Gross price", c.GrossPrice},
		{"Collected", c.Collected},
		{"Target lab", c.Targets.Lab},
		{"Target A", c.Targets.A},
		{"Target B", c.Targets.B},
		{"Covered lab", c.Covered.Lab},
		{"Covered A", c.Covered.A},
		{"Covered B", c.Covered.B},
		{"Balance payer", c.Balances.Payer},
		{"Balance lab", c.Balances.Lab},
		{"Balance A", c.Balances.A},
		{"Balance B", c.Balances.B},
		{"Delta", c.Delta},
		{"Needs review", strings.Join(c.NeedsReview, ", ")},
	}
}
