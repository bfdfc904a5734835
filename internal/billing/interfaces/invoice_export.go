package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	billing "enercom-billing/internal/billing/domain"
)

// BuildInvoicePDF renders a minimal PDF for an invoice.
func BuildInvoicePDF(invoice *billing.Invoice, ledger *billing.ParticipantLedger) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Energy Community Invoice")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice: %s", invoice.Number))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Participant: %s", invoice.Participant.Name))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("EAN: %s", invoice.Participant.EAN))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", invoice.PeriodStart, invoice.PeriodEnd))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Issue date: %s", invoice.IssueDate.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Due date: %s", invoice.DueDate.Format("2006-01-02")))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Shared volume (kWh): %.3f", invoice.SharedVolume))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Complementary volume (kWh): %.3f", invoice.ComplementaryVolume))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Shared injection (kWh): %.3f", invoice.SharedInjection))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Complementary injection (kWh): %.3f", invoice.ComplementaryInjection))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Energy costs (EUR): %.2f", invoice.TotalCosts))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Injection revenues (EUR): %.2f", invoice.TotalRevenues))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Network costs (EUR): %.2f", invoice.NetworkCostTotal))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Subtotal (EUR): %.2f", invoice.Subtotal))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("VAT (EUR): %.2f", invoice.VAT))
	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total incl. VAT (EUR): %.2f", invoice.TotalWithVAT))
	pdf.Ln(8)

	// Month table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Month", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Costs (EUR)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Revenues (EUR)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Balance (EUR)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, month := range invoice.Months {
		entry := ledger.Months[month]
		pdf.CellFormat(30, 6, month.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.2f", entry.TotalCosts), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.2f", entry.TotalRemunerations), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.2f", entry.MonthlyBalance), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildInvoiceXLSX renders a minimal XLSX for an invoice.
func BuildInvoiceXLSX(invoice *billing.Invoice, ledger *billing.ParticipantLedger) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	monthsSheet := "months"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(monthsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Energy Community Invoice")
	_ = f.SetCellValue(summarySheet, "A3", "Invoice")
	_ = f.SetCellValue(summarySheet, "B3", invoice.Number)
	_ = f.SetCellValue(summarySheet, "A4", "Participant")
	_ = f.SetCellValue(summarySheet, "B4", invoice.Participant.Name)
	_ = f.SetCellValue(summarySheet, "A5", "EAN")
	_ = f.SetCellValue(summarySheet, "B5", invoice.Participant.EAN)
	_ = f.SetCellValue(summarySheet, "A6", "Period start")
	_ = f.SetCellValue(summarySheet, "B6", invoice.PeriodStart.String())
	_ = f.SetCellValue(summarySheet, "A7", "Period end")
	_ = f.SetCellValue(summarySheet, "B7", invoice.PeriodEnd.String())
	_ = f.SetCellValue(summarySheet, "A8", "Issue date")
	_ = f.SetCellValue(summarySheet, "B8", invoice.IssueDate.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A9", "Due date")
	_ = f.SetCellValue(summarySheet, "B9", invoice.DueDate.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A10", "Shared volume (kWh)")
	_ = f.SetCellValue(summarySheet, "B10", invoice.SharedVolume)
	_ = f.SetCellValue(summarySheet, "A11", "Complementary volume (kWh)")
	_ = f.SetCellValue(summarySheet, "B11", invoice.ComplementaryVolume)
	_ = f.SetCellValue(summarySheet, "A12", "Shared injection (kWh)")
	_ = f.SetCellValue(summarySheet, "B12", invoice.SharedInjection)
	_ = f.SetCellValue(summarySheet, "A13", "Complementary injection (kWh)")
	_ = f.SetCellValue(summarySheet, "B13", invoice.ComplementaryInjection)
	_ = f.SetCellValue(summarySheet, "A14", "Energy costs (EUR)")
	_ = f.SetCellValue(summarySheet, "B14", invoice.TotalCosts)
	_ = f.SetCellValue(summarySheet, "A15", "Injection revenues (EUR)")
	_ = f.SetCellValue(summarySheet, "B15", invoice.TotalRevenues)
	_ = f.SetCellValue(summarySheet, "A16", "Network costs (EUR)")
	_ = f.SetCellValue(summarySheet, "B16", invoice.NetworkCostTotal)
	_ = f.SetCellValue(summarySheet, "A17", "Subtotal (EUR)")
	_ = f.SetCellValue(summarySheet, "B17", invoice.Subtotal)
	_ = f.SetCellValue(summarySheet, "A18", "VAT (EUR)")
	_ = f.SetCellValue(summarySheet, "B18", invoice.VAT)
	_ = f.SetCellValue(summarySheet, "A19", "Total incl. VAT (EUR)")
	_ = f.SetCellValue(summarySheet, "B19", invoice.TotalWithVAT)

	_ = f.SetCellValue(monthsSheet, "A1", "Month")
	_ = f.SetCellValue(monthsSheet, "B1", "Costs (EUR)")
	_ = f.SetCellValue(monthsSheet, "C1", "Revenues (EUR)")
	_ = f.SetCellValue(monthsSheet, "D1", "Balance (EUR)")
	for i, month := range invoice.Months {
		row := i + 2
		entry := ledger.Months[month]
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("A%d", row), month.String())
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("B%d", row), entry.TotalCosts)
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("C%d", row), entry.TotalRemunerations)
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("D%d", row), entry.MonthlyBalance)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
