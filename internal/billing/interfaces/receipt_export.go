package interfaces

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	billingapp "waterworks-portal/internal/billing/application"
	billing "waterworks-portal/internal/billing/domain"
)

// BuildReceiptPDF renders a receipt for one reconciled account summary.
func BuildReceiptPDF(summary billingapp.Summary, payments []billing.PaymentRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Water Utility Receipt")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Account: %s", summary.AccountNumber))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", summary.Period))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Due: %.2f", summary.TotalDue))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Paid This Period: %.2f", summary.PaidThisPeriod))
	pdf.Ln(8)

	// Bills table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Service", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Period", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, bill := range summary.Bills {
		pdf.CellFormat(60, 6, latinize(bill.Service), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, bill.Period, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, bill.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", bill.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(payments) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Payments accepted through the portal")
		pdf.Ln(6)
		pdf.CellFormat(60, 6, "Service", "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, "Paid At", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Amount", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, record := range payments {
			pdf.CellFormat(60, 6, latinize(record.Service), "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 6, record.PaidAt.Format("2006-01-02"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", record.Amount), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	if summary.PaymentRequest != nil {
		pdf.Ln(4)
		pdf.Cell(0, 6, "Pay via fast payment:")
		pdf.Ln(5)
		pdf.SetFont("Arial", "", 8)
		pdf.Cell(0, 5, latinize(summary.PaymentRequest.Payload))
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReceiptXLSX renders a receipt workbook for one account summary.
func BuildReceiptXLSX(summary billingapp.Summary, payments []billing.PaymentRecord) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	billsSheet := "bills"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(billsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Water Utility Receipt")
	_ = f.SetCellValue(summarySheet, "A3", "Account")
	_ = f.SetCellValue(summarySheet, "B3", summary.AccountNumber)
	_ = f.SetCellValue(summarySheet, "A4", "Period")
	_ = f.SetCellValue(summarySheet, "B4", summary.Period)
	_ = f.SetCellValue(summarySheet, "A5", "Total Due")
	_ = f.SetCellValue(summarySheet, "B5", summary.TotalDue)
	_ = f.SetCellValue(summarySheet, "A6", "Paid This Period")
	_ = f.SetCellValue(summarySheet, "B6", summary.PaidThisPeriod)
	if summary.PaymentRequest != nil {
		_ = f.SetCellValue(summarySheet, "A7", "Payment Link")
		_ = f.SetCellValue(summarySheet, "B7", summary.PaymentRequest.DeepLinkURL)
	}

	_ = f.SetCellValue(billsSheet, "A1", "Service")
	_ = f.SetCellValue(billsSheet, "B1", "Period")
	_ = f.SetCellValue(billsSheet, "C1", "Status")
	_ = f.SetCellValue(billsSheet, "D1", "Amount")
	for i, bill := range summary.Bills {
		row := i + 2
		_ = f.SetCellValue(billsSheet, fmt.Sprintf("A%d", row), bill.Service)
		_ = f.SetCellValue(billsSheet, fmt.Sprintf("B%d", row), bill.Period)
		_ = f.SetCellValue(billsSheet, fmt.Sprintf("C%d", row), bill.Status)
		_ = f.SetCellValue(billsSheet, fmt.Sprintf("D%d", row), bill.Amount)
	}

	if len(payments) > 0 {
		paymentsSheet := "payments"
		f.NewSheet(paymentsSheet)
		_ = f.SetCellValue(paymentsSheet, "A1", "Service")
		_ = f.SetCellValue(paymentsSheet, "B1", "Paid At")
		_ = f.SetCellValue(paymentsSheet, "C1", "Amount")
		for i, record := range payments {
			row := i + 2
			_ = f.SetCellValue(paymentsSheet, fmt.Sprintf("A%d", row), record.Service)
			_ = f.SetCellValue(paymentsSheet, fmt.Sprintf("B%d", row), record.PaidAt.Format("2006-01-02"))
			_ = f.SetCellValue(paymentsSheet, fmt.Sprintf("C%d", row), record.Amount)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Cyrillic-to-Latin table for the PDF boundary. The core PDF fonts are
// latin-1 only, so service names and payment purposes coming back from the
// regional ledgers are transliterated before rendering.
var cyrillicLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

func latinize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		lower := unicode.ToLower(r)
		mapped, ok := cyrillicLatin[lower]
		if !ok {
			b.WriteByte('?')
			continue
		}
		if r != lower && mapped != "" {
			b.WriteString(strings.ToUpper(mapped[:1]) + mapped[1:])
			continue
		}
		b.WriteString(mapped)
	}
	return b.String()
}
