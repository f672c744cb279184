// Package pdf renders customer-facing order documents (invoices and
// payment receipts) as PDF files.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// CompanyInfo is printed in the document header.
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
}

// InvoiceLine is one order item row on an invoice.
type InvoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// InvoiceData carries everything needed to render an invoice.
type InvoiceData struct {
	Company      CompanyInfo
	OrderNumber  string
	CustomerName string
	Address      string
	IssuedAt     time.Time
	Lines        []InvoiceLine
	Subtotal     decimal.Decimal
	DeliveryFee  decimal.Decimal
	Total        decimal.Decimal
	Currency     string
}

// ReceiptData carries everything needed to render a payment receipt.
type ReceiptData struct {
	Company      CompanyInfo
	OrderNumber  string
	CustomerName string
	PaidAt       time.Time
	Amount       decimal.Decimal
	Method       string
	Reference    string
	Currency     string
}

// Invoice renders the invoice document and returns the PDF bytes.
func Invoice(data InvoiceData) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Facture %s", data.OrderNumber), true)
	doc.AddPage()

	writeHeader(doc, data.Company, "FACTURE")

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, fmt.Sprintf("Commande: %s", data.OrderNumber), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Date: %s", data.IssuedAt.Format("02/01/2006")), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Client: %s", data.CustomerName), "", 1, "L", false, 0, "")
	if data.Address != "" {
		doc.CellFormat(0, 6, fmt.Sprintf("Adresse: %s", data.Address), "", 1, "L", false, 0, "")
	}
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(90, 7, "Article", "1", 0, "L", true, 0, "")
	doc.CellFormat(20, 7, "Qté", "1", 0, "C", true, 0, "")
	doc.CellFormat(40, 7, "Prix unitaire", "1", 0, "R", true, 0, "")
	doc.CellFormat(40, 7, "Total", "1", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for _, line := range data.Lines {
		doc.CellFormat(90, 7, line.Description, "1", 0, "L", false, 0, "")
		doc.CellFormat(20, 7, fmt.Sprintf("%d", line.Quantity), "1", 0, "C", false, 0, "")
		doc.CellFormat(40, 7, money(line.UnitPrice, data.Currency), "1", 0, "R", false, 0, "")
		doc.CellFormat(40, 7, money(line.LineTotal, data.Currency), "1", 1, "R", false, 0, "")
	}

	doc.Ln(2)
	writeTotalRow(doc, "Sous-total", money(data.Subtotal, data.Currency), false)
	writeTotalRow(doc, "Frais de livraison", money(data.DeliveryFee, data.Currency), false)
	writeTotalRow(doc, "Total", money(data.Total, data.Currency), true)

	return output(doc)
}

// Receipt renders the payment receipt document and returns the PDF bytes.
func Receipt(data ReceiptData) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Reçu %s", data.OrderNumber), true)
	doc.AddPage()

	writeHeader(doc, data.Company, "REÇU DE PAIEMENT")

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, fmt.Sprintf("Commande: %s", data.OrderNumber), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Client: %s", data.CustomerName), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Date de paiement: %s", data.PaidAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Mode de paiement: %s", data.Method), "", 1, "L", false, 0, "")
	if data.Reference != "" {
		doc.CellFormat(0, 6, fmt.Sprintf("Référence: %s", data.Reference), "", 1, "L", false, 0, "")
	}
	doc.Ln(6)

	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 10, fmt.Sprintf("Montant payé: %s", money(data.Amount, data.Currency)), "1", 1, "C", false, 0, "")

	return output(doc)
}

func writeHeader(doc *fpdf.Fpdf, company CompanyInfo, title string) {
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 9, company.Name, "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	if company.Address != "" {
		doc.CellFormat(0, 5, company.Address, "", 1, "L", false, 0, "")
	}
	if company.Phone != "" {
		doc.CellFormat(0, 5, company.Phone, "", 1, "L", false, 0, "")
	}
	doc.Ln(4)
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	doc.Ln(2)
}

func writeTotalRow(doc *fpdf.Fpdf, label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	doc.SetFont("Helvetica", style, 10)
	doc.CellFormat(150, 7, label, "", 0, "R", false, 0, "")
	doc.CellFormat(40, 7, value, "", 1, "R", false, 0, "")
}

func money(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
}

func output(doc *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}
