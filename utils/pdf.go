package utils

import (
	"bytes"
	"fmt"

	"secondhand-market/models"

	"github.com/jung-kurt/gofpdf"
)

// ReceiptPDF renders a receipt as a downloadable PDF document
func ReceiptPDF(receipt models.Receipt) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Secondhand Market - Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Receipt ID: %s", receipt.ID.Hex()))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Order ID: %s", receipt.OrderID.Hex()))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Buyer: %s", receipt.BuyerName))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Payment Method: %s", receipt.PaymentMethod))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Date: %s", receipt.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	// Line items table
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(80, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Subtotal", "1", 0, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	for _, item := range receipt.Items {
		pdf.CellFormat(80, 8, item.Title, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("$%.2f", item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("$%.2f", item.Subtotal), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.CellFormat(135, 7, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, fmt.Sprintf("$%.2f", receipt.Subtotal), "", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.CellFormat(135, 7, "Shipping", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, fmt.Sprintf("$%.2f", receipt.Shipping), "", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.CellFormat(135, 7, "Tax", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, fmt.Sprintf("$%.2f", receipt.Tax), "", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(135, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, fmt.Sprintf("$%.2f", receipt.Total), "", 0, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt PDF: %w", err)
	}
	return &buf, nil
}
