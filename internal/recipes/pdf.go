package recipes

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

// ShoppingListPDF renders the same lines as RenderShoppingList on A4 pages.
// The core fonts cover cp1252 only; other runes are replaced.
func ShoppingListPDF(items []ShoppingItem) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Shopping list")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	if len(items) == 0 {
		pdf.Cell(0, 8, "Your shopping cart is empty.")
		pdf.Ln(8)
	}
	for _, it := range items {
		pdf.Cell(0, 8, tr(it.String()))
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
