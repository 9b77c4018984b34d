package catalog

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{
	"ID", "Name", "Price", "Category", "Description", "Image", "Featured", "Stock", "CreatedAt",
}

// WriteXLSX writes products as a single-sheet workbook.
func WriteXLSX(w io.Writer, products []Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		headerRow.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetFloat(p.Price)
		row.AddCell().SetString(p.Category)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.ImageURL)
		row.AddCell().SetBool(p.Featured)
		row.AddCell().SetInt(p.Stock)
		created := ""
		if !p.CreatedAt.IsZero() {
			created = p.CreatedAt.Format("2006-01-02 15:04:05")
		}
		row.AddCell().SetString(created)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
