package order

import (
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{
	"ID", "Customer", "Phone", "City", "Address", "Items", "Total", "Status", "CreatedAt", "UpdatedAt",
}

// WriteXLSX writes orders as a single-sheet workbook.
func WriteXLSX(w io.Writer, orders []AdminOrder) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		headerRow.AddCell().SetString(h)
	}

	for _, o := range orders {
		items := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, fmt.Sprintf("%s x%g", it.Name, it.Quantity))
		}

		row := sheet.AddRow()
		row.AddCell().SetString(o.ID)
		row.AddCell().SetString(o.CustomerName)
		row.AddCell().SetString(o.PhoneNumber)
		row.AddCell().SetString(o.City)
		row.AddCell().SetString(o.Address)
		row.AddCell().SetString(strings.Join(items, ", "))
		row.AddCell().SetFloat(o.Total)
		row.AddCell().SetString(o.Status)
		row.AddCell().SetString(o.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(o.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
