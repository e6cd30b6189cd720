package catalog

import (
	"fmt"

	"github.com/360EntSecGroup-Skylar/excelize"
)

// BuildComparisonWorkbook renders a comparison result as an xlsx
// workbook for download.
func BuildComparisonWorkbook(result *ComparisonResult) *excelize.File {
	f := excelize.NewFile()
	const sheet = "Sheet1"

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s %s (%s %s)",
		result.Product.Brand, result.Product.Name,
		result.Product.PackageSize.String(), result.Product.PackageUnit))

	headers := []string{"Shop", "Location", "Raw Price", "Effective Price", "Normalized Price", "Standard Unit", "Currency", "In Stock"}
	for i, h := range headers {
		cell := fmt.Sprintf("%s3", string(rune('A'+i)))
		f.SetCellValue(sheet, cell, h)
	}

	for i, quote := range result.Quotes {
		row := i + 4
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), quote.ShopName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), quote.ShopLocation)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), quote.RawPrice.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), quote.EffectivePrice.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), quote.NormalizedPrice.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), quote.StandardUnit)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), quote.Currency)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), quote.InStock)
	}

	statsRow := len(result.Quotes) + 5
	f.SetCellValue(sheet, fmt.Sprintf("A%d", statsRow), "Min")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", statsRow), result.Stats.Min)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", statsRow+1), "Max")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", statsRow+1), result.Stats.Max)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", statsRow+2), "Average")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", statsRow+2), result.Stats.Avg)

	return f
}
