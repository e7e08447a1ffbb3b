package service

import (
	"fmt"
	"strings"

	"holyfit-backend/internal/domains/catalog/model"

	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Products"

var exportHeaders = []string{
	"ID",
	"Name",
	"Category",
	"Brand",
	"Price",
	"Original Price",
	"In Stock",
	"Rating",
	"Review Count",
	"Tags",
	"Variants",
	"Created At",
}

func (s *CatalogService) ExportExcel(filter model.FilterState) (*excelize.File, error) {
	products, err := s.Search(filter)
	if err != nil {
		return nil, err
	}

	f, err := buildProductsExcelFile(products)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, nil
}

func buildProductsExcelFile(products []model.Product) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	for colIdx, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
		_ = f.SetCellStyle(exportSheetName, "A1", lastCol+"1", headerStyle)
	}

	for i, p := range products {
		row := i + 2
		values := []interface{}{
			p.ID,
			p.Name,
			p.Category.Name,
			p.Brand,
			p.Price.InexactFloat64(),
			nil,
			p.InStock,
			p.RatingValue(),
			p.ReviewCount,
			strings.Join(p.Tags, ", "),
			formatVariants(p.Variants),
			p.CreatedAt.Format("2006-01-02"),
		}
		if p.OriginalPrice != nil {
			values[5] = p.OriginalPrice.InexactFloat64()
		}

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func formatVariants(variants []model.ProductVariant) string {
	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		part := v.Type + ":" + v.Value
		if !v.PriceModifier.IsZero() {
			part += " (" + v.PriceModifier.StringFixed(2) + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
