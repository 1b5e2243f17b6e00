package services

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Hsnnder/real-estatemvp/internal/models"
)

const exportSheetName = "İlanlar"

// WriteListingsXLSX writes listings as a workbook whose columns follow the sheet layout.
func WriteListingsXLSX(w io.Writer, listings []models.Listing) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return fmt.Errorf("failed to name export sheet: %w", err)
	}

	header := append([]string(nil), models.ListingHeader...)
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for i := range listings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := listings[i].Row()
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write export row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze export header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write export workbook: %w", err)
	}
	return nil
}
