package sheets

import (
	"context"
	"fmt"
)

const (
	MilkingRange       = "Milking!A:F"
	milkingHeaderRange = "Milking!A1:F1"
)

// MilkingHeader is written once, above the first exported row.
var MilkingHeader = []interface{}{"date", "farm", "total_liters", "morning_liters", "afternoon_liters", "evening_liters"}

// MilkingExporter writes the daily per-farm milking totals.
type MilkingExporter struct {
	repo Repository
}

func NewMilkingExporter(repo Repository) *MilkingExporter {
	return &MilkingExporter{repo: repo}
}

// Export appends rows, writing the header first when the sheet is empty.
func (e *MilkingExporter) Export(ctx context.Context, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	existing, err := e.repo.ReadRange(ctx, milkingHeaderRange)
	if err != nil {
		return fmt.Errorf("check milking header: %w", err)
	}
	if len(existing) == 0 {
		rows = append([][]interface{}{MilkingHeader}, rows...)
	}
	return e.repo.AppendRows(ctx, MilkingRange, rows)
}
