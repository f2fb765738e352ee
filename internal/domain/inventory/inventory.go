// Package inventory implements the medicine stock rules applied when a
// treatment is recorded.
package inventory

import (
	"math"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// LowStockThreshold is the quantity at or below which a medicine is flagged.
const LowStockThreshold = 10.0

// ApplyTreatment returns the stock left after dispensing dosage. The result
// is clamped at zero: an overdrawing treatment is still recorded, the stock
// simply cannot go negative.
func ApplyTreatment(quantity, dosage float64) float64 {
	return math.Max(0, quantity-dosage)
}

// Overdraws reports whether dispensing dosage would exceed the stock.
func Overdraws(quantity, dosage float64) bool {
	return dosage > quantity
}

// IsLowStock reports whether quantity is at or below the low stock threshold.
func IsLowStock(quantity float64) bool {
	return quantity <= LowStockThreshold
}

// ValidateDosage rejects non-positive or non-finite dosages.
func ValidateDosage(dosage float64) error {
	if math.IsNaN(dosage) || math.IsInf(dosage, 0) || dosage <= 0 {
		return models.Invalid("dosage", "must be greater than zero")
	}
	return nil
}

// ValidateQuantity rejects negative or non-finite stock levels.
func ValidateQuantity(quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity < 0 {
		return models.Invalid("quantity_remaining", "must not be negative")
	}
	return nil
}
