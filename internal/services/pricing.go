package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vitcanteen/canteen-backend/internal/models"
)

// totalTolerance absorbs client-side float rounding.
var totalTolerance = decimal.NewFromFloat(0.01)

// Pricing recomputes order totals from the item snapshot.
type Pricing struct {
	taxRate decimal.Decimal
}

func NewPricing(taxRate string) (*Pricing, error) {
	rate, err := decimal.NewFromString(taxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rate %q: %w", taxRate, err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("invalid tax rate %q: must not be negative", taxRate)
	}
	return &Pricing{taxRate: rate}, nil
}

func (p *Pricing) Subtotal(items []models.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Total is subtotal plus tax, rounded to two places.
func (p *Pricing) Total(items []models.LineItem) decimal.Decimal {
	sub := p.Subtotal(items)
	return sub.Add(sub.Mul(p.taxRate)).Round(2)
}

// Matches reports whether a client-supplied total agrees with the recomputed
// one within a cent.
func (p *Pricing) Matches(items []models.LineItem, total float64) bool {
	diff := p.Total(items).Sub(decimal.NewFromFloat(total)).Abs()
	return diff.LessThanOrEqual(totalTolerance)
}
