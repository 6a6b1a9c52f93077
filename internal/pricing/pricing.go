package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Active reports whether promo still applies on the calendar day of asOf.
// Both dates are compared in UTC and the expiry day itself is included.
func Active(promo *models.Promotion, asOf time.Time) bool {
	if promo == nil {
		return false
	}
	return !day(asOf).After(day(promo.ValidUntil))
}

// Discount returns the active discount percentage for p, or nil.
func Discount(p models.Product, asOf time.Time) *decimal.Decimal {
	if !Active(p.Promotion, asOf) {
		return nil
	}
	d := p.Promotion.Discount
	return &d
}

// EffectivePrice applies the product's promotion when it is active on asOf.
// Products are loaded with their Promotion association.
func EffectivePrice(p models.Product, asOf time.Time) decimal.Decimal {
	d := Discount(p, asOf)
	if d == nil || d.IsZero() {
		return p.Price
	}
	factor := hundred.Sub(*d).Div(hundred)
	return p.Price.Mul(factor).Round(2)
}

func LineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// ParseDate reads a YYYY-MM-DD calendar day as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}

func FormatDate(t time.Time) string {
	return day(t).Format(time.DateOnly)
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
