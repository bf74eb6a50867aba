package ordering

import (
	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// TipOptions are the only tip percentages offered at checkout.
var TipOptions = []int{0, 5, 10, 15}

// UnitPrice computes the price of a single unit: the effective base
// price (discounted when applicable) plus every selected modifier delta.
// Selections that do not resolve against the product contribute nothing.
func UnitPrice(product models.Product, sel Selection) decimal.Decimal {
	total := product.EffectivePrice()
	for _, group := range product.ModifierGroups {
		for _, optionID := range sel[group.ID] {
			if opt := group.FindOption(optionID); opt != nil {
				total = total.Add(opt.Price)
			}
		}
	}
	return total
}

// Totals is the order summary presented at checkout. Values are exact;
// rounding to two decimals happens only when formatting for display.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TipPercent int             `json:"tipPercent"`
	Tip        decimal.Decimal `json:"tip"`
	Total      decimal.Decimal `json:"total"`
}

// ValidTipPercent reports whether pct is one of the offered tip choices.
func ValidTipPercent(pct int) bool {
	for _, opt := range TipOptions {
		if pct == opt {
			return true
		}
	}
	return false
}

// ComputeTotals sums the cart and applies the tip percentage.
func ComputeTotals(cart Cart, tipPercent int) Totals {
	subtotal := decimal.Zero
	for _, item := range cart {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	tip := subtotal.Mul(decimal.NewFromInt(int64(tipPercent))).Div(decimal.NewFromInt(100))
	return Totals{
		Subtotal:   subtotal,
		TipPercent: tipPercent,
		Tip:        tip,
		Total:      subtotal.Add(tip),
	}
}
