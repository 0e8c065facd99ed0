package calc

import (
	"github.com/shopspring/decimal"
	"github.com/webshop-go/storefront/app/configs"
	"github.com/webshop-go/storefront/app/models"
)

var hundred = decimal.NewFromInt(100)

// ComputeTotals derives all monetary fields of a cart from its line items and
// the applied coupon, if any. Pure and deterministic: quantities and prices
// are sanitized upstream, so there are no error conditions here.
func ComputeTotals(items []models.LineItem, coupon *models.AppliedCoupon, cfg configs.PricingConfig) models.Totals {
	subtotal := Subtotal(items)

	shipping := decimal.Zero
	if len(items) > 0 && subtotal.LessThan(cfg.FreeShippingMinimum) {
		shipping = cfg.FlatShippingFee
	}

	discount := couponDiscount(items, coupon)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	total := subtotal.Add(shipping).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return models.Totals{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Discount:    discount,
		Total:       total,
	}
}

// Subtotal is the sum of price times quantity over all line items.
func Subtotal(items []models.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for i := range items {
		sum = sum.Add(items[i].LineTotal())
	}
	return sum
}

// DiscountBase is the slice of the subtotal a coupon may discount. A coupon
// without category restrictions applies to the whole subtotal; a
// category-scoped coupon counts only line items whose product carries one of
// the coupon's categories. The same base is used for minimum-purchase
// eligibility.
func DiscountBase(items []models.LineItem, categoryIDs []string) decimal.Decimal {
	if len(categoryIDs) == 0 {
		return Subtotal(items)
	}

	allowed := make(map[string]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		allowed[id] = true
	}

	base := decimal.Zero
	for i := range items {
		if items[i].Product == nil {
			continue
		}
		for _, category := range items[i].Product.Categories {
			if allowed[category.ID] {
				base = base.Add(items[i].LineTotal())
				break
			}
		}
	}
	return base
}

// couponDiscount applies the cached discount rule. The minimum purchase is
// part of the rule: when the eligible base falls under it the discount
// recomputes to zero while the coupon stays applied. A fixed discount never
// exceeds the eligible base, so a category-scoped coupon cannot discount
// lines outside its scope.
func couponDiscount(items []models.LineItem, coupon *models.AppliedCoupon) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	base := DiscountBase(items, coupon.Categories)
	if coupon.MinPurchase.Valid && base.LessThan(coupon.MinPurchase.Decimal) {
		return decimal.Zero
	}
	switch coupon.Kind {
	case models.CouponKindPercentage:
		return base.Mul(coupon.Value).Div(hundred)
	case models.CouponKindFixed:
		if coupon.Value.GreaterThan(base) {
			return base
		}
		return coupon.Value
	default:
		return decimal.Zero
	}
}
