package models

import "github.com/shopspring/decimal"

// LineItem is one product reference plus a quantity inside a cart. The
// product is read-through state: price and stock come from the catalog at
// recompute time, never from a stored snapshot.
type LineItem struct {
	ProductID string
	Product   *Product
	Quantity  int
}

func (li *LineItem) LineTotal() decimal.Decimal {
	if li.Product == nil {
		return decimal.Zero
	}
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Totals are the derived monetary fields of a cart. They are recomputed from
// the line items and the applied coupon on every mutation, never stored
// independently of their inputs.
type Totals struct {
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

// AppliedCoupon caches the discount rule of a validated coupon so totals can
// be recomputed on every mutation without another coupon lookup. The minimum
// purchase and category scope stay part of the discount function; the
// temporal and usage checks do not — those run only on apply and on restore.
type AppliedCoupon struct {
	Code        string
	Kind        CouponKind
	Value       decimal.Decimal
	MinPurchase decimal.NullDecimal
	Categories  []string
}

// Cart holds the line items (unique by product, insertion order), the applied
// coupon code and the derived totals.
type Cart struct {
	Items             []LineItem
	AppliedCouponCode string
	Totals
}

// ItemCount is the sum of quantities over all line items.
func (c *Cart) ItemCount() int {
	count := 0
	for i := range c.Items {
		count += c.Items[i].Quantity
	}
	return count
}

// CartSnapshot is the persisted form of a cart: product references and the
// coupon code only. Prices, stock and discounts are re-resolved on load.
type CartSnapshot struct {
	Items             []SnapshotItem `json:"items"`
	AppliedCouponCode string         `json:"applied_coupon_code,omitempty"`
}

type SnapshotItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (s *CartSnapshot) IsEmpty() bool {
	return len(s.Items) == 0 && s.AppliedCouponCode == ""
}
