package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webshop-go/storefront/app/models"
	"github.com/webshop-go/storefront/app/utils/format"
)

// CouponFailure identifies why a promotional code was rejected. The check
// order in ValidateCoupon is part of the contract: callers display the first
// failing reason.
type CouponFailure string

const (
	CouponNotFound      CouponFailure = "not_found"
	CouponInactive      CouponFailure = "inactive"
	CouponNotYetValid   CouponFailure = "not_yet_valid"
	CouponExpired       CouponFailure = "expired"
	CouponUsageExceeded CouponFailure = "usage_exceeded"
	CouponMinimumNotMet CouponFailure = "minimum_not_met"
)

// CouponError is a recoverable validation failure carrying a user-facing
// message. Transport faults (coupon store unreachable) are ordinary errors,
// never a CouponError.
type CouponError struct {
	Reason  CouponFailure
	Message string
}

func (e *CouponError) Error() string { return e.Message }

// ValidateCoupon runs the full rule chain against a coupon, short-circuiting
// on the first failure: existence, active flag, validity window, usage limit,
// minimum purchase. eligibleSubtotal is the portion of the cart subtotal the
// coupon may count: the whole subtotal for unrestricted coupons, the matching
// line items only for category-scoped ones.
func ValidateCoupon(coupon *models.Coupon, eligibleSubtotal decimal.Decimal, now time.Time) (*models.AppliedCoupon, *CouponError) {
	if coupon == nil {
		return nil, &CouponError{CouponNotFound, "That coupon code does not exist."}
	}
	if !coupon.Active {
		return nil, &CouponError{CouponInactive, "This coupon is no longer active."}
	}
	if now.Before(coupon.StartDate) {
		return nil, &CouponError{CouponNotYetValid, "This coupon is not valid yet."}
	}
	if now.After(coupon.EndDate) {
		return nil, &CouponError{CouponExpired, "This coupon has expired."}
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return nil, &CouponError{CouponUsageExceeded, "This coupon has reached its usage limit."}
	}
	if coupon.MinPurchase.Valid && eligibleSubtotal.LessThan(coupon.MinPurchase.Decimal) {
		shortfall := coupon.MinPurchase.Decimal.Sub(eligibleSubtotal)
		return nil, &CouponError{
			Reason: CouponMinimumNotMet,
			Message: fmt.Sprintf("Add %s more to use this coupon (minimum purchase %s).",
				format.Money(shortfall), format.Money(coupon.MinPurchase.Decimal)),
		}
	}

	return &models.AppliedCoupon{
		Code:        coupon.Code,
		Kind:        coupon.Kind,
		Value:       coupon.Value,
		MinPurchase: coupon.MinPurchase,
		Categories:  coupon.CategoryIDs(),
	}, nil
}
