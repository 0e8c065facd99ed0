package fakers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webshop-go/storefront/app/models"
)

func PercentageCoupon(code string, percent int64, categories ...models.Category) *models.Coupon {
	return &models.Coupon{
		ID:         uuid.New().String(),
		Code:       models.NormalizeCouponCode(code),
		Kind:       models.CouponKindPercentage,
		Value:      decimal.NewFromInt(percent),
		StartDate:  time.Now().AddDate(0, -1, 0),
		EndDate:    time.Now().AddDate(0, 6, 0),
		Categories: categories,
		Active:     true,
	}
}

func FixedCoupon(code string, amount, minPurchase string) *models.Coupon {
	value, _ := decimal.NewFromString(amount)
	minimum, _ := decimal.NewFromString(minPurchase)

	return &models.Coupon{
		ID:          uuid.New().String(),
		Code:        models.NormalizeCouponCode(code),
		Kind:        models.CouponKindFixed,
		Value:       value,
		MinPurchase: decimal.NewNullDecimal(minimum),
		StartDate:   time.Now().AddDate(0, -1, 0),
		EndDate:     time.Now().AddDate(0, 6, 0),
		Active:      true,
	}
}

func ExpiredCoupon(code string) *models.Coupon {
	return &models.Coupon{
		ID:        uuid.New().String(),
		Code:      models.NormalizeCouponCode(code),
		Kind:      models.CouponKindPercentage,
		Value:     decimal.NewFromInt(50),
		StartDate: time.Now().AddDate(-1, 0, 0),
		EndDate:   time.Now().AddDate(0, -1, 0),
		Active:    true,
	}
}
