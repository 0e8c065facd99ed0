package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CouponKind string

const (
	CouponKindPercentage CouponKind = "percentage"
	CouponKindFixed      CouponKind = "fixed"
)

// Coupon is a promotional code managed by the admin side and read-only from
// the cart's perspective. The cart validates a coupon, it never consumes one:
// UsageCount is incremented by order finalization.
type Coupon struct {
	ID          string              `gorm:"size:36;not null;uniqueIndex;primary_key"`
	Code        string              `gorm:"size:50;not null;uniqueIndex"`
	Kind        CouponKind          `gorm:"size:20;not null"`
	Value       decimal.Decimal     `gorm:"type:decimal(16,2);not null"`
	MinPurchase decimal.NullDecimal `gorm:"type:decimal(16,2)"`
	UsageLimit  *int
	UsageCount  int `gorm:"not null;default:0"`
	StartDate   time.Time
	EndDate     time.Time
	Categories  []Category `gorm:"many2many:coupon_categories;"`
	Active      bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// CategoryIDs lists the categories this coupon is scoped to. Empty means the
// coupon applies to the whole cart.
func (c *Coupon) CategoryIDs() []string {
	if len(c.Categories) == 0 {
		return nil
	}
	ids := make([]string, 0, len(c.Categories))
	for i := range c.Categories {
		ids = append(ids, c.Categories[i].ID)
	}
	return ids
}

// NormalizeCouponCode trims and upper-cases a user-supplied code. Codes are
// case-insensitive and stored normalized.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
