package repositories

import (
	"context"
	"errors"

	"github.com/webshop-go/storefront/app/models"
	"gorm.io/gorm"
)

type CouponRepositoryImpl interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepositoryImpl {
	return &couponRepository{db}
}

// GetByCode looks a coupon up by its normalized code, categories preloaded.
// A missing code is (nil, nil): "not found" is a validation outcome, not a
// transport fault.
func (c *couponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := c.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Preload("Categories").
		Where("code = ?", models.NormalizeCouponCode(code)).
		First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}
