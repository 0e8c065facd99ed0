package migrations

import (
	"github.com/webshop-go/storefront/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}, &models.Coupon{}, &models.CartRecord{}, &models.CartRecordItem{})
}
