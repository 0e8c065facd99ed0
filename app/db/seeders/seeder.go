package seeders

import (
	"gorm.io/gorm"

	"github.com/webshop-go/storefront/app/db/fakers"
)

// DBSeed fills the database with a demo catalog, a handful of coupons and a
// demo login.
func DBSeed(db *gorm.DB) error {
	books := fakers.CategoryFaker("Books")
	games := fakers.CategoryFaker("Games")
	home := fakers.CategoryFaker("Home")
	for _, category := range []interface{}{books, games, home} {
		if err := db.Create(category).Error; err != nil {
			return err
		}
	}

	for i := 0; i < 8; i++ {
		if err := db.Create(fakers.ProductFaker(*books)).Error; err != nil {
			return err
		}
	}
	for i := 0; i < 8; i++ {
		if err := db.Create(fakers.ProductFaker(*games)).Error; err != nil {
			return err
		}
	}
	for i := 0; i < 4; i++ {
		if err := db.Create(fakers.ProductFaker(*home)).Error; err != nil {
			return err
		}
	}

	coupons := []interface{}{
		fakers.PercentageCoupon("SAVE10", 10),
		fakers.PercentageCoupon("BOOKWORM", 15, *books),
		fakers.FixedCoupon("WELCOME5", "5.00", "50.00"),
		fakers.ExpiredCoupon("LASTYEAR"),
	}
	for _, coupon := range coupons {
		if err := db.Create(coupon).Error; err != nil {
			return err
		}
	}

	if err := db.Create(fakers.DemoUser()).Error; err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if err := db.Create(fakers.UserFaker()).Error; err != nil {
			return err
		}
	}
	return nil
}
