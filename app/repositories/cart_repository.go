package repositories

import (
	"context"
	"errors"
	"sort"

	"github.com/webshop-go/storefront/app/models"
	"gorm.io/gorm"
)

// CartRepositoryImpl is the durable remote cart store, keyed by authenticated
// identity. Saves overwrite the whole document; deletes represent the "no
// cart" state by absence.
type CartRepositoryImpl interface {
	Load(ctx context.Context, identityID string) (*models.CartSnapshot, error)
	Save(ctx context.Context, identityID string, snap models.CartSnapshot) error
	Delete(ctx context.Context, identityID string) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepositoryImpl {
	return &cartRepository{db}
}

func (r *cartRepository) Load(ctx context.Context, identityID string) (*models.CartSnapshot, error) {
	var record models.CartRecord
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("identity_id = ?", identityID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(record.Items, func(i, j int) bool {
		return record.Items[i].Position < record.Items[j].Position
	})

	snap := &models.CartSnapshot{AppliedCouponCode: record.AppliedCouponCode}
	for _, item := range record.Items {
		snap.Items = append(snap.Items, models.SnapshotItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return snap, nil
}

// Save replaces the stored cart wholesale inside one transaction. There is no
// field-level patching, so a single writer can never leave a half-updated
// document behind.
func (r *cartRepository) Save(ctx context.Context, identityID string, snap models.CartSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identity_id = ?", identityID).Delete(&models.CartRecordItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("identity_id = ?", identityID).Delete(&models.CartRecord{}).Error; err != nil {
			return err
		}

		record := models.CartRecord{
			IdentityID:        identityID,
			AppliedCouponCode: snap.AppliedCouponCode,
		}
		for i, item := range snap.Items {
			record.Items = append(record.Items, models.CartRecordItem{
				IdentityID: identityID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				Position:   i,
			})
		}
		return tx.Create(&record).Error
	})
}

func (r *cartRepository) Delete(ctx context.Context, identityID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identity_id = ?", identityID).Delete(&models.CartRecordItem{}).Error; err != nil {
			return err
		}
		return tx.Where("identity_id = ?", identityID).Delete(&models.CartRecord{}).Error
	})
}
