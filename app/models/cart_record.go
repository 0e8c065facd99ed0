package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRecord is the durable remote form of a cart, keyed by authenticated
// identity. It stores product references and the coupon code only; a "no
// cart" state is represented by the absence of the record, not by an empty
// one.
type CartRecord struct {
	IdentityID        string           `gorm:"size:36;not null;uniqueIndex;primary_key"`
	AppliedCouponCode string           `gorm:"size:50"`
	Items             []CartRecordItem `gorm:"foreignKey:IdentityID;references:IdentityID"`
	UpdatedAt         time.Time
}

type CartRecordItem struct {
	ID         string `gorm:"size:36;not null;uniqueIndex;primary_key"`
	IdentityID string `gorm:"size:36;index"`
	ProductID  string `gorm:"size:36;not null"`
	Quantity   int    `gorm:"not null"`
	Position   int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
}

func (i *CartRecordItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return
}
