package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreItem: consumables inventory held by the store (ribbons, toner,
// envelopes). Independent of the bank-card vault.
type StoreItem struct {
	ID                uint   `gorm:"primaryKey"`
	ItemName          string `gorm:"size:100;not null"`
	QuantityReceived  int    `gorm:"not null;default:0"`
	QuantityRequested int    `gorm:"not null;default:0"`
	CategoryID        *uint
	Category          *Category
	VendorID          *uint
	Vendor            *Vendor
	UnitPrice         decimal.Decimal `gorm:"type:numeric(12,2)"`
	Storekeeper       string          `gorm:"size:100"`
	Remarks           string          `gorm:"size:255"`
	IsConfirmed       bool            `gorm:"not null;default:false"`
	SeenBy            string          `gorm:"size:100"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (StoreItem) TableName() string { return "store_inventory" }
