package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product: a ledgered store product. CurrentBalance is denormalized and
// only touched by transaction updates; the authoritative history lives in
// the transactions table.
type Product struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:100;not null"`
	Unit           string `gorm:"size:20"`
	CategoryID     *uint
	Category       *Category
	VendorID       *uint
	Vendor         *Vendor
	UnitPrice      decimal.Decimal `gorm:"type:numeric(12,2)"`
	WaybillNumber  string          `gorm:"size:50"`
	PackageQty     int             `gorm:"column:package;not null;default:0"`
	PackagePerUnit int             `gorm:"not null;default:0"`
	CurrentBalance int             `gorm:"not null;default:0"`
	InjectionDate  *time.Time      `gorm:"type:date"`
	DeliveryDate   *time.Time      `gorm:"type:date"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
