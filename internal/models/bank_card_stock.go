package models

import "time"

// BankCardStock: per-bank, per-brand card counts across the vault and
// personalization buckets. One row per (bank, card_brand); counters never
// go below zero. Counters are only moved by stock intake and by
// reconciliation, never by a release.
type BankCardStock struct {
	ID                     uint   `gorm:"primaryKey"`
	BankID                 uint   `gorm:"not null;uniqueIndex:idx_bank_cards_bank_brand"`
	Bank                   Bank   `gorm:"foreignKey:BankID"`
	CardBrand              string `gorm:"size:50;not null;uniqueIndex:idx_bank_cards_bank_brand"`
	QtyInVaultGood         int    `gorm:"not null;default:0"`
	QtyInVaultDamaged      int    `gorm:"not null;default:0"`
	Personalized           int    `gorm:"not null;default:0"`
	OngoingPersonalization int    `gorm:"not null;default:0"`
	Duplicate              int    `gorm:"not null;default:0"`
	SubmittedBy            string `gorm:"size:100"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (BankCardStock) TableName() string { return "bank_cards" }
