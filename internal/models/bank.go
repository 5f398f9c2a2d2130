package models

import "time"

// Bank: client institution whose cards are personalized at the facility.
// Table and column names match the existing reporting SQL.
type Bank struct {
	ID        uint   `gorm:"primaryKey;column:bank_id"`
	BankName  string `gorm:"size:100;not null;uniqueIndex"`
	CreatedAt time.Time
}

func (Bank) TableName() string { return "bank" }
