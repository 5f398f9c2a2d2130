package models

import "time"

// QcEntry: one QC shift count for a bank on a date.
type QcEntry struct {
	ID          uint      `gorm:"primaryKey"`
	BankID      uint      `gorm:"index;not null"`
	Bank        Bank      `gorm:"foreignKey:BankID"`
	Shift       string    `gorm:"size:20;not null"` // day / night
	EntryDate   time.Time `gorm:"type:date;index;not null"`
	Quantity    int       `gorm:"not null"`
	Overtime    bool      `gorm:"not null;default:false"`
	OvertimeQty int       `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
