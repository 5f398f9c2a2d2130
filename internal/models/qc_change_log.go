package models

import "time"

// QcChangeLog: record of a manual edit to QC numbers, written from the
// confirm dialog before the change is applied.
type QcChangeLog struct {
	ID           uint   `gorm:"primaryKey"`
	BankID       uint   `gorm:"index;not null"`
	UserID       uint   `gorm:"not null"`
	ChangedField string `gorm:"size:50;not null"`
	OldValue     string `gorm:"size:100"`
	NewValue     string `gorm:"size:100"`
	Reason       string `gorm:"size:255"`
	ChangeDate   time.Time `gorm:"index;not null"`
}
