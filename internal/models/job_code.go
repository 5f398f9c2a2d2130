package models

import "time"

// JobCode: canonical job identifier, scoped to a bank. JobID is the
// facility-assigned code ("JC1023"), unique per bank.
type JobCode struct {
	ID        uint   `gorm:"primaryKey"`
	JobID     string `gorm:"size:50;not null;index"`
	BankID    uint   `gorm:"index;not null"`
	Bank      Bank   `gorm:"foreignKey:BankID"`
	Quantity  int    `gorm:"not null"`
	Processed bool   `gorm:"not null;default:false"`
	Priority  int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (JobCode) TableName() string { return "job_code" }
