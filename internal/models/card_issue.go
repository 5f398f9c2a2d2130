package models

import "time"

type IssueStatus string

const (
	IssueStatusDamaged   IssueStatus = "Damaged"
	IssueStatusDuplicate IssueStatus = "Duplicate"
)

// CardIssue: one defect event against a stock row and a job code.
// Rows are append-only; reconciliation creates them but never deletes.
type CardIssue struct {
	ID           uint          `gorm:"primaryKey"`
	BankCardID   uint          `gorm:"index;not null"`
	BankCard     BankCardStock `gorm:"foreignKey:BankCardID"`
	JobCodeID    uint          `gorm:"index;not null"`
	JobCode      JobCode       `gorm:"foreignKey:JobCodeID"`
	DamagedQty   int           `gorm:"not null;default:0"`
	DuplicateQty int           `gorm:"not null;default:0"`
	Remark       string        `gorm:"size:255"`
	SubmittedBy  string        `gorm:"size:100"`
	CardStatus   IssueStatus   `gorm:"size:20"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
