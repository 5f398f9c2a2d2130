package models

import "time"

// ReleasedCard: one batch of cards released from vault stock to a job.
// CardIssueID stays nil unless the release was matched against an already
// reported issue. The row is mutated exactly once, when reconciliation
// marks it processed.
type ReleasedCard struct {
	ID          uint          `gorm:"primaryKey"`
	CardIssueID *uint         `gorm:"index"`
	JobCodeID   uint          `gorm:"index;not null"`
	JobCode     JobCode       `gorm:"foreignKey:JobCodeID"`
	BankCardID  uint          `gorm:"index;not null"`
	BankCard    BankCardStock `gorm:"foreignKey:BankCardID"`
	Quantity    int           `gorm:"not null"`
	ReleasedBy  string        `gorm:"size:100;not null"`
	Reference   string        `gorm:"size:36;index"` // shared by all rows of one release request
	ReleasedAt  time.Time     `gorm:"index;not null"`
	Processed   bool          `gorm:"not null;default:false"`
	ProcessedAt *time.Time
}

func (ReleasedCard) TableName() string { return "released_cards" }
