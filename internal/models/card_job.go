package models

import "time"

// CardJob: one card-encoding run reported by a machine.
type CardJob struct {
	ID           uint   `gorm:"primaryKey"`
	JobCode      string `gorm:"size:50;not null;index"`
	OperatorID   *uint
	Operator     *User `gorm:"foreignKey:OperatorID"`
	BankID       uint  `gorm:"index;not null"`
	Bank         Bank  `gorm:"foreignKey:BankID"`
	CardQuantity int   `gorm:"not null"`
	CardType     string `gorm:"size:50;not null"`
	DeviceID     *uint
	Device       *Device `gorm:"foreignKey:DeviceID"`
	StartTime    *time.Time
	Shift        string `gorm:"size:20;not null;default:morning"`
	ReceivedTime *time.Time
	CompletedQty int     `gorm:"not null;default:0"`
	RejectedQty  int     `gorm:"not null;default:0"`
	ErrorCount   int     `gorm:"not null;default:0"`
	NdReport     *string `gorm:"size:255"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (CardJob) TableName() string { return "card_job" }
