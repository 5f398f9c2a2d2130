package models

import "time"

// MailerJob: one mailer-print run. JobID is the derived sequence id
// ("1023-2"); JobCode is the facility code it belongs to.
type MailerJob struct {
	ID           uint   `gorm:"primaryKey"`
	JobID        string `gorm:"size:50;not null;index"`
	JobCode      string `gorm:"size:50;not null;index"`
	BankID       uint   `gorm:"index;not null"`
	Bank         Bank   `gorm:"foreignKey:BankID"`
	UserID       *uint
	User         *User
	DeviceID     *uint
	Device       *Device `gorm:"foreignKey:DeviceID"`
	Shift        string  `gorm:"size:20"`
	Qty          int     `gorm:"not null;default:0"`
	CompletedQty int     `gorm:"not null;default:0"`
	RangeStart   string  `gorm:"size:50"`
	RangeEnd     string  `gorm:"size:50"`
	TonerStatus  string  `gorm:"size:50"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (MailerJob) TableName() string { return "jobs" }
