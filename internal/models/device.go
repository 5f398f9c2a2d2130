package models

import "time"

// Device: a personalization/encoding machine on the floor.
type Device struct {
	ID         uint   `gorm:"primaryKey;column:device_id"`
	DeviceName string `gorm:"size:100;not null"`
	Location   string `gorm:"size:100"`
	IsActive   bool   `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Device) TableName() string { return "devices" }
