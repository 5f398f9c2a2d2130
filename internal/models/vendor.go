package models

import "time"

type Vendor struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;uniqueIndex"`
	Email     string `gorm:"size:100"`
	Phone     string `gorm:"size:30"`
	CreatedAt time.Time
}
