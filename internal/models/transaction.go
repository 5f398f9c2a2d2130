package models

import "time"

type TransactionType string

const (
	TransactionInjection TransactionType = "Injection"
	TransactionReturn    TransactionType = "Return"
	TransactionRelease   TransactionType = "Release"
	TransactionDamaged   TransactionType = "Damaged"
)

// Transaction: append-only store ledger event. Balance is snapshotted at
// insert time from the previous transaction of the same product; it is
// not recomputed when earlier rows are edited or removed.
type Transaction struct {
	ID              uint            `gorm:"primaryKey"`
	ProductID       uint            `gorm:"index;not null"`
	Product         Product         `gorm:"foreignKey:ProductID"`
	ProductName     string          `gorm:"size:100"`
	TransactionType TransactionType `gorm:"size:20;not null"`
	PackageQty      int             `gorm:"column:package;not null"`
	PackagePerUnit  int             `gorm:"not null;default:1"`
	VendorID        *uint
	Vendor          *Vendor
	WaybillNumber   string `gorm:"size:50"`
	StaffID         uint   `gorm:"not null"`
	Staff           User   `gorm:"foreignKey:StaffID"`
	DepartmentID    uint   `gorm:"not null"`
	Department      Department `gorm:"foreignKey:DepartmentID"`
	TransactionDate time.Time  `gorm:"index;not null"`
	Balance         int        `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
