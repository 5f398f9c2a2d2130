package models

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleSupervisor UserRole = "supervisor"
	RoleOperator   UserRole = "operator"
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	DepartmentID *uint
	Department   *Department
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	Position     string   `gorm:"size:100"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
