package models

import "time"

type UserRole string

const (
	RoleSuperAdmin    UserRole = "super_admin"
	RoleMaterialAdmin UserRole = "material_admin"
	RoleMember        UserRole = "member"
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	DepartmentID *uint
	Department   *Department
	Username     string   `gorm:"size:50;uniqueIndex;not null"` // sicil numarası (Excel içe aktarmada "Oluşturan" kolonu bununla eşleşir)
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
