package models

import "time"

type Department struct {
	ID        uint `gorm:"primaryKey"`
	BaseID    uint `gorm:"index;not null"`
	Base      Base
	Name      string `gorm:"size:100;not null"`
	CreatorID uint   `gorm:"not null"`
	Creator   User
	CreatedAt time.Time
}

func (d *Department) AuditEntityType() string { return "department" }
func (d *Department) AuditEntityID() uint     { return d.ID }
func (d *Department) CreatorUserID() *uint    { return &d.CreatorID }

// MaterialAdmin: Bir yerleşke+departman için atanmış malzeme yöneticisi.
// Talep onayları bu kayıtlardan birine yönlendirilir.
type MaterialAdmin struct {
	ID           uint `gorm:"primaryKey"`
	BaseID       uint `gorm:"index;not null"`
	Base         Base
	DepartmentID uint `gorm:"index;not null"`
	Department   Department
	UserID       uint `gorm:"index;not null"`
	User         User
	CreatorID    uint `gorm:"not null"`
	Creator      User
	CreatedAt    time.Time
}

func (m *MaterialAdmin) AuditEntityType() string { return "material_admin" }
func (m *MaterialAdmin) AuditEntityID() uint     { return m.ID }
func (m *MaterialAdmin) CreatorUserID() *uint    { return &m.CreatorID }
