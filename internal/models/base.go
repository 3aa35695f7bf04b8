package models

import "time"

// Base: Yerleşke (tesis). Departmanlar bir yerleşkeye bağlıdır.
type Base struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	CreatorID uint   `gorm:"not null"`
	Creator   User
	CreatedAt time.Time

	Departments []Department
}

func (b *Base) AuditEntityType() string { return "base" }
func (b *Base) AuditEntityID() uint     { return b.ID }
func (b *Base) CreatorUserID() *uint    { return &b.CreatorID }
