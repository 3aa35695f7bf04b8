package models

import (
	"fmt"
	"time"
)

type MaterialType struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	CreatorID uint   `gorm:"not null"`
	Creator   User
	CreatedAt time.Time
	Notes     string `gorm:"type:text"`
}

func (t *MaterialType) AuditEntityType() string { return "material_type" }
func (t *MaterialType) AuditEntityID() uint     { return t.ID }
func (t *MaterialType) CreatorUserID() *uint    { return &t.CreatorID }

type Material struct {
	ID             uint `gorm:"primaryKey"`
	MaterialTypeID uint `gorm:"index;not null"`
	MaterialType   MaterialType
	Code           string `gorm:"size:100;not null;uniqueIndex:idx_material_code_model"`
	Model          string `gorm:"size:100;not null;uniqueIndex:idx_material_code_model"`
	Unit           string `gorm:"size:50;not null"` // adet, kg, kutu vs.
	Properties     string `gorm:"type:text"`
	CreatorID      uint   `gorm:"not null"`
	Creator        User
	CreatedAt      time.Time
	Notes          string `gorm:"type:text"`
}

// DisplayCode: "kod-model" gösterimi. Excel içe aktarmada malzeme bu anahtarla eşleşir.
func (m *Material) DisplayCode() string {
	return fmt.Sprintf("%s-%s", m.Code, m.Model)
}

func (m *Material) AuditEntityType() string { return "material" }
func (m *Material) AuditEntityID() uint     { return m.ID }
func (m *Material) CreatorUserID() *uint    { return &m.CreatorID }
