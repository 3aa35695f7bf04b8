package models

import "time"

// MaterialStock: Bir departmanın bir malzemeden elindeki miktar.
// (department, material) çifti tekildir; onaylanan talepler bu kaydın
// quantity alanından düşer.
type MaterialStock struct {
	ID           uint `gorm:"primaryKey"`
	DepartmentID uint `gorm:"not null;uniqueIndex:idx_department_material"`
	Department   Department
	MaterialID   uint `gorm:"not null;uniqueIndex:idx_department_material"`
	Material     Material
	Quantity     int `gorm:"not null"`
	// QuantitySafety: Stok uyarı eşiği. Sert bir alt sınır değil,
	// quantity bunun altına düşünce kayıt "uyarı" durumuna geçer.
	QuantitySafety int `gorm:"not null;default:0"`
	CreatorID      *uint
	Creator        *User
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BelowSafety: quantity uyarı eşiğinin altında mı?
func (s *MaterialStock) BelowSafety() bool {
	return s.Quantity < s.QuantitySafety
}

// StockStatus: Listeleme filtresi için türetilmiş durum (warning | normal).
func (s *MaterialStock) StockStatus() string {
	if s.BelowSafety() {
		return "warning"
	}
	return "normal"
}

func (s *MaterialStock) AuditEntityType() string { return "material_stock" }
func (s *MaterialStock) AuditEntityID() uint     { return s.ID }
func (s *MaterialStock) CreatorUserID() *uint    { return s.CreatorID }
