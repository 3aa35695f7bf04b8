package models

import "time"

type ApprovalStatus string

const (
	ApprovalStatusApproving ApprovalStatus = "approving"
	ApprovalStatusPassed    ApprovalStatus = "passed"
	ApprovalStatusNoPass    ApprovalStatus = "nopass"
)

// Terminal: passed ve nopass son durumlardır; karar verildikten sonra
// durum ve kalemler değiştirilemez.
func (s ApprovalStatus) Terminal() bool {
	return s == ApprovalStatusPassed || s == ApprovalStatusNoPass
}

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalStatusApproving, ApprovalStatusPassed, ApprovalStatusNoPass:
		return true
	}
	return false
}

// MaterialRequest: Bir departmanın malzeme talebi. Onaylanınca (passed)
// kalemlerdeki miktarlar ilgili stoklardan bir kez düşülür.
type MaterialRequest struct {
	ID            uint   `gorm:"primaryKey"`
	RequestNumber string `gorm:"size:20;uniqueIndex;not null"` // WLyyyymmddNNN, atandıktan sonra değişmez
	BaseID        uint   `gorm:"index;not null"`
	Base          Base
	DepartmentID  uint `gorm:"index;not null"`
	Department    Department
	Applicant     string `gorm:"size:50"`
	ApproverID    uint   `gorm:"index;not null"`
	Approver      MaterialAdmin
	ApprovalStatus ApprovalStatus `gorm:"size:20;not null;default:approving"`
	CreatorID      uint          `gorm:"not null"`
	Creator        User
	CreatedAt      time.Time
	Notes          string `gorm:"type:text"`

	Items []MaterialRequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

func (r *MaterialRequest) AuditEntityType() string { return "material_request" }
func (r *MaterialRequest) AuditEntityID() uint     { return r.ID }
func (r *MaterialRequest) CreatorUserID() *uint    { return &r.CreatorID }

// MaterialRequestItem: Talebin bir kalemi; bir stok kaydına ve istenen
// miktara işaret eder. Talep silinince kalemler de silinir.
type MaterialRequestItem struct {
	ID        uint `gorm:"primaryKey"`
	RequestID uint `gorm:"index;not null"`
	StockID   uint `gorm:"index;not null"`
	Stock     MaterialStock `gorm:"foreignKey:StockID"`
	Quantity  int           `gorm:"not null"`
}

func (i *MaterialRequestItem) AuditEntityType() string { return "material_request_item" }
func (i *MaterialRequestItem) AuditEntityID() uint     { return i.ID }
