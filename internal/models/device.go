package models

import "time"

type DeviceType struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Model     string `gorm:"size:255;not null;unique"`
	CreatorID uint   `gorm:"not null"`
	Creator   User
	CreatedAt time.Time
	Notes     string `gorm:"type:text"`
}

func (t *DeviceType) AuditEntityType() string { return "device_type" }
func (t *DeviceType) AuditEntityID() uint     { return t.ID }
func (t *DeviceType) CreatorUserID() *uint    { return &t.CreatorID }

type DeviceStatus string

const (
	DeviceStatusNormal  DeviceStatus = "normal"
	DeviceStatusFault   DeviceStatus = "fault"
	DeviceStatusRepair  DeviceStatus = "repair"
	DeviceStatusNotUsed DeviceStatus = "not_used"
	DeviceStatusOther   DeviceStatus = "other"
)

func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceStatusNormal, DeviceStatusFault, DeviceStatusRepair, DeviceStatusNotUsed, DeviceStatusOther:
		return true
	}
	return false
}

// DepartmentDevice: Bir departmana yerleştirilmiş cihaz.
type DepartmentDevice struct {
	ID           uint `gorm:"primaryKey"`
	DeviceTypeID uint `gorm:"index;not null"`
	DeviceType   DeviceType
	Alias        string `gorm:"size:50"`
	DepartmentID uint   `gorm:"index;not null"`
	Department   Department
	Location     string       `gorm:"size:255"`
	DeviceStatus DeviceStatus `gorm:"size:20;not null;default:normal"`
	Notes        string       `gorm:"type:text"`
	CreatorID    uint         `gorm:"not null"`
	Creator      User
	CreatedAt    time.Time
}

func (d *DepartmentDevice) AuditEntityType() string { return "department_device" }
func (d *DepartmentDevice) AuditEntityID() uint     { return d.ID }
func (d *DepartmentDevice) CreatorUserID() *uint    { return &d.CreatorID }

type OperationStatus string

const (
	OperationStatusNormal   OperationStatus = "normal"
	OperationStatusAbnormal OperationStatus = "abnormal"
)

// EquipmentLog: Çevre ekipmanı çalışma kaydı (vardiya bazlı açma/kapama).
type EquipmentLog struct {
	ID           uint `gorm:"primaryKey"`
	DeviceID     uint `gorm:"index;not null"`
	Device       DepartmentDevice `gorm:"foreignKey:DeviceID"`
	DepartmentID uint             `gorm:"index;not null"`
	Department   Department
	Operator     string    `gorm:"size:255;not null"`
	StartTime    time.Time `gorm:"not null"`
	StopTime     time.Time `gorm:"not null"`
	OperationStatus   OperationStatus `gorm:"size:10;not null"`
	AbnormalCondition string          `gorm:"type:text"`
	ConsumableName    string          `gorm:"size:255"`
	ConsumableReplacedAt *time.Time
	Notes     string `gorm:"type:text"`
	CreatorID uint   `gorm:"not null"`
	Creator   User
	CreatedAt time.Time
}

func (l *EquipmentLog) AuditEntityType() string { return "equipment_log" }
func (l *EquipmentLog) AuditEntityID() uint     { return l.ID }
func (l *EquipmentLog) CreatorUserID() *uint    { return &l.CreatorID }
