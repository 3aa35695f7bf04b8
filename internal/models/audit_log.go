package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog: Salt ekleme (append-only) işlem günlüğü. Kayıt oluşturulduktan
// sonra güncellenmez ve silinmez.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	UserID   uint   `gorm:"index;not null"`
	UserName string `gorm:"size:100"` // denormalize

	EntityType string `gorm:"size:50;index"`
	EntityID   uint   `gorm:"index"`

	Action AuditAction `gorm:"size:20;index"`

	// Ör: "material_stock id 12 was created"
	Content string `gorm:"size:255"`
}

// Auditable: İşlem günlüğüne yazılabilen varlıklar.
type Auditable interface {
	AuditEntityType() string
	AuditEntityID() uint
}

// HasCreator: Oluşturan kullanıcısı çözülebilen varlıklar. Günlük kaydı
// bu kullanıcıya atfedilir; arayüzü sağlamayan (ya da nil dönen)
// varlıklar için kayıt sessizce atlanır.
type HasCreator interface {
	CreatorUserID() *uint
}
