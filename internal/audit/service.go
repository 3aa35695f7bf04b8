package audit

import (
	"fmt"
	"log"

	"material-backend/internal/database"
	"material-backend/internal/models"
)

type LogOptions struct {
	UserID     uint
	UserName   string
	EntityType string
	EntityID   uint
	Action     models.AuditAction
	Content    string
}

func WriteLog(opts LogOptions) error {
	entry := models.AuditLog{
		UserID:     opts.UserID,
		UserName:   opts.UserName,
		EntityType: opts.EntityType,
		EntityID:   opts.EntityID,
		Action:     opts.Action,
		Content:    opts.Content,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// Record: Bir varlık üzerindeki create/update/delete işlemini günlüğe yazar.
// Kayıt, varlığın oluşturan kullanıcısına atfedilir; oluşturanı çözülemeyen
// varlıklar sessizce atlanır. Günlük yazımı asıl işlemi asla geriye almaz:
// hata olursa sadece loglanır.
func Record(action models.AuditAction, entity models.Auditable) {
	hc, ok := entity.(models.HasCreator)
	if !ok {
		return
	}
	userIDPtr := hc.CreatorUserID()
	if userIDPtr == nil || *userIDPtr == 0 {
		return
	}

	userName := ""
	var user models.User
	if err := database.DB.First(&user, "id = ?", *userIDPtr).Error; err == nil {
		userName = user.Name
	}

	err := WriteLog(LogOptions{
		UserID:     *userIDPtr,
		UserName:   userName,
		EntityType: entity.AuditEntityType(),
		EntityID:   entity.AuditEntityID(),
		Action:     action,
		Content:    fmt.Sprintf("%s id %d was %s", entity.AuditEntityType(), entity.AuditEntityID(), pastTense(action)),
	})
	if err != nil {
		log.Printf("Audit log yazılamadı (%s id %d): %v", entity.AuditEntityType(), entity.AuditEntityID(), err)
	}
}

func pastTense(action models.AuditAction) string {
	switch action {
	case models.AuditActionCreate:
		return "created"
	case models.AuditActionUpdate:
		return "updated"
	case models.AuditActionDelete:
		return "deleted"
	}
	return string(action)
}
