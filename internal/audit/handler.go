package audit

import (
	"fmt"

	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID         uint               `json:"id"`
	CreatedAt  string             `json:"created_at"`
	UserID     uint               `json:"user_id"`
	UserName   string             `json:"user_name"`
	EntityType string             `json:"entity_type"`
	EntityID   uint               `json:"entity_id"`
	Action     models.AuditAction `json:"action"`
	Content    string             `json:"content"`
}

// GET /api/audit-logs?entity_type=material_stock&entity_id=1&user_id=2&action=create
// Günlük salt okunur: ekleme/değiştirme/silme endpoint'i yok.
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityType := c.Query("entity_type")
		entityIDStr := c.Query("entity_id")
		userIDStr := c.Query("user_id")
		action := c.Query("action")

		dbq := database.DB.Model(&models.AuditLog{})

		if userIDStr != "" {
			var uid uint
			if _, err := fmt.Sscan(userIDStr, &uid); err == nil && uid > 0 {
				dbq = dbq.Where("user_id = ?", uid)
			}
		}

		if entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}

		if entityIDStr != "" {
			var eid uint
			if _, err := fmt.Sscan(entityIDStr, &eid); err == nil && eid > 0 {
				dbq = dbq.Where("entity_id = ?", eid)
			}
		}

		if action != "" {
			dbq = dbq.Where("action = ?", action)
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC").Limit(500).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:         l.ID,
				CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:     l.UserID,
				UserName:   l.UserName,
				EntityType: l.EntityType,
				EntityID:   l.EntityID,
				Action:     l.Action,
				Content:    l.Content,
			})
		}

		return c.JSON(resp)
	}
}
