package device

import (
	"errors"
	"strings"

	"material-backend/internal/audit"
	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DeviceTypeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Model       string `json:"model"`
	Notes       string `json:"notes"`
	CreatorName string `json:"creator_name"`
	CreatedAt   string `json:"created_at"`
}

type CreateDeviceTypeRequest struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Notes string `json:"notes"`
}

type UpdateDeviceTypeRequest struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`
}

func toDeviceTypeResponse(t *models.DeviceType) DeviceTypeResponse {
	return DeviceTypeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Model:       t.Model,
		Notes:       t.Notes,
		CreatorName: t.Creator.Name,
		CreatedAt:   t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/admin/device-types
func CreateDeviceTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateDeviceTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Model = strings.TrimSpace(body.Model)
		if body.Name == "" || body.Model == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Cihaz adı ve modeli zorunlu")
		}

		dt := models.DeviceType{
			Name:      body.Name,
			Model:     body.Model,
			Notes:     body.Notes,
			CreatorID: actor.UserID,
		}

		if err := database.DB.Create(&dt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Bu model zaten kayıtlı: "+dt.Model)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Cihaz türü oluşturulamadı")
		}

		audit.Record(models.AuditActionCreate, &dt)

		dt.Creator = models.User{Name: actor.UserName}
		return c.Status(fiber.StatusCreated).JSON(toDeviceTypeResponse(&dt))
	}
}

// GET /api/device-types
func ListDeviceTypesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var types []models.DeviceType
		if err := database.DB.Preload("Creator").Order("name, model").Find(&types).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cihaz türleri listelenemedi")
		}

		res := make([]DeviceTypeResponse, 0, len(types))
		for i := range types {
			res = append(res, toDeviceTypeResponse(&types[i]))
		}

		return c.JSON(res)
	}
}

// PUT /api/admin/device-types/:id
// Model değiştirilemez: cihaz kayıtları bu anahtara bağlı.
func UpdateDeviceTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var dt models.DeviceType
		if err := database.DB.Preload("Creator").First(&dt, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cihaz türü bulunamadı")
		}

		var body UpdateDeviceTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Cihaz adı boş olamaz")
			}
			dt.Name = name
		}
		if body.Notes != nil {
			dt.Notes = *body.Notes
		}

		if err := database.DB.Save(&dt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cihaz türü güncellenemedi")
		}

		audit.Record(models.AuditActionUpdate, &dt)

		return c.JSON(toDeviceTypeResponse(&dt))
	}
}

// DELETE /api/admin/device-types/:id
func DeleteDeviceTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var dt models.DeviceType
		if err := database.DB.First(&dt, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cihaz türü bulunamadı")
		}

		var deviceCount int64
		database.DB.Model(&models.DepartmentDevice{}).Where("device_type_id = ?", dt.ID).Count(&deviceCount)
		if deviceCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu türe bağlı cihazlar var, silinemez")
		}

		if err := database.DB.Delete(&dt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cihaz türü silinemedi")
		}

		audit.Record(models.AuditActionDelete, &dt)

		return c.JSON(fiber.Map{"message": "Cihaz türü silindi"})
	}
}
