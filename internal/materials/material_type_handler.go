package materials

import (
	"strings"

	"material-backend/internal/audit"
	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MaterialTypeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Notes       string `json:"notes"`
	CreatorName string `json:"creator_name"`
	CreatedAt   string `json:"created_at"`
}

type CreateMaterialTypeRequest struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

type UpdateMaterialTypeRequest struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`
}

func toMaterialTypeResponse(t *models.MaterialType) MaterialTypeResponse {
	return MaterialTypeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Notes:       t.Notes,
		CreatorName: t.Creator.Name,
		CreatedAt:   t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/admin/material-types
func CreateMaterialTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateMaterialTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Malzeme türü adı boş olamaz")
		}

		mt := models.MaterialType{
			Name:      body.Name,
			Notes:     body.Notes,
			CreatorID: actor.UserID,
		}

		if err := database.DB.Create(&mt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme türü oluşturulamadı")
		}

		audit.Record(models.AuditActionCreate, &mt)

		mt.Creator = models.User{Name: actor.UserName}
		return c.Status(fiber.StatusCreated).JSON(toMaterialTypeResponse(&mt))
	}
}

// GET /api/material-types
func ListMaterialTypesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var types []models.MaterialType
		if err := database.DB.Preload("Creator").Order("name").Find(&types).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme türleri listelenemedi")
		}

		resp := make([]MaterialTypeResponse, 0, len(types))
		for i := range types {
			resp = append(resp, toMaterialTypeResponse(&types[i]))
		}

		return c.JSON(resp)
	}
}

// PUT /api/admin/material-types/:id
func UpdateMaterialTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var mt models.MaterialType
		if err := database.DB.Preload("Creator").First(&mt, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Malzeme türü bulunamadı")
		}

		var body UpdateMaterialTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Malzeme türü adı boş olamaz")
			}
			mt.Name = name
		}
		if body.Notes != nil {
			mt.Notes = *body.Notes
		}

		if err := database.DB.Save(&mt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme türü güncellenemedi")
		}

		audit.Record(models.AuditActionUpdate, &mt)

		return c.JSON(toMaterialTypeResponse(&mt))
	}
}

// DELETE /api/admin/material-types/:id
func DeleteMaterialTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var mt models.MaterialType
		if err := database.DB.First(&mt, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Malzeme türü bulunamadı")
		}

		var materialCount int64
		database.DB.Model(&models.Material{}).Where("material_type_id = ?", mt.ID).Count(&materialCount)
		if materialCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu türe bağlı malzemeler var, önce onları taşıyın")
		}

		if err := database.DB.Delete(&mt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme türü silinemedi")
		}

		audit.Record(models.AuditActionDelete, &mt)

		return c.JSON(fiber.Map{"message": "Malzeme türü silindi"})
	}
}
