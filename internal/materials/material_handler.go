package materials

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

type MaterialResponse struct {
	ID               uint   `json:"id"`
	MaterialTypeID   uint   `json:"material_type_id"`
	MaterialTypeName string `json:"material_type_name"`
	Code             string `json:"code"`
	Model            string `json:"model"`
	DisplayCode      string `json:"display_code"`
	Unit             string `json:"unit"`
	Properties       string `json:"properties"`
	Notes            string `json:"notes"`
	CreatorName      string `json:"creator_name"`
	CreatedAt        string `json:"created_at"`
}

type CreateMaterialRequest struct {
	MaterialTypeID uint   `json:"material_type_id"`
	Code           string `json:"code"`
	Model          string `json:"model"`
	Unit           string `json:"unit"`
	Properties     string `json:"properties"`
	Notes          string `json:"notes"`
}

type UpdateMaterialRequest struct {
	MaterialTypeID *uint   `json:"material_type_id"`
	Unit           *string `json:"unit"`
	Properties     *string `json:"properties"`
	Notes          *string `json:"notes"`
}

func toMaterialResponse(m *models.Material) MaterialResponse {
	return MaterialResponse{
		ID:               m.ID,
		MaterialTypeID:   m.MaterialTypeID,
		MaterialTypeName: m.MaterialType.Name,
		Code:             m.Code,
		Model:            m.Model,
		DisplayCode:      m.DisplayCode(),
		Unit:             m.Unit,
		Properties:       m.Properties,
		Notes:            m.Notes,
		CreatorName:      m.Creator.Name,
		CreatedAt:        m.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// unitValid: Birim rakam içeremez ("5 adet" değil "adet").
func unitValid(unit string) bool {
	for _, r := range unit {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	return unit != ""
}

// POST /api/admin/materials
func CreateMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Code = strings.TrimSpace(body.Code)
		body.Model = strings.TrimSpace(body.Model)
		body.Unit = strings.TrimSpace(body.Unit)

		if body.Code == "" || body.Model == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Malzeme kodu ve modeli zorunlu")
		}
		if !unitValid(body.Unit) {
			return fiber.NewError(fiber.StatusBadRequest, "Birim boş olamaz ve rakam içeremez")
		}

		var mt models.MaterialType
		if err := database.DB.First(&mt, "id = ?", body.MaterialTypeID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Malzeme türü bulunamadı")
		}

		m := models.Material{
			MaterialTypeID: body.MaterialTypeID,
			Code:           body.Code,
			Model:          body.Model,
			Unit:           body.Unit,
			Properties:     body.Properties,
			Notes:          body.Notes,
			CreatorID:      actor.UserID,
		}

		if err := database.DB.Create(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Bu kod-model kombinasyonu zaten kayıtlı: "+m.DisplayCode())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme oluşturulamadı")
		}

		audit.Record(models.AuditActionCreate, &m)

		m.MaterialType = mt
		m.Creator = models.User{Name: actor.UserName}
		return c.Status(fiber.StatusCreated).JSON(toMaterialResponse(&m))
	}
}

// GET /api/materials?q=ABC&material_type_id=1
func ListMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("MaterialType").Preload("Creator")

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + q + "%"
			dbq = dbq.Where("code ILIKE ? OR model ILIKE ?", like, like)
		}
		if mtStr := c.Query("material_type_id"); mtStr != "" {
			dbq = dbq.Where("material_type_id = ?", mtStr)
		}

		var mats []models.Material
		if err := dbq.Order("code, model").Find(&mats).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzemeler listelenemedi")
		}

		resp := make([]MaterialResponse, 0, len(mats))
		for i := range mats {
			resp = append(resp, toMaterialResponse(&mats[i]))
		}

		return c.JSON(resp)
	}
}

// PUT /api/admin/materials/:id
// Kod ve model değiştirilemez: stoklar ve talepler bu anahtara bağlı.
func UpdateMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var m models.Material
		if err := database.DB.Preload("MaterialType").Preload("Creator").First(&m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Malzeme bulunamadı")
		}

		var body UpdateMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.MaterialTypeID != nil {
			var mt models.MaterialType
			if err := database.DB.First(&mt, "id = ?", *body.MaterialTypeID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Malzeme türü bulunamadı")
			}
			m.MaterialTypeID = *body.MaterialTypeID
			m.MaterialType = mt
		}
		if body.Unit != nil {
			if !unitValid(*body.Unit) {
				return fiber.NewError(fiber.StatusBadRequest, "Birim boş olamaz ve rakam içeremez")
			}
			m.Unit = *body.Unit
		}
		if body.Properties != nil {
			m.Properties = *body.Properties
		}
		if body.Notes != nil {
			m.Notes = *body.Notes
		}

		if err := database.DB.Save(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme güncellenemedi")
		}

		audit.Record(models.AuditActionUpdate, &m)

		return c.JSON(toMaterialResponse(&m))
	}
}

// DELETE /api/admin/materials/:id
func DeleteMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var m models.Material
		if err := database.DB.First(&m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Malzeme bulunamadı")
		}

		var stockCount int64
		database.DB.Model(&models.MaterialStock{}).Where("material_id = ?", m.ID).Count(&stockCount)
		if stockCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu malzemenin stok kayıtları var, silinemez")
		}

		if err := database.DB.Delete(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme silinemedi")
		}

		audit.Record(models.AuditActionDelete, &m)

		return c.JSON(fiber.Map{"message": "Malzeme silindi"})
	}
}
