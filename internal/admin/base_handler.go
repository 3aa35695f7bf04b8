package admin

import (
	"strings"

	"material-backend/internal/audit"
	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type BaseResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	CreatorName string `json:"creator_name"`
	CreatedAt   string `json:"created_at"`
}

type CreateBaseRequest struct {
	Name string `json:"name"`
}

type UpdateBaseRequest struct {
	Name *string `json:"name"`
}

// ----------------------------------------
// YERLEŞKE CRUD
// ----------------------------------------

func CreateBaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateBaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Yerleşke adı boş olamaz")
		}

		base := models.Base{
			Name:      body.Name,
			CreatorID: actor.UserID,
		}

		if err := database.DB.Create(&base).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yerleşke oluşturulamadı")
		}

		audit.Record(models.AuditActionCreate, &base)

		return c.Status(fiber.StatusCreated).JSON(BaseResponse{
			ID:          base.ID,
			Name:        base.Name,
			CreatorName: actor.UserName,
			CreatedAt:   base.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

func ListBasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var bases []models.Base
		if err := database.DB.Preload("Creator").Order("name").Find(&bases).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yerleşkeler listelenemedi")
		}

		res := make([]BaseResponse, 0, len(bases))
		for _, b := range bases {
			res = append(res, BaseResponse{
				ID:          b.ID,
				Name:        b.Name,
				CreatorName: b.Creator.Name,
				CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(res)
	}
}

func UpdateBaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var base models.Base
		if err := database.DB.Preload("Creator").First(&base, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Yerleşke bulunamadı")
		}

		var body UpdateBaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Yerleşke adı boş olamaz")
			}
			base.Name = name
		}

		if err := database.DB.Save(&base).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yerleşke güncellenemedi")
		}

		audit.Record(models.AuditActionUpdate, &base)

		return c.JSON(BaseResponse{
			ID:          base.ID,
			Name:        base.Name,
			CreatorName: base.Creator.Name,
			CreatedAt:   base.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

func DeleteBaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var base models.Base
		if err := database.DB.First(&base, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Yerleşke bulunamadı")
		}

		var deptCount int64
		database.DB.Model(&models.Department{}).Where("base_id = ?", base.ID).Count(&deptCount)
		if deptCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu yerleşkeye bağlı departmanlar var, önce onları silin")
		}

		if err := database.DB.Delete(&base).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yerleşke silinemedi")
		}

		audit.Record(models.AuditActionDelete, &base)

		return c.JSON(fiber.Map{"message": "Yerleşke silindi"})
	}
}
