package admin

import (
	"strings"

	"material-backend/internal/audit"
	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type DepartmentResponse struct {
	ID          uint   `json:"id"`
	BaseID      uint   `json:"base_id"`
	BaseName    string `json:"base_name"`
	Name        string `json:"name"`
	CreatorName string `json:"creator_name"`
	CreatedAt   string `json:"created_at"`
}

type CreateDepartmentRequest struct {
	BaseID uint   `json:"base_id"`
	Name   string `json:"name"`
}

type UpdateDepartmentRequest struct {
	Name *string `json:"name"`
}

func toDepartmentResponse(d *models.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          d.ID,
		BaseID:      d.BaseID,
		BaseName:    d.Base.Name,
		Name:        d.Name,
		CreatorName: d.Creator.Name,
		CreatedAt:   d.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func CreateDepartmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateDepartmentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Departman adı boş olamaz")
		}

		var base models.Base
		if err := database.DB.First(&base, "id = ?", body.BaseID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Yerleşke bulunamadı")
		}

		dept := models.Department{
			BaseID:    body.BaseID,
			Name:      body.Name,
			CreatorID: actor.UserID,
		}

		if err := database.DB.Create(&dept).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Departman oluşturulamadı")
		}

		audit.Record(models.AuditActionCreate, &dept)

		dept.Base = base
		dept.Creator = models.User{Name: actor.UserName}
		return c.Status(fiber.StatusCreated).JSON(toDepartmentResponse(&dept))
	}
}

func ListDepartmentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Base").Preload("Creator")
		if baseIDStr := c.Query("base_id"); baseIDStr != "" {
			dbq = dbq.Where("base_id = ?", baseIDStr)
		}

		var depts []models.Department
		if err := dbq.Order("name").Find(&depts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Departmanlar listelenemedi")
		}

		res := make([]DepartmentResponse, 0, len(depts))
		for i := range depts {
			res = append(res, toDepartmentResponse(&depts[i]))
		}

		return c.JSON(res)
	}
}

func UpdateDepartmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var dept models.Department
		if err := database.DB.Preload("Base").Preload("Creator").First(&dept, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Departman bulunamadı")
		}

		var body UpdateDepartmentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Departman adı boş olamaz")
			}
			dept.Name = name
		}

		if err := database.DB.Save(&dept).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Departman güncellenemedi")
		}

		audit.Record(models.AuditActionUpdate, &dept)

		return c.JSON(toDepartmentResponse(&dept))
	}
}

func DeleteDepartmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var dept models.Department
		if err := database.DB.First(&dept, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Departman bulunamadı")
		}

		var stockCount int64
		database.DB.Model(&models.MaterialStock{}).Where("department_id = ?", dept.ID).Count(&stockCount)
		if stockCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu departmanın stok kayıtları var, silinemez")
		}

		if err := database.DB.Delete(&dept).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Departman silinemedi")
		}

		audit.Record(models.AuditActionDelete, &dept)

		return c.JSON(fiber.Map{"message": "Departman silindi"})
	}
}
