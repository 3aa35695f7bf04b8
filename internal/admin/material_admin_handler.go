package admin

import (
	"material-backend/internal/audit"
	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MaterialAdminResponse struct {
	ID             uint   `json:"id"`
	BaseID         uint   `json:"base_id"`
	BaseName       string `json:"base_name"`
	DepartmentID   uint   `json:"department_id"`
	DepartmentName string `json:"department_name"`
	UserID         uint   `json:"user_id"`
	UserName       string `json:"user_name"`
	CreatorName    string `json:"creator_name"`
	CreatedAt      string `json:"created_at"`
}

type CreateMaterialAdminRequest struct {
	DepartmentID uint `json:"department_id"`
	UserID       uint `json:"user_id"`
}

func toMaterialAdminResponse(ma *models.MaterialAdmin) MaterialAdminResponse {
	return MaterialAdminResponse{
		ID:             ma.ID,
		BaseID:         ma.BaseID,
		BaseName:       ma.Base.Name,
		DepartmentID:   ma.DepartmentID,
		DepartmentName: ma.Department.Name,
		UserID:         ma.UserID,
		UserName:       ma.User.Name,
		CreatorName:    ma.Creator.Name,
		CreatedAt:      ma.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/material-admins (sadece super_admin)
// Yerleşke departmandan türetilir; ayrıca gönderilmez.
func CreateMaterialAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateMaterialAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		var dept models.Department
		if err := database.DB.Preload("Base").First(&dept, "id = ?", body.DepartmentID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Departman bulunamadı")
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", body.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı bulunamadı")
		}
		if user.Role == models.RoleMember {
			return fiber.NewError(fiber.StatusBadRequest, "Üye rolündeki kullanıcı malzeme yöneticisi olamaz")
		}

		var existing int64
		database.DB.Model(&models.MaterialAdmin{}).
			Where("department_id = ? AND user_id = ?", dept.ID, user.ID).
			Count(&existing)
		if existing > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu kullanıcı bu departman için zaten atanmış")
		}

		ma := models.MaterialAdmin{
			BaseID:       dept.BaseID,
			DepartmentID: dept.ID,
			UserID:       user.ID,
			CreatorID:    actor.UserID,
		}

		if err := database.DB.Create(&ma).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme yöneticisi atanamadı")
		}

		audit.Record(models.AuditActionCreate, &ma)

		ma.Base = dept.Base
		ma.Department = dept
		ma.User = user
		ma.Creator = models.User{Name: actor.UserName}
		return c.Status(fiber.StatusCreated).JSON(toMaterialAdminResponse(&ma))
	}
}

// GET /api/material-admins?department_id=1
func ListMaterialAdminsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Base").Preload("Department").Preload("User").Preload("Creator")
		if deptStr := c.Query("department_id"); deptStr != "" {
			dbq = dbq.Where("department_id = ?", deptStr)
		}

		var admins []models.MaterialAdmin
		if err := dbq.Order("id").Find(&admins).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme yöneticileri listelenemedi")
		}

		res := make([]MaterialAdminResponse, 0, len(admins))
		for i := range admins {
			res = append(res, toMaterialAdminResponse(&admins[i]))
		}

		return c.JSON(res)
	}
}

// DELETE /api/material-admins/:id (sadece super_admin)
func DeleteMaterialAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ma models.MaterialAdmin
		if err := database.DB.First(&ma, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Malzeme yöneticisi bulunamadı")
		}

		var pendingCount int64
		database.DB.Model(&models.MaterialRequest{}).
			Where("approver_id = ? AND approval_status = ?", ma.ID, models.ApprovalStatusApproving).
			Count(&pendingCount)
		if pendingCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu yöneticinin onay bekleyen talepleri var, önce onları sonuçlandırın")
		}

		if err := database.DB.Delete(&ma).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme yöneticisi silinemedi")
		}

		audit.Record(models.AuditActionDelete, &ma)

		return c.JSON(fiber.Map{"message": "Malzeme yöneticisi ataması kaldırıldı"})
	}
}
