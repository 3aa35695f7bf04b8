package device

import (
	"strings"

	"material-backend/internal/audit"
	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type DeviceResponse struct {
	ID             uint   `json:"id"`
	DeviceTypeID   uint   `json:"device_type_id"`
	DeviceTypeName string `json:"device_type_name"`
	DeviceModel    string `json:"device_model"`
	Alias          string `json:"alias"`
	DepartmentID   uint   `json:"department_id"`
	DepartmentName string `json:"department_name"`
	Location       string `json:"location"`
	DeviceStatus   string `json:"device_status"`
	Notes          string `json:"notes"`
	CreatorName    string `json:"creator_name"`
	CreatedAt      string `json:"created_at"`
}

type CreateDeviceRequest struct {
	DeviceTypeID uint   `json:"device_type_id"`
	Alias        string `json:"alias"`
	DepartmentID *uint  `json:"department_id"`
	Location     string `json:"location"`
	DeviceStatus string `json:"device_status"`
	Notes        string `json:"notes"`
}

type UpdateDeviceRequest struct {
	Alias        *string `json:"alias"`
	Location     *string `json:"location"`
	DeviceStatus *string `json:"device_status"`
	Notes        *string `json:"notes"`
}

func toDeviceResponse(d *models.DepartmentDevice) DeviceResponse {
	return DeviceResponse{
		ID:             d.ID,
		DeviceTypeID:   d.DeviceTypeID,
		DeviceTypeName: d.DeviceType.Name,
		DeviceModel:    d.DeviceType.Model,
		Alias:          d.Alias,
		DepartmentID:   d.DepartmentID,
		DepartmentName: d.Department.Name,
		Location:       d.Location,
		DeviceStatus:   string(d.DeviceStatus),
		Notes:          d.Notes,
		CreatorName:    d.Creator.Name,
		CreatedAt:      d.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Süper yönetici hedef departmanı gövdeden seçebilir; diğerleri kendi
// departmanına yazar.
func resolveDepartmentID(actor auth.Actor, bodyDeptID *uint) (uint, error) {
	if actor.IsSuperAdmin() {
		if bodyDeptID == nil || *bodyDeptID == 0 {
			return 0, fiber.NewError(fiber.StatusBadRequest, "Departman seçilmeli")
		}
		return *bodyDeptID, nil
	}
	if actor.DepartmentID == nil {
		return 0, fiber.NewError(fiber.StatusForbidden, "Bir departmana bağlı değilsiniz")
	}
	if bodyDeptID != nil && *bodyDeptID != 0 && *bodyDeptID != *actor.DepartmentID {
		return 0, fiber.NewError(fiber.StatusForbidden, "Sadece kendi departmanınız için kayıt açabilirsiniz")
	}
	return *actor.DepartmentID, nil
}

// POST /api/devices
func CreateDeviceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateDeviceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		deptID, err := resolveDepartmentID(actor, body.DepartmentID)
		if err != nil {
			return err
		}

		var dept models.Department
		if err := database.DB.First(&dept, "id = ?", deptID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Departman bulunamadı")
		}

		var dt models.DeviceType
		if err := database.DB.First(&dt, "id = ?", body.DeviceTypeID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cihaz türü bulunamadı")
		}

		status := models.DeviceStatusNormal
		if s := strings.TrimSpace(body.DeviceStatus); s != "" {
			status = models.DeviceStatus(s)
			if !status.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz cihaz durumu: "+s)
			}
		}

		d := models.DepartmentDevice{
			DeviceTypeID: dt.ID,
			Alias:        strings.TrimSpace(body.Alias),
			DepartmentID: dept.ID,
			Location:     body.Location,
			DeviceStatus: status,
			Notes:        body.Notes,
			CreatorID:    actor.UserID,
		}

		if err := database.DB.Create(&d).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cihaz oluşturulamadı")
		}

		audit.Record(models.AuditActionCreate, &d)

		d.DeviceType = dt
		d.Department = dept
		d.Creator = models.User{Name: actor.UserName}
		return c.Status(fiber.StatusCreated).JSON(toDeviceResponse(&d))
	}
}

// GET /api/devices?department_id=1&status=fault
// Süper yönetici tüm departmanları görür; diğerleri kendi departmanını.
func ListDevicesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("DeviceType").Preload("Department").Preload("Creator")

		if actor.IsSuperAdmin() {
			if deptStr := c.Query("department_id"); deptStr != "" {
				dbq = dbq.Where("department_id = ?", deptStr)
			}
		} else {
			if actor.DepartmentID == nil {
				return fiber.NewError(fiber.StatusForbidden, "Bir departmana bağlı değilsiniz")
			}
			dbq = dbq.Where("department_id = ?", *actor.DepartmentID)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("device_status = ?", status)
		}

		var devices []models.DepartmentDevice
		if err := dbq.Order("id").Find(&devices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cihazlar listelenemedi")
		}

		res := make([]DeviceResponse, 0, len(devices))
		for i := range devices {
			res = append(res, toDeviceResponse(&devices[i]))
		}

		return c.JSON(res)
	}
}

// PUT /api/devices/:id
func UpdateDeviceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}
		id := c.Params("id")

		var d models.DepartmentDevice
		if err := database.DB.Preload("DeviceType").Preload("Department").Preload("Creator").First(&d, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cihaz bulunamadı")
		}
		if !actor.IsSuperAdmin() && (actor.DepartmentID == nil || *actor.DepartmentID != d.DepartmentID) {
			return fiber.NewError(fiber.StatusForbidden, "Başka departmanın cihazını düzenleyemezsiniz")
		}

		var body UpdateDeviceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Alias != nil {
			d.Alias = strings.TrimSpace(*body.Alias)
		}
		if body.Location != nil {
			d.Location = *body.Location
		}
		if body.DeviceStatus != nil {
			status := models.DeviceStatus(*body.DeviceStatus)
			if !status.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz cihaz durumu: "+*body.DeviceStatus)
			}
			d.DeviceStatus = status
		}
		if body.Notes != nil {
			d.Notes = *body.Notes
		}

		if err := database.DB.Save(&d).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cihaz güncellenemedi")
		}

		audit.Record(models.AuditActionUpdate, &d)

		return c.JSON(toDeviceResponse(&d))
	}
}

// DELETE /api/devices/:id
func DeleteDeviceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}
		id := c.Params("id")

		var d models.DepartmentDevice
		if err := database.DB.First(&d, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cihaz bulunamadı")
		}
		if !actor.IsSuperAdmin() && (actor.DepartmentID == nil || *actor.DepartmentID != d.DepartmentID) {
			return fiber.NewError(fiber.StatusForbidden, "Başka departmanın cihazını silemezsiniz")
		}

		var logCount int64
		database.DB.Model(&models.EquipmentLog{}).Where("device_id = ?", d.ID).Count(&logCount)
		if logCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu cihazın çalışma kayıtları var, silinemez")
		}

		if err := database.DB.Delete(&d).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cihaz silinemedi")
		}

		audit.Record(models.AuditActionDelete, &d)

		return c.JSON(fiber.Map{"message": "Cihaz silindi"})
	}
}
