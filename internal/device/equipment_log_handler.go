package device

import (
	"strings"
	"time"

	"material-backend/internal/audit"
	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const timeLayout = "2006-01-02 15:04:05"

type EquipmentLogResponse struct {
	ID                   uint   `json:"id"`
	DeviceID             uint   `json:"device_id"`
	DeviceName           string `json:"device_name"`
	DepartmentID         uint   `json:"department_id"`
	DepartmentName       string `json:"department_name"`
	Operator             string `json:"operator"`
	StartTime            string `json:"start_time"`
	StopTime             string `json:"stop_time"`
	OperationStatus      string `json:"operation_status"`
	AbnormalCondition    string `json:"abnormal_condition"`
	ConsumableName       string `json:"consumable_name"`
	ConsumableReplacedAt string `json:"consumable_replaced_at"`
	Notes                string `json:"notes"`
	CreatorName          string `json:"creator_name"`
	CreatedAt            string `json:"created_at"`
}

type CreateEquipmentLogRequest struct {
	DeviceID             uint   `json:"device_id"`
	Operator             string `json:"operator"`
	StartTime            string `json:"start_time"` // "2006-01-02 15:04:05"
	StopTime             string `json:"stop_time"`
	OperationStatus      string `json:"operation_status"`
	AbnormalCondition    string `json:"abnormal_condition"`
	ConsumableName       string `json:"consumable_name"`
	ConsumableReplacedAt string `json:"consumable_replaced_at"`
	Notes                string `json:"notes"`
}

func toEquipmentLogResponse(l *models.EquipmentLog) EquipmentLogResponse {
	deviceName := l.Device.DeviceType.Name
	if l.Device.Alias != "" {
		deviceName = l.Device.Alias
	}
	res := EquipmentLogResponse{
		ID:                l.ID,
		DeviceID:          l.DeviceID,
		DeviceName:        deviceName,
		DepartmentID:      l.DepartmentID,
		DepartmentName:    l.Department.Name,
		Operator:          l.Operator,
		StartTime:         l.StartTime.Format(timeLayout),
		StopTime:          l.StopTime.Format(timeLayout),
		OperationStatus:   string(l.OperationStatus),
		AbnormalCondition: l.AbnormalCondition,
		ConsumableName:    l.ConsumableName,
		Notes:             l.Notes,
		CreatorName:       l.Creator.Name,
		CreatedAt:         l.CreatedAt.Format(timeLayout),
	}
	if l.ConsumableReplacedAt != nil {
		res.ConsumableReplacedAt = l.ConsumableReplacedAt.Format(timeLayout)
	}
	return res
}

// POST /api/equipment-logs
// Anormal durumda açıklama zorunlu; kapanış zamanı açılıştan önce olamaz.
func CreateEquipmentLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateEquipmentLogRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Operator = strings.TrimSpace(body.Operator)
		if body.Operator == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Operatör adı zorunlu")
		}

		startTime, err := time.Parse(timeLayout, body.StartTime)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Açılış zamanı geçersiz, format: "+timeLayout)
		}
		stopTime, err := time.Parse(timeLayout, body.StopTime)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kapanış zamanı geçersiz, format: "+timeLayout)
		}
		if stopTime.Before(startTime) {
			return fiber.NewError(fiber.StatusBadRequest, "Kapanış zamanı açılış zamanından önce olamaz")
		}

		opStatus := models.OperationStatus(body.OperationStatus)
		if opStatus != models.OperationStatusNormal && opStatus != models.OperationStatusAbnormal {
			return fiber.NewError(fiber.StatusBadRequest, "Çalışma durumu 'normal' veya 'abnormal' olmalı")
		}
		if opStatus == models.OperationStatusAbnormal && strings.TrimSpace(body.AbnormalCondition) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Anormal durumda açıklama zorunlu")
		}

		var device models.DepartmentDevice
		if err := database.DB.Preload("DeviceType").Preload("Department").First(&device, "id = ?", body.DeviceID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cihaz bulunamadı")
		}
		if !actor.IsSuperAdmin() && (actor.DepartmentID == nil || *actor.DepartmentID != device.DepartmentID) {
			return fiber.NewError(fiber.StatusForbidden, "Başka departmanın cihazına kayıt giremezsiniz")
		}

		var replacedAt *time.Time
		if strings.TrimSpace(body.ConsumableReplacedAt) != "" {
			t, err := time.Parse(timeLayout, body.ConsumableReplacedAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Sarf malzemesi değişim zamanı geçersiz, format: "+timeLayout)
			}
			replacedAt = &t
		}

		logEntry := models.EquipmentLog{
			DeviceID:             device.ID,
			DepartmentID:         device.DepartmentID,
			Operator:             body.Operator,
			StartTime:            startTime,
			StopTime:             stopTime,
			OperationStatus:      opStatus,
			AbnormalCondition:    body.AbnormalCondition,
			ConsumableName:       body.ConsumableName,
			ConsumableReplacedAt: replacedAt,
			Notes:                body.Notes,
			CreatorID:            actor.UserID,
		}

		if err := database.DB.Create(&logEntry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çalışma kaydı oluşturulamadı")
		}

		audit.Record(models.AuditActionCreate, &logEntry)

		logEntry.Device = device
		logEntry.Department = device.Department
		logEntry.Creator = models.User{Name: actor.UserName}
		return c.Status(fiber.StatusCreated).JSON(toEquipmentLogResponse(&logEntry))
	}
}

// GET /api/equipment-logs?device_id=1&status=abnormal
func ListEquipmentLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Device.DeviceType").Preload("Department").Preload("Creator")

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
		if deviceStr := c.Query("device_id"); deviceStr != "" {
			dbq = dbq.Where("device_id = ?", deviceStr)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("operation_status = ?", status)
		}

		var logs []models.EquipmentLog
		if err := dbq.Order("start_time DESC").Limit(500).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çalışma kayıtları listelenemedi")
		}

		res := make([]EquipmentLogResponse, 0, len(logs))
		for i := range logs {
			res = append(res, toEquipmentLogResponse(&logs[i]))
		}

		return c.JSON(res)
	}
}

// DELETE /api/admin/equipment-logs/:id (sadece super_admin)
func DeleteEquipmentLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var logEntry models.EquipmentLog
		if err := database.DB.First(&logEntry, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çalışma kaydı bulunamadı")
		}

		if err := database.DB.Delete(&logEntry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çalışma kaydı silinemedi")
		}

		audit.Record(models.AuditActionDelete, &logEntry)

		return c.JSON(fiber.Map{"message": "Çalışma kaydı silindi"})
	}
}
