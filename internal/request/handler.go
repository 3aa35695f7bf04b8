package request

import (
	"errors"
	"fmt"

	"material-backend/internal/audit"
	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"
	"material-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateRequestBody struct {
	DepartmentID *uint       `json:"department_id"` // super_admin için
	Applicant    string      `json:"applicant"`
	ApproverID   uint        `json:"approver_id"`
	Notes        string      `json:"notes"`
	Items        []ItemInput `json:"items"`
	// Sadece super_admin ilk durumu belirleyebilir; diğerleri approving ile başlar
	Status models.ApprovalStatus `json:"status"`
}

type UpdateRequestBody struct {
	Applicant  *string                `json:"applicant"`
	ApproverID *uint                  `json:"approver_id"`
	Notes      *string                `json:"notes"`
	Status     *models.ApprovalStatus `json:"status"`
	Items      *[]ItemInput           `json:"items"`
}

type DecisionBody struct {
	Status models.ApprovalStatus `json:"status"` // passed | nopass
}

type RequestItemResponse struct {
	ID           uint   `json:"id"`
	StockID      uint   `json:"stock_id"`
	MaterialCode string `json:"material_code"`
	Unit         string `json:"unit"`
	Quantity     int    `json:"quantity"`
}

type RequestResponse struct {
	ID             uint                  `json:"id"`
	RequestNumber  string                `json:"request_number"`
	BaseID         uint                  `json:"base_id"`
	BaseName       string                `json:"base_name"`
	DepartmentID   uint                  `json:"department_id"`
	DepartmentName string                `json:"department_name"`
	Applicant      string                `json:"applicant"`
	ApproverID     uint                  `json:"approver_id"`
	ApproverName   string                `json:"approver_name"`
	ApprovalStatus models.ApprovalStatus `json:"approval_status"`
	ItemsSummary   string                `json:"items_summary"`
	Notes          string                `json:"notes"`
	CreatorName    string                `json:"creator_name"`
	CreatedAt      string                `json:"created_at"`
	Items          []RequestItemResponse `json:"items"`
}

func toRequestResponse(r *models.MaterialRequest) RequestResponse {
	items := make([]RequestItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, RequestItemResponse{
			ID:           item.ID,
			StockID:      item.StockID,
			MaterialCode: item.Stock.Material.DisplayCode(),
			Unit:         item.Stock.Material.Unit,
			Quantity:     item.Quantity,
		})
	}

	return RequestResponse{
		ID:             r.ID,
		RequestNumber:  r.RequestNumber,
		BaseID:         r.BaseID,
		BaseName:       r.Base.Name,
		DepartmentID:   r.DepartmentID,
		DepartmentName: r.Department.Name,
		Applicant:      r.Applicant,
		ApproverID:     r.ApproverID,
		ApproverName:   r.Approver.User.Name,
		ApprovalStatus: r.ApprovalStatus,
		ItemsSummary:   ItemsSummary(r),
		Notes:          r.Notes,
		CreatorName:    r.Creator.Name,
		CreatedAt:      r.CreatedAt.Format("2006-01-02 15:04:05"),
		Items:          items,
	}
}

func loadRequest(id uint) (*models.MaterialRequest, error) {
	var req models.MaterialRequest
	err := database.DB.
		Preload("Base").
		Preload("Department").
		Preload("Approver.User").
		Preload("Creator").
		Preload("Items.Stock.Material").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// workflowError: Core hatalarını HTTP koduna çevirir.
func workflowError(err error) error {
	var insufficient *stock.InsufficientStockError
	var locked *RequestLockedError
	var dup *DuplicateRequestNumberError

	switch {
	case errors.As(err, &insufficient):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &locked):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.As(err, &dup):
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Talep bulunamadı")
	default:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
}

// POST /api/requests
func CreateRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateRequestBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ApproverID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "approver_id zorunlu")
		}

		var departmentID uint
		if actor.IsSuperAdmin() {
			if body.DepartmentID == nil || *body.DepartmentID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "department_id zorunlu")
			}
			departmentID = *body.DepartmentID
		} else {
			if actor.DepartmentID == nil {
				return fiber.NewError(fiber.StatusForbidden, "Departman bilgisi bulunamadı")
			}
			departmentID = *actor.DepartmentID
		}

		var department models.Department
		if err := database.DB.First(&department, "id = ?", departmentID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Departman bulunamadı (ID: %d)", departmentID))
		}

		// İlk durumu sadece super_admin belirleyebilir
		status := models.ApprovalStatusApproving
		if body.Status != "" {
			if !actor.IsSuperAdmin() {
				return fiber.NewError(fiber.StatusForbidden, "Yeni talep her zaman 'approving' durumuyla açılır")
			}
			status = body.Status
		}

		req, err := Create(database.DB, CreateInput{
			BaseID:       department.BaseID,
			DepartmentID: departmentID,
			Applicant:    body.Applicant,
			ApproverID:   body.ApproverID,
			Status:       status,
			Notes:        body.Notes,
			Items:        body.Items,
		}, actor.UserID)
		if err != nil {
			return workflowError(err)
		}

		audit.Record(models.AuditActionCreate, req)

		full, err := loadRequest(req.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Talep yüklenemedi")
		}
		return c.Status(fiber.StatusCreated).JSON(toRequestResponse(full))
	}
}

// GET /api/requests?status=approving&department_id=1
func ListRequestsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		dbq := database.DB.
			Preload("Base").
			Preload("Department").
			Preload("Approver.User").
			Preload("Creator").
			Preload("Items.Stock.Material")

		// Departman kapsamı: super_admin dışındakiler sadece kendi departmanını görür
		if !actor.IsSuperAdmin() {
			if actor.DepartmentID == nil {
				return c.JSON([]RequestResponse{})
			}
			dbq = dbq.Where("department_id = ?", *actor.DepartmentID)
		} else if didStr := c.Query("department_id"); didStr != "" {
			var did uint
			if _, err := fmt.Sscan(didStr, &did); err == nil && did > 0 {
				dbq = dbq.Where("department_id = ?", did)
			}
		}

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("approval_status = ?", status)
		}

		var requests []models.MaterialRequest
		if err := dbq.Order("created_at DESC").Find(&requests).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Talepler listelenemedi")
		}

		resp := make([]RequestResponse, 0, len(requests))
		for i := range requests {
			resp = append(resp, toRequestResponse(&requests[i]))
		}

		return c.JSON(resp)
	}
}

// GET /api/requests/:id
func GetRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz talep ID")
		}

		req, err := loadRequest(id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Talep bulunamadı")
		}

		if !actor.IsSuperAdmin() {
			if actor.DepartmentID == nil || *actor.DepartmentID != req.DepartmentID {
				return fiber.NewError(fiber.StatusForbidden, "Sadece kendi departmanınızın taleplerini görebilirsiniz")
			}
		}

		return c.JSON(toRequestResponse(req))
	}
}

// PUT /api/requests/:id
func UpdateRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz talep ID")
		}

		existing, err := loadRequest(id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Talep bulunamadı")
		}

		if !actor.IsSuperAdmin() {
			if actor.DepartmentID == nil || *actor.DepartmentID != existing.DepartmentID {
				return fiber.NewError(fiber.StatusForbidden, "Sadece kendi departmanınızın taleplerini düzenleyebilirsiniz")
			}
		}

		var body UpdateRequestBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		// Durum değişikliği onay yetkisi ister
		if body.Status != nil && actor.Role == models.RoleMember {
			return fiber.NewError(fiber.StatusForbidden, "Onay durumunu sadece malzeme yöneticisi veya super admin değiştirebilir")
		}

		req, err := Update(database.DB, id, UpdateInput{
			Applicant:  body.Applicant,
			ApproverID: body.ApproverID,
			Notes:      body.Notes,
			Status:     body.Status,
			Items:      body.Items,
		})
		if err != nil {
			return workflowError(err)
		}

		audit.Record(models.AuditActionUpdate, req)

		full, err := loadRequest(req.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Talep yüklenemedi")
		}
		return c.JSON(toRequestResponse(full))
	}
}

// POST /api/requests/:id/decision
func DecideRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		if actor.Role == models.RoleMember {
			return fiber.NewError(fiber.StatusForbidden, "Kararı sadece malzeme yöneticisi veya super admin verebilir")
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz talep ID")
		}

		existing, err := loadRequest(id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Talep bulunamadı")
		}

		if !actor.IsSuperAdmin() {
			if actor.DepartmentID == nil || *actor.DepartmentID != existing.DepartmentID {
				return fiber.NewError(fiber.StatusForbidden, "Sadece kendi departmanınızın taleplerini karara bağlayabilirsiniz")
			}
		}

		var body DecisionBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		req, err := Decide(database.DB, id, body.Status)
		if err != nil {
			return workflowError(err)
		}

		audit.Record(models.AuditActionUpdate, req)

		full, err := loadRequest(req.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Talep yüklenemedi")
		}
		return c.JSON(toRequestResponse(full))
	}
}

// DELETE /api/requests/:id
// Kalemler talebe bağlı yaşar: talep silinince kalemler de silinir.
func DeleteRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz talep ID")
		}

		var req models.MaterialRequest
		if err := database.DB.First(&req, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Talep bulunamadı")
		}

		if !actor.IsSuperAdmin() {
			if actor.DepartmentID == nil || *actor.DepartmentID != req.DepartmentID {
				return fiber.NewError(fiber.StatusForbidden, "Sadece kendi departmanınızın taleplerini silebilirsiniz")
			}
			// Karar verilmiş talebin izi bozulmasın
			if req.ApprovalStatus.Terminal() {
				return fiber.NewError(fiber.StatusConflict, "Karar verilmiş talep silinemez")
			}
		}

		if err := database.DB.Select("Items").Delete(&req).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Talep silinemedi")
		}

		audit.Record(models.AuditActionDelete, &req)

		return c.JSON(fiber.Map{"message": "Talep silindi"})
	}
}
