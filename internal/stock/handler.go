package stock

import (
	"errors"
	"fmt"

	"material-backend/internal/audit"
	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateStockRequest struct {
	DepartmentID   *uint `json:"department_id"` // super_admin için
	MaterialID     uint  `json:"material_id"`
	Quantity       int   `json:"quantity"`
	QuantitySafety int   `json:"quantity_safety"`
}

type UpdateStockRequest struct {
	Quantity       *int `json:"quantity"`
	QuantitySafety *int `json:"quantity_safety"`
}

type StockResponse struct {
	ID             uint   `json:"id"`
	DepartmentID   uint   `json:"department_id"`
	DepartmentName string `json:"department_name"`
	MaterialID     uint   `json:"material_id"`
	MaterialCode   string `json:"material_code"`
	Unit           string `json:"unit"`
	Quantity       int    `json:"quantity"`
	QuantitySafety int    `json:"quantity_safety"`
	StockStatus    string `json:"stock_status"` // warning | normal
	CreatedAt      string `json:"created_at"`
}

func toStockResponse(s *models.MaterialStock) StockResponse {
	return StockResponse{
		ID:             s.ID,
		DepartmentID:   s.DepartmentID,
		DepartmentName: s.Department.Name,
		MaterialID:     s.MaterialID,
		MaterialCode:   s.Material.DisplayCode(),
		Unit:           s.Material.Unit,
		Quantity:       s.Quantity,
		QuantitySafety: s.QuantitySafety,
		StockStatus:    s.StockStatus(),
		CreatedAt:      s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// resolveDepartmentIDFromBodyOrRole: super_admin body'den departman seçebilir,
// diğer roller kendi departmanına yazar.
func resolveDepartmentIDFromBodyOrRole(actor auth.Actor, bodyDepartmentID *uint) (uint, error) {
	if actor.IsSuperAdmin() {
		if bodyDepartmentID == nil || *bodyDepartmentID == 0 {
			return 0, fiber.NewError(fiber.StatusBadRequest, "department_id zorunlu")
		}
		return *bodyDepartmentID, nil
	}
	if actor.DepartmentID == nil {
		return 0, fiber.NewError(fiber.StatusForbidden, "Departman bilgisi bulunamadı")
	}
	return *actor.DepartmentID, nil
}

// resolveDepartmentIDFromQueryOrRole: Listelemede super_admin için
// ?department_id opsiyoneldir (0 = tüm departmanlar).
func resolveDepartmentIDFromQueryOrRole(c *fiber.Ctx, actor auth.Actor) (uint, error) {
	if actor.IsSuperAdmin() {
		didStr := c.Query("department_id")
		if didStr == "" {
			return 0, nil
		}
		var did uint
		if _, err := fmt.Sscan(didStr, &did); err != nil || did == 0 {
			return 0, fiber.NewError(fiber.StatusBadRequest, "department_id geçersiz")
		}
		return did, nil
	}
	if actor.DepartmentID == nil {
		return 0, fiber.NewError(fiber.StatusForbidden, "Departman bilgisi bulunamadı")
	}
	return *actor.DepartmentID, nil
}

// POST /api/stocks
func CreateStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.MaterialID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "material_id zorunlu")
		}
		if err := ValidateQuantity(body.Quantity); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := ValidateQuantitySafety(body.QuantitySafety); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		departmentID, err := resolveDepartmentIDFromBodyOrRole(actor, body.DepartmentID)
		if err != nil {
			return err
		}

		var department models.Department
		if err := database.DB.First(&department, "id = ?", departmentID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Departman bulunamadı (ID: %d)", departmentID))
		}

		var material models.Material
		if err := database.DB.First(&material, "id = ?", body.MaterialID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Malzeme bulunamadı")
		}

		entry := models.MaterialStock{
			DepartmentID:   departmentID,
			MaterialID:     body.MaterialID,
			Quantity:       body.Quantity,
			QuantitySafety: body.QuantitySafety,
			CreatorID:      &actor.UserID,
		}

		if err := database.DB.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				dupErr := &DuplicateStockKeyError{Department: department.Name, Material: material.DisplayCode()}
				return fiber.NewError(fiber.StatusConflict, dupErr.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kaydı oluşturulamadı")
		}

		audit.Record(models.AuditActionCreate, &entry)

		entry.Department = department
		entry.Material = material
		return c.Status(fiber.StatusCreated).JSON(toStockResponse(&entry))
	}
}

// GET /api/stocks?status=warning&department_id=1
func ListStocksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		departmentID, err := resolveDepartmentIDFromQueryOrRole(c, actor)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Department").Preload("Material")
		if departmentID != 0 {
			dbq = dbq.Where("department_id = ?", departmentID)
		}

		// Türetilmiş stok durumu filtresi
		switch c.Query("status") {
		case "warning":
			dbq = dbq.Where("quantity < quantity_safety")
		case "normal":
			dbq = dbq.Where("quantity >= quantity_safety")
		}

		var stocks []models.MaterialStock
		if err := dbq.Order("department_id, material_id").Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stoklar listelenemedi")
		}

		resp := make([]StockResponse, 0, len(stocks))
		for i := range stocks {
			resp = append(resp, toStockResponse(&stocks[i]))
		}

		return c.JSON(resp)
	}
}

// PUT /api/stocks/:id
func UpdateStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var entry models.MaterialStock
		if err := database.DB.Preload("Department").Preload("Material").First(&entry, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok kaydı bulunamadı")
		}

		if !actor.IsSuperAdmin() {
			if actor.DepartmentID == nil || *actor.DepartmentID != entry.DepartmentID {
				return fiber.NewError(fiber.StatusForbidden, "Sadece kendi departmanınızın stoklarını düzenleyebilirsiniz")
			}
		}

		var body UpdateStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Quantity != nil {
			if err := ValidateQuantity(*body.Quantity); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			entry.Quantity = *body.Quantity
		}
		if body.QuantitySafety != nil {
			if err := ValidateQuantitySafety(*body.QuantitySafety); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			entry.QuantitySafety = *body.QuantitySafety
		}

		if err := database.DB.Save(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kaydı güncellenemedi")
		}

		audit.Record(models.AuditActionUpdate, &entry)

		return c.JSON(toStockResponse(&entry))
	}
}

// DELETE /api/stocks/:id
func DeleteStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var entry models.MaterialStock
		if err := database.DB.First(&entry, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok kaydı bulunamadı")
		}

		if !actor.IsSuperAdmin() {
			if actor.DepartmentID == nil || *actor.DepartmentID != entry.DepartmentID {
				return fiber.NewError(fiber.StatusForbidden, "Sadece kendi departmanınızın stoklarını silebilirsiniz")
			}
		}

		// Açık taleplerde kullanılan stok silinemez
		var itemCount int64
		database.DB.Model(&models.MaterialRequestItem{}).
			Joins("JOIN material_requests ON material_requests.id = material_request_items.request_id").
			Where("material_request_items.stock_id = ? AND material_requests.approval_status = ?", entry.ID, models.ApprovalStatusApproving).
			Count(&itemCount)
		if itemCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu stok onay bekleyen taleplerde kullanılıyor, silinemez")
		}

		if err := database.DB.Delete(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kaydı silinemedi")
		}

		audit.Record(models.AuditActionDelete, &entry)

		return c.JSON(fiber.Map{"message": "Stok kaydı silindi"})
	}
}
