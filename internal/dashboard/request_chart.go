package dashboard

import (
	"fmt"
	"time"

	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ConsumptionSlice struct {
	MaterialID  uint   `json:"material_id"`
	DisplayCode string `json:"display_code"` // kod-model
	Unit        string `json:"unit"`
	Quantity    int    `json:"quantity"`
}

type ConsumptionChartResponse struct {
	DepartmentID uint               `json:"department_id"`
	From         string             `json:"from"`
	To           string             `json:"to"`
	Slices       []ConsumptionSlice `json:"slices"`
	GrandTotal   int                `json:"grand_total"`
}

// context'ten departman id çıkar (üye/yönetici için JWT, super_admin için query param)
// super_admin için ?department_id=1 zorunlu
func getDepartmentIDFromContext(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role != models.RoleSuperAdmin {
		deptIDVal := c.Locals(auth.CtxDepartmentIDKey)
		deptIDPtr, ok := deptIDVal.(*uint)
		if !ok || deptIDPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Departman bilgisi bulunamadı")
		}
		return *deptIDPtr, nil
	}

	// super_admin
	didStr := c.Query("department_id")
	if didStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "department_id zorunlu")
	}
	var did uint
	if _, err := fmt.Sscan(didStr, &did); err != nil || did == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "department_id geçersiz")
	}
	return did, nil
}

// GET /api/dashboard/consumption-chart?days=30&department_id=1
// Onaylanan taleplerin kalemlerini malzeme bazında toplar (pasta/gül grafiği için).
func ConsumptionChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		deptID, err := getDepartmentIDFromContext(c)
		if err != nil {
			return err
		}

		days := 30
		if daysStr := c.Query("days"); daysStr != "" {
			if _, err := fmt.Sscan(daysStr, &days); err != nil || days <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "days geçersiz")
			}
		}

		now := time.Now()
		loc := now.Location()
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
		start := end.AddDate(0, 0, -days)

		type row struct {
			MaterialID uint   `gorm:"column:material_id"`
			Code       string `gorm:"column:code"`
			Model      string `gorm:"column:model"`
			Unit       string `gorm:"column:unit"`
			Total      int    `gorm:"column:total"`
		}
		var rows []row

		sql := `
			SELECT m.id AS material_id,
				   m.code AS code,
				   m.model AS model,
				   m.unit AS unit,
				   SUM(i.quantity) AS total
			FROM material_request_items i
			JOIN material_requests r ON r.id = i.request_id
			JOIN material_stocks s ON s.id = i.stock_id
			JOIN materials m ON m.id = s.material_id
			WHERE r.department_id = ?
			  AND r.approval_status = 'passed'
			  AND r.created_at >= ? AND r.created_at < ?
			GROUP BY m.id, m.code, m.model, m.unit
			ORDER BY total DESC;
		`

		if err := database.DB.Raw(sql, deptID, start, end).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}

		slices := make([]ConsumptionSlice, 0, len(rows))
		grand := 0
		for _, r := range rows {
			slices = append(slices, ConsumptionSlice{
				MaterialID:  r.MaterialID,
				DisplayCode: r.Code + "-" + r.Model,
				Unit:        r.Unit,
				Quantity:    r.Total,
			})
			grand += r.Total
		}

		return c.JSON(ConsumptionChartResponse{
			DepartmentID: deptID,
			From:         start.Format("2006-01-02"),
			To:           end.AddDate(0, 0, -1).Format("2006-01-02"),
			Slices:       slices,
			GrandTotal:   grand,
		})
	}
}

type StockOverviewResponse struct {
	DepartmentID uint `json:"department_id"`
	StockCount   int64 `json:"stock_count"`
	WarningCount int64 `json:"warning_count"`
	PendingCount int64 `json:"pending_request_count"`
}

// GET /api/dashboard/stock-overview?department_id=1
func StockOverviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		deptID, err := getDepartmentIDFromContext(c)
		if err != nil {
			return err
		}

		var resp StockOverviewResponse
		resp.DepartmentID = deptID

		if err := database.DB.Model(&models.MaterialStock{}).
			Where("department_id = ?", deptID).
			Count(&resp.StockCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok sayısı alınamadı")
		}
		if err := database.DB.Model(&models.MaterialStock{}).
			Where("department_id = ? AND quantity < quantity_safety", deptID).
			Count(&resp.WarningCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Uyarı sayısı alınamadı")
		}
		if err := database.DB.Model(&models.MaterialRequest{}).
			Where("department_id = ? AND approval_status = ?", deptID, models.ApprovalStatusApproving).
			Count(&resp.PendingCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bekleyen talep sayısı alınamadı")
		}

		return c.JSON(resp)
	}
}
