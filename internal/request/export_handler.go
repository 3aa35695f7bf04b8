package request

import (
	"fmt"

	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

var requestStatusLabels = map[models.ApprovalStatus]string{
	models.ApprovalStatusApproving: "Onay bekliyor",
	models.ApprovalStatusPassed:    "Onaylandı",
	models.ApprovalStatusNoPass:    "Reddedildi",
}

// GET /api/requests/export
// Her kalem için bir satır yazar (talep bilgileri tekrarlanır).
func ExportRequestsHandler() fiber.Handler {
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

		if !actor.IsSuperAdmin() {
			if actor.DepartmentID == nil {
				return fiber.NewError(fiber.StatusForbidden, "Departman bilgisi bulunamadı")
			}
			dbq = dbq.Where("department_id = ?", *actor.DepartmentID)
		}

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("approval_status = ?", status)
		}

		var requests []models.MaterialRequest
		if err := dbq.Order("request_number").Find(&requests).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Talepler listelenemedi")
		}

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)

		headers := []string{"Talep No", "Yerleşke", "Departman", "Onaylayan", "Onay Durumu", "Malzeme", "Miktar", "Oluşturan", "Not"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		row := 2
		for i := range requests {
			r := &requests[i]
			statusLabel := requestStatusLabels[r.ApprovalStatus]
			for _, item := range r.Items {
				values := []interface{}{
					r.RequestNumber,
					r.Base.Name,
					r.Department.Name,
					r.Approver.User.Name,
					statusLabel,
					item.Stock.Material.DisplayCode(),
					item.Quantity,
					r.Creator.Name,
					r.Notes,
				}
				for j, v := range values {
					cell, _ := excelize.CoordinatesToCellName(j+1, row)
					f.SetCellValue(sheet, cell, v)
				}
				row++
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "malzeme-talepleri.xlsx"))
		return c.Send(buf.Bytes())
	}
}
