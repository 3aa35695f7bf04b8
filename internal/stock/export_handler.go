package stock

import (
	"fmt"

	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/stocks/export?department_id=1
// Mevcut stok listesini, içe aktarmanın beklediği kolon düzeniyle xlsx verir.
func ExportStocksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		departmentID, err := resolveDepartmentIDFromQueryOrRole(c, actor)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Department").Preload("Material").Preload("Creator")
		if departmentID != 0 {
			dbq = dbq.Where("department_id = ?", departmentID)
		}

		var stocks []models.MaterialStock
		if err := dbq.Order("department_id, material_id").Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stoklar listelenemedi")
		}

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)

		headers := []string{"Departman", "Malzeme", "Stok", "Stok Uyarı", "Oluşturan", "Durum"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for i, s := range stocks {
			row := i + 2
			creator := ""
			if s.Creator != nil {
				creator = s.Creator.Username
			}
			values := []interface{}{s.Department.Name, s.Material.DisplayCode(), s.Quantity, s.QuantitySafety, creator, s.StockStatus()}
			for j, v := range values {
				cell, _ := excelize.CoordinatesToCellName(j+1, row)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "stoklar.xlsx"))
		return c.Send(buf.Bytes())
	}
}
