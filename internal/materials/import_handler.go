package materials

import (
	"errors"
	"fmt"
	"strings"

	"material-backend/internal/audit"
	"material-backend/internal/auth"
	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Beklenen kolon sırası:
// Malzeme Türü | Kod | Model | Birim | Özellikler | Oluşturan (sicil no) | Not
const materialImportColumns = 7

// POST /api/admin/materials/import (multipart, alan adı: file)
// (kod, model) anahtarıyla upsert yapar; hatalar satır numarasıyla listelenir
// ve tek satır bile hatalıysa hiçbir şey yazılmaz.
func ImportMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := auth.ActorFromContext(c); err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında veri satırı yok")
		}

		type materialRow struct {
			rowNumber int
			typeID    uint
			code      string
			model     string
			unit      string
			props     string
			creatorID uint
			notes     string
		}

		errorMessages := make([]string, 0)
		parsed := make([]materialRow, 0, len(rows)-1)
		seen := make(map[string]bool) // dosya içi kod-model tekilliği

		for i, row := range rows[1:] {
			rowNumber := i + 2

			if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
				continue
			}
			if len(row) < materialImportColumns-1 { // Not kolonu opsiyonel
				errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: en az %d kolon bekleniyor", rowNumber, materialImportColumns-1))
				continue
			}

			typeName := strings.TrimSpace(row[0])
			code := strings.TrimSpace(row[1])
			model := strings.TrimSpace(row[2])
			unit := strings.TrimSpace(row[3])
			props := strings.TrimSpace(row[4])
			creatorUsername := strings.TrimSpace(row[5])
			notes := ""
			if len(row) > 6 {
				notes = strings.TrimSpace(row[6])
			}

			if code == "" || model == "" {
				errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: kod ve model boş olamaz", rowNumber))
				continue
			}
			if !unitValid(unit) {
				errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: birim '%s' boş olamaz ve rakam içeremez", rowNumber, unit))
				continue
			}

			key := code + "-" + model
			if seen[key] {
				errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: kod '%s' ve model '%s' kombinasyonu dosyada yinelenmiş", rowNumber, code, model))
				continue
			}
			seen[key] = true

			var mt models.MaterialType
			if err := database.DB.First(&mt, "name = ?", typeName).Error; err != nil {
				errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: malzeme türü '%s' yok, önce türü oluşturun", rowNumber, typeName))
				continue
			}

			var creator models.User
			if err := database.DB.First(&creator, "username = ?", creatorUsername).Error; err != nil {
				errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: oluşturan '%s' bulunamadı, sicil numarasını kontrol edin", rowNumber, creatorUsername))
				continue
			}

			parsed = append(parsed, materialRow{
				rowNumber: rowNumber,
				typeID:    mt.ID,
				code:      code,
				model:     model,
				unit:      unit,
				props:     props,
				creatorID: creator.ID,
				notes:     notes,
			})
		}

		if len(errorMessages) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"errors":  errorMessages,
			})
		}

		createdCount := 0
		updatedCount := 0
		var created []models.Material
		var updated []models.Material

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for _, r := range parsed {
				var existing models.Material
				findErr := tx.First(&existing, "code = ? AND model = ?", r.code, r.model).Error

				switch {
				case findErr == nil:
					existing.MaterialTypeID = r.typeID
					existing.Unit = r.unit
					existing.Properties = r.props
					existing.Notes = r.notes
					if err := tx.Save(&existing).Error; err != nil {
						return fmt.Errorf("satır %d kaydedilemedi: %w", r.rowNumber, err)
					}
					updated = append(updated, existing)
					updatedCount++
				case errors.Is(findErr, gorm.ErrRecordNotFound):
					m := models.Material{
						MaterialTypeID: r.typeID,
						Code:           r.code,
						Model:          r.model,
						Unit:           r.unit,
						Properties:     r.props,
						Notes:          r.notes,
						CreatorID:      r.creatorID,
					}
					if err := tx.Create(&m).Error; err != nil {
						return fmt.Errorf("satır %d kaydedilemedi: %w", r.rowNumber, err)
					}
					created = append(created, m)
					createdCount++
				default:
					return findErr
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İçe aktarma başarısız: "+err.Error())
		}

		for i := range created {
			audit.Record(models.AuditActionCreate, &created[i])
		}
		for i := range updated {
			audit.Record(models.AuditActionUpdate, &updated[i])
		}

		return c.JSON(fiber.Map{
			"success":       true,
			"created_count": createdCount,
			"updated_count": updatedCount,
			"message":       fmt.Sprintf("%d malzeme oluşturuldu, %d malzeme güncellendi.", createdCount, updatedCount),
		})
	}
}
