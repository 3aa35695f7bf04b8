package stock

import (
	"errors"
	"fmt"
	"strconv"
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
// Departman | Malzeme (kod-model) | Stok | Stok Uyarı | Oluşturan (sicil no)
const stockImportColumns = 5

type stockImportRow struct {
	RowNumber       int
	Department      string
	MaterialCode    string
	MaterialModel   string
	Quantity        int
	QuantitySafety  int
	CreatorUsername string
}

// splitMaterialKey: "kod-model" anahtarını ayırır. Model kısmı tire içerebilir,
// o yüzden sadece ilk tirede bölünür.
func splitMaterialKey(value string) (code, model string, err error) {
	parts := strings.SplitN(value, "-", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("malzeme '%s' hatalı, doğru biçim [kod-model]", value)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// parseStockRows: Satırların yapısal doğrulaması. Veritabanına bakmadan
// yakalanabilen her hata (biçim, negatif sayı, dosya içi yinelenen
// departman+malzeme çifti) satır numarasıyla birlikte toplanır.
// Başlık satırının ayıklanmış olduğu varsayılır; rowOffset, hata
// mesajlarındaki satır numarasının dosyadakiyle eşleşmesi içindir.
func parseStockRows(rows [][]string, rowOffset int) ([]stockImportRow, []string) {
	parsed := make([]stockImportRow, 0, len(rows))
	errorMessages := make([]string, 0)
	seen := make(map[string]int) // departman|malzeme -> ilk görüldüğü satır

	for i, row := range rows {
		rowNumber := i + rowOffset + 1

		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		if len(row) < stockImportColumns {
			errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: %d kolon bekleniyor, %d kolon var", rowNumber, stockImportColumns, len(row)))
			continue
		}

		department := strings.TrimSpace(row[0])
		materialKey := strings.TrimSpace(row[1])
		creator := strings.TrimSpace(row[4])

		if department == "" {
			errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: departman boş olamaz", rowNumber))
			continue
		}

		code, model, err := splitMaterialKey(materialKey)
		if err != nil {
			errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: %s", rowNumber, err.Error()))
			continue
		}

		quantity, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: stok '%s' tam sayı olmalı", rowNumber, row[2]))
			continue
		}
		quantitySafety, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: stok uyarı '%s' tam sayı olmalı", rowNumber, row[3]))
			continue
		}
		if err := ValidateQuantity(quantity); err != nil {
			errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: %s", rowNumber, err.Error()))
			continue
		}
		if err := ValidateQuantitySafety(quantitySafety); err != nil {
			errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: %s", rowNumber, err.Error()))
			continue
		}

		if creator == "" {
			errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: oluşturan (sicil no) boş olamaz", rowNumber))
			continue
		}

		key := department + "|" + materialKey
		if _, dup := seen[key]; dup {
			dupErr := &DuplicateStockKeyError{Row: rowNumber, Department: department, Material: materialKey}
			errorMessages = append(errorMessages, dupErr.Error())
			continue
		}
		seen[key] = rowNumber

		parsed = append(parsed, stockImportRow{
			RowNumber:       rowNumber,
			Department:      department,
			MaterialCode:    code,
			MaterialModel:   model,
			Quantity:        quantity,
			QuantitySafety:  quantitySafety,
			CreatorUsername: creator,
		})
	}

	return parsed, errorMessages
}

// POST /api/admin/stocks/import (multipart, alan adı: file)
// Her satır etkileşimli girişle aynı kurallardan geçer; tek bir satır bile
// hatalıysa hiçbir şey yazılmaz, hatalar satır numaralarıyla listelenir.
func ImportStocksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
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

		// İlk satır başlık
		parsed, errorMessages := parseStockRows(rows[1:], 1)

		// Veritabanı doğrulamaları: departman, malzeme ve oluşturan var mı?
		type resolvedRow struct {
			row          stockImportRow
			departmentID uint
			materialID   uint
			creatorID    uint
		}
		resolved := make([]resolvedRow, 0, len(parsed))

		for _, r := range parsed {
			var department models.Department
			if err := database.DB.First(&department, "name = ?", r.Department).Error; err != nil {
				errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: departman '%s' bulunamadı", r.RowNumber, r.Department))
				continue
			}

			var material models.Material
			if err := database.DB.First(&material, "code = ? AND model = ?", r.MaterialCode, r.MaterialModel).Error; err != nil {
				errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: malzeme '%s-%s' sistemde yok, önce malzemeyi oluşturun", r.RowNumber, r.MaterialCode, r.MaterialModel))
				continue
			}

			var creator models.User
			if err := database.DB.First(&creator, "username = ?", r.CreatorUsername).Error; err != nil {
				errorMessages = append(errorMessages, fmt.Sprintf("Satır %d: oluşturan '%s' bulunamadı, sicil numarasını kontrol edin", r.RowNumber, r.CreatorUsername))
				continue
			}

			resolved = append(resolved, resolvedRow{row: r, departmentID: department.ID, materialID: material.ID, creatorID: creator.ID})
		}

		if len(errorMessages) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"errors":  errorMessages,
			})
		}

		createdCount := 0
		updatedCount := 0
		var created []models.MaterialStock
		var updated []models.MaterialStock

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for _, r := range resolved {
				var existing models.MaterialStock
				findErr := tx.First(&existing, "department_id = ? AND material_id = ?", r.departmentID, r.materialID).Error

				switch {
				case findErr == nil:
					existing.Quantity = r.row.Quantity
					existing.QuantitySafety = r.row.QuantitySafety
					if err := tx.Save(&existing).Error; err != nil {
						return fmt.Errorf("satır %d kaydedilemedi: %w", r.row.RowNumber, err)
					}
					updated = append(updated, existing)
					updatedCount++
				case errors.Is(findErr, gorm.ErrRecordNotFound):
					creatorID := r.creatorID
					entry := models.MaterialStock{
						DepartmentID:   r.departmentID,
						MaterialID:     r.materialID,
						Quantity:       r.row.Quantity,
						QuantitySafety: r.row.QuantitySafety,
						CreatorID:      &creatorID,
					}
					if err := tx.Create(&entry).Error; err != nil {
						return fmt.Errorf("satır %d kaydedilemedi: %w", r.row.RowNumber, err)
					}
					created = append(created, entry)
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
			"message":       fmt.Sprintf("%d stok kaydı oluşturuldu, %d stok kaydı güncellendi. (%s)", createdCount, updatedCount, actor.UserName),
		})
	}
}
