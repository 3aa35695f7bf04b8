package request

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"material-backend/internal/models"
	"material-backend/internal/stock"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Talep yaşam döngüsü: approving -> passed | nopass. Karar verilince
// kalemler kilitlenir ve passed'e geçişte stoklar tam bir kez düşülür.
// Durum değişimi ile stok düşümü aynı transaction'dadır: herhangi bir
// kalemde stok yetmezse geçişin tamamı geri alınır.

const maxNumberAttempts = 5

type ItemInput struct {
	StockID  uint `json:"stock_id"`
	Quantity int  `json:"quantity"`
}

type CreateInput struct {
	BaseID       uint
	DepartmentID uint
	Applicant    string
	ApproverID   uint
	Status       models.ApprovalStatus // boş -> approving
	Notes        string
	Items        []ItemInput
	Now          time.Time // sıfırsa time.Now
}

type UpdateInput struct {
	Applicant  *string
	ApproverID *uint
	Notes      *string
	Status     *models.ApprovalStatus
	Items      *[]ItemInput // nil = kalemlere dokunma
}

// validateItems: Kalem doğrulaması (ekleme/düzenleme anında, karardan önce).
// Her kalem için: miktar pozitif, stok talep edilen departmana ait ve
// istenen miktar giriş anındaki stoğu aşmıyor.
func validateItems(tx *gorm.DB, departmentID uint, items []ItemInput) error {
	for _, item := range items {
		if item.StockID == 0 {
			return fmt.Errorf("kalemde stock_id zorunlu")
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("kalem miktarı pozitif olmalı: %d", item.Quantity)
		}

		var s models.MaterialStock
		if err := tx.Preload("Material").First(&s, "id = ?", item.StockID).Error; err != nil {
			return fmt.Errorf("stok kaydı bulunamadı (ID: %d)", item.StockID)
		}
		if s.DepartmentID != departmentID {
			return fmt.Errorf("stok kaydı %s talep edilen departmana ait değil", s.Material.DisplayCode())
		}
		if item.Quantity > s.Quantity {
			return &stock.InsufficientStockError{
				MaterialCode: s.Material.DisplayCode(),
				Available:    s.Quantity,
				Requested:    item.Quantity,
			}
		}
	}
	return nil
}

// deductAll: Talebin tüm kalemlerini stoktan düşer. Stok satırları ID
// sırasında kilitlenir (deadlock önlemi); tek kalem bile yetersizse hata
// döner ve çağıranın transaction'ı her şeyi geri alır.
func deductAll(tx *gorm.DB, requestID uint) error {
	var items []models.MaterialRequestItem
	if err := tx.Where("request_id = ?", requestID).Find(&items).Error; err != nil {
		return err
	}

	sorted := make([]models.MaterialRequestItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StockID < sorted[j].StockID })

	for _, item := range sorted {
		if err := stock.Deduct(tx, item.StockID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Create: Yeni talep oluşturur. Numara üretimi + insert tek transaction'da
// döner; unique ihlalinde numara yeniden üretilir (en fazla maxNumberAttempts).
// Talep doğrudan passed durumuyla oluşturulursa düşüm de aynı transaction'da yapılır.
func Create(db *gorm.DB, in CreateInput, creatorID uint) (*models.MaterialRequest, error) {
	status := in.Status
	if status == "" {
		status = models.ApprovalStatusApproving
	}
	if !status.Valid() {
		return nil, fmt.Errorf("geçersiz onay durumu: %s", status)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	var req *models.MaterialRequest
	var lastNumber string

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		req = nil
		err := db.Transaction(func(tx *gorm.DB) error {
			var approver models.MaterialAdmin
			if err := tx.First(&approver, "id = ?", in.ApproverID).Error; err != nil {
				return fmt.Errorf("onaylayıcı bulunamadı (ID: %d)", in.ApproverID)
			}
			if approver.DepartmentID != in.DepartmentID {
				return fmt.Errorf("onaylayıcı talep edilen departmanın malzeme yöneticisi değil")
			}

			if err := validateItems(tx, in.DepartmentID, in.Items); err != nil {
				return err
			}

			number, err := GenerateRequestNumber(tx, now)
			if err != nil {
				return err
			}
			lastNumber = number

			r := models.MaterialRequest{
				RequestNumber:  number,
				BaseID:         in.BaseID,
				DepartmentID:   in.DepartmentID,
				Applicant:      in.Applicant,
				ApproverID:     in.ApproverID,
				ApprovalStatus: status,
				CreatorID:      creatorID,
				Notes:          in.Notes,
			}
			for _, item := range in.Items {
				r.Items = append(r.Items, models.MaterialRequestItem{
					StockID:  item.StockID,
					Quantity: item.Quantity,
				})
			}

			if err := tx.Create(&r).Error; err != nil {
				return err
			}

			// Doğrudan passed ile oluşturma da bir geçiştir: düşüm hemen yapılır
			if status == models.ApprovalStatusPassed {
				if err := deductAll(tx, r.ID); err != nil {
					return err
				}
			}

			req = &r
			return nil
		})

		if err == nil {
			return req, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Eşzamanlı oluşturma aynı numarayı hesapladı; yeni numarayla dene
			continue
		}
		return nil, err
	}

	return nil, &DuplicateRequestNumberError{Number: lastNumber, Attempts: maxNumberAttempts}
}

// Update: Talebi günceller. Karar verilmiş taleplerde kalem ve durum
// değişikliği RequestLockedError ile reddedilir; talep numarası hiçbir
// koşulda değişmez. approving -> passed geçişi düşümü tetikler, passed
// durumundaki bir talebin yeniden kaydı stok açısından no-op'tur.
func Update(db *gorm.DB, id uint, in UpdateInput) (*models.MaterialRequest, error) {
	var req models.MaterialRequest

	err := db.Transaction(func(tx *gorm.DB) error {
		// Aynı talep üzerindeki eşzamanlı kararları sırala
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, "id = ?", id).Error; err != nil {
			return err
		}

		previous := req.ApprovalStatus

		if previous.Terminal() {
			if in.Items != nil {
				return &RequestLockedError{RequestNumber: req.RequestNumber, Status: previous}
			}
			if in.Status != nil && *in.Status != previous {
				return &RequestLockedError{RequestNumber: req.RequestNumber, Status: previous}
			}
		}

		if in.Applicant != nil {
			req.Applicant = *in.Applicant
		}
		if in.Notes != nil {
			req.Notes = *in.Notes
		}
		if in.ApproverID != nil && *in.ApproverID != req.ApproverID {
			if previous.Terminal() {
				return &RequestLockedError{RequestNumber: req.RequestNumber, Status: previous}
			}
			var approver models.MaterialAdmin
			if err := tx.First(&approver, "id = ?", *in.ApproverID).Error; err != nil {
				return fmt.Errorf("onaylayıcı bulunamadı (ID: %d)", *in.ApproverID)
			}
			if approver.DepartmentID != req.DepartmentID {
				return fmt.Errorf("onaylayıcı talep edilen departmanın malzeme yöneticisi değil")
			}
			req.ApproverID = *in.ApproverID
		}

		if in.Items != nil {
			if err := validateItems(tx, req.DepartmentID, *in.Items); err != nil {
				return err
			}
			if err := tx.Where("request_id = ?", req.ID).Delete(&models.MaterialRequestItem{}).Error; err != nil {
				return err
			}
			for _, item := range *in.Items {
				newItem := models.MaterialRequestItem{
					RequestID: req.ID,
					StockID:   item.StockID,
					Quantity:  item.Quantity,
				}
				if err := tx.Create(&newItem).Error; err != nil {
					return err
				}
			}
		}

		if in.Status != nil && *in.Status != previous {
			if !in.Status.Valid() {
				return fmt.Errorf("geçersiz onay durumu: %s", *in.Status)
			}
			req.ApprovalStatus = *in.Status

			// Düşüm sadece passed'e GEÇİŞTE: önceki durum passed değilken
			// yenisi passed ise. Zaten passed olan talebin yeniden kaydı düşüm yapmaz.
			if *in.Status == models.ApprovalStatusPassed {
				if err := deductAll(tx, req.ID); err != nil {
					return err
				}
			}
		}

		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}

	return &req, nil
}

// Decide: approving durumundaki talebi karara bağlar (passed | nopass).
func Decide(db *gorm.DB, id uint, status models.ApprovalStatus) (*models.MaterialRequest, error) {
	if status != models.ApprovalStatusPassed && status != models.ApprovalStatusNoPass {
		return nil, fmt.Errorf("karar 'passed' ya da 'nopass' olmalı: %s", status)
	}
	return Update(db, id, UpdateInput{Status: &status})
}

// ItemsSummary: İlk kalemin malzeme kodu/modeli ve miktar+birimi.
// Sadece listeleme ekranında gösterim içindir.
func ItemsSummary(req *models.MaterialRequest) string {
	if len(req.Items) == 0 {
		return "Kalem yok"
	}
	item := req.Items[0]
	m := item.Stock.Material
	return fmt.Sprintf("Malzeme: %s; Miktar: %d %s", m.DisplayCode(), item.Quantity, m.Unit)
}
