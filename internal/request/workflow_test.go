package request

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"material-backend/internal/models"
	"material-backend/internal/stock"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entegrasyon testleri gerçek bir Postgres ister:
//
//	TEST_DATABASE_DSN="host=localhost user=postgres dbname=material_test ..." go test ./...
//
// Tanımlı değilse atlanır.
func setupWorkflowTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN tanımlı değil, entegrasyon testi atlandı")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Test veritabanına bağlanılamadı: %v", err)
	}

	err = db.AutoMigrate(
		&models.Base{},
		&models.Department{},
		&models.User{},
		&models.MaterialAdmin{},
		&models.MaterialType{},
		&models.Material{},
		&models.MaterialStock{},
		&models.MaterialRequest{},
		&models.MaterialRequestItem{},
	)
	if err != nil {
		t.Fatalf("AutoMigrate hatası: %v", err)
	}

	err = db.Exec(`TRUNCATE material_request_items, material_requests, material_stocks,
		materials, material_types, material_admins, users, departments, bases
		RESTART IDENTITY CASCADE`).Error
	if err != nil {
		t.Fatalf("Tablolar temizlenemedi: %v", err)
	}

	return db
}

type workflowFixture struct {
	Base      models.Base
	Dept      models.Department
	Creator   models.User
	Approver  models.MaterialAdmin
	Material  models.Material
	Stock     models.MaterialStock
}

// seedWorkflowFixture: Tek departman, tek onaylayıcı ve 10 adetlik bir stok.
func seedWorkflowFixture(t *testing.T, db *gorm.DB) workflowFixture {
	t.Helper()

	var f workflowFixture

	f.Creator = models.User{Username: "10001", Name: "Test Kullanıcı", Email: "test@example.com", PasswordHash: "x", Role: models.RoleMember}
	if err := db.Create(&f.Creator).Error; err != nil {
		t.Fatalf("Kullanıcı oluşturulamadı: %v", err)
	}

	f.Base = models.Base{Name: "Merkez", CreatorID: f.Creator.ID}
	if err := db.Create(&f.Base).Error; err != nil {
		t.Fatalf("Yerleşke oluşturulamadı: %v", err)
	}

	f.Dept = models.Department{BaseID: f.Base.ID, Name: "Üretim", CreatorID: f.Creator.ID}
	if err := db.Create(&f.Dept).Error; err != nil {
		t.Fatalf("Departman oluşturulamadı: %v", err)
	}

	approverUser := models.User{DepartmentID: &f.Dept.ID, Username: "10002", Name: "Onaylayan", Email: "onay@example.com", PasswordHash: "x", Role: models.RoleMaterialAdmin}
	if err := db.Create(&approverUser).Error; err != nil {
		t.Fatalf("Onaylayan kullanıcı oluşturulamadı: %v", err)
	}

	f.Approver = models.MaterialAdmin{BaseID: f.Base.ID, DepartmentID: f.Dept.ID, UserID: approverUser.ID, CreatorID: f.Creator.ID}
	if err := db.Create(&f.Approver).Error; err != nil {
		t.Fatalf("Malzeme yöneticisi oluşturulamadı: %v", err)
	}

	mt := models.MaterialType{Name: "Sarf", CreatorID: f.Creator.ID}
	if err := db.Create(&mt).Error; err != nil {
		t.Fatalf("Malzeme türü oluşturulamadı: %v", err)
	}

	f.Material = models.Material{MaterialTypeID: mt.ID, Code: "VD", Model: "X200", Unit: "adet", CreatorID: f.Creator.ID}
	if err := db.Create(&f.Material).Error; err != nil {
		t.Fatalf("Malzeme oluşturulamadı: %v", err)
	}

	f.Stock = models.MaterialStock{DepartmentID: f.Dept.ID, MaterialID: f.Material.ID, Quantity: 10, QuantitySafety: 2, CreatorID: &f.Creator.ID}
	if err := db.Create(&f.Stock).Error; err != nil {
		t.Fatalf("Stok oluşturulamadı: %v", err)
	}

	return f
}

func stockQuantity(t *testing.T, db *gorm.DB, stockID uint) int {
	t.Helper()
	var s models.MaterialStock
	if err := db.First(&s, "id = ?", stockID).Error; err != nil {
		t.Fatalf("Stok okunamadı: %v", err)
	}
	return s.Quantity
}

func newRequest(t *testing.T, db *gorm.DB, f workflowFixture, qty int) *models.MaterialRequest {
	t.Helper()
	req, err := Create(db, CreateInput{
		BaseID:       f.Base.ID,
		DepartmentID: f.Dept.ID,
		Applicant:    "Talep Eden",
		ApproverID:   f.Approver.ID,
		Items:        []ItemInput{{StockID: f.Stock.ID, Quantity: qty}},
	}, f.Creator.ID)
	if err != nil {
		t.Fatalf("Talep oluşturulamadı: %v", err)
	}
	return req
}

// ── Testler ───────────────────────────────────────────────────────────────────

func TestCreate_NumberSequence(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixture(t, db)

	day := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

	first, err := Create(db, CreateInput{
		BaseID: f.Base.ID, DepartmentID: f.Dept.ID, ApproverID: f.Approver.ID,
		Items: []ItemInput{{StockID: f.Stock.ID, Quantity: 1}}, Now: day,
	}, f.Creator.ID)
	if err != nil {
		t.Fatalf("İlk talep oluşturulamadı: %v", err)
	}
	if first.RequestNumber != "WL20240105001" {
		t.Errorf("İlk numara = %s, beklenen WL20240105001", first.RequestNumber)
	}

	second, err := Create(db, CreateInput{
		BaseID: f.Base.ID, DepartmentID: f.Dept.ID, ApproverID: f.Approver.ID,
		Items: []ItemInput{{StockID: f.Stock.ID, Quantity: 1}}, Now: day,
	}, f.Creator.ID)
	if err != nil {
		t.Fatalf("İkinci talep oluşturulamadı: %v", err)
	}
	if second.RequestNumber != "WL20240105002" {
		t.Errorf("İkinci numara = %s, beklenen WL20240105002", second.RequestNumber)
	}

	// Ertesi gün sayaç sıfırlanır
	nextDay, err := Create(db, CreateInput{
		BaseID: f.Base.ID, DepartmentID: f.Dept.ID, ApproverID: f.Approver.ID,
		Items: []ItemInput{{StockID: f.Stock.ID, Quantity: 1}}, Now: day.AddDate(0, 0, 1),
	}, f.Creator.ID)
	if err != nil {
		t.Fatalf("Ertesi gün talebi oluşturulamadı: %v", err)
	}
	if nextDay.RequestNumber != "WL20240106001" {
		t.Errorf("Ertesi gün numarası = %s, beklenen WL20240106001", nextDay.RequestNumber)
	}
}

func TestDecide_PassedDeductsExactlyOnce(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixture(t, db)

	req := newRequest(t, db, f, 6)

	if _, err := Decide(db, req.ID, models.ApprovalStatusPassed); err != nil {
		t.Fatalf("Onay başarısız: %v", err)
	}
	if got := stockQuantity(t, db, f.Stock.ID); got != 4 {
		t.Errorf("Onay sonrası stok = %d, beklenen 4", got)
	}

	// Onaylanmış talebin notunu düzenlemek düşüm tetiklemez
	notes := "ek not"
	if _, err := Update(db, req.ID, UpdateInput{Notes: &notes}); err != nil {
		t.Fatalf("Not güncellenemedi: %v", err)
	}
	if got := stockQuantity(t, db, f.Stock.ID); got != 4 {
		t.Errorf("Not güncellemesi sonrası stok = %d, beklenen 4", got)
	}

	// Aynı durumun yeniden gönderilmesi de no-op
	passed := models.ApprovalStatusPassed
	if _, err := Update(db, req.ID, UpdateInput{Status: &passed}); err != nil {
		t.Fatalf("Aynı durumla güncelleme hata döndü: %v", err)
	}
	if got := stockQuantity(t, db, f.Stock.ID); got != 4 {
		t.Errorf("Yeniden kayıt sonrası stok = %d, beklenen 4", got)
	}
}

func TestDecide_InsufficientStockRollsBack(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixture(t, db)

	// Stok 10: her biri 6 isteyen iki talep, giriş anında ikisi de geçerli
	first := newRequest(t, db, f, 6)
	second := newRequest(t, db, f, 6)

	if _, err := Decide(db, first.ID, models.ApprovalStatusPassed); err != nil {
		t.Fatalf("İlk onay başarısız: %v", err)
	}
	if got := stockQuantity(t, db, f.Stock.ID); got != 4 {
		t.Fatalf("İlk onay sonrası stok = %d, beklenen 4", got)
	}

	// İkinci onay: 6 > 4, düşüm yapılmadan geri alınmalı
	_, err := Decide(db, second.ID, models.ApprovalStatusPassed)
	var insufficientErr *stock.InsufficientStockError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("InsufficientStockError bekleniyordu, gelen: %v", err)
	}

	if got := stockQuantity(t, db, f.Stock.ID); got != 4 {
		t.Errorf("Başarısız onay sonrası stok = %d, beklenen 4 (değişmemeli)", got)
	}

	var reloaded models.MaterialRequest
	if err := db.First(&reloaded, "id = ?", second.ID).Error; err != nil {
		t.Fatalf("Talep okunamadı: %v", err)
	}
	if reloaded.ApprovalStatus != models.ApprovalStatusApproving {
		t.Errorf("Başarısız onay sonrası durum = %s, beklenen approving", reloaded.ApprovalStatus)
	}
}

func TestUpdate_TerminalRequestLocked(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixture(t, db)

	req := newRequest(t, db, f, 3)
	if _, err := Decide(db, req.ID, models.ApprovalStatusNoPass); err != nil {
		t.Fatalf("Red başarısız: %v", err)
	}

	// Reddedilen talepte kalem değişikliği reddedilir
	items := []ItemInput{{StockID: f.Stock.ID, Quantity: 1}}
	_, err := Update(db, req.ID, UpdateInput{Items: &items})
	var lockedErr *RequestLockedError
	if !errors.As(err, &lockedErr) {
		t.Fatalf("RequestLockedError bekleniyordu, gelen: %v", err)
	}

	// Durumun geri çevrilmesi de reddedilir
	approving := models.ApprovalStatusApproving
	if _, err := Update(db, req.ID, UpdateInput{Status: &approving}); err == nil {
		t.Error("Son durumdan geri dönüş için hata bekleniyordu")
	}

	// nopass hiçbir zaman düşüm yapmaz
	if got := stockQuantity(t, db, f.Stock.ID); got != 10 {
		t.Errorf("Red sonrası stok = %d, beklenen 10", got)
	}
}

func TestCreate_WithPassedStatusDeductsImmediately(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixture(t, db)

	_, err := Create(db, CreateInput{
		BaseID: f.Base.ID, DepartmentID: f.Dept.ID, ApproverID: f.Approver.ID,
		Status: models.ApprovalStatusPassed,
		Items:  []ItemInput{{StockID: f.Stock.ID, Quantity: 4}},
	}, f.Creator.ID)
	if err != nil {
		t.Fatalf("Talep oluşturulamadı: %v", err)
	}

	if got := stockQuantity(t, db, f.Stock.ID); got != 6 {
		t.Errorf("Doğrudan onaylı oluşturma sonrası stok = %d, beklenen 6", got)
	}
}

func TestDecide_ConcurrentApprovalsOnlyOneWins(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixture(t, db)

	first := newRequest(t, db, f, 6)
	second := newRequest(t, db, f, 6)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, id := range []uint{first.ID, second.ID} {
		wg.Add(1)
		go func(requestID uint) {
			defer wg.Done()
			_, err := Decide(db, requestID, models.ApprovalStatusPassed)
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		failed++
		var insufficientErr *stock.InsufficientStockError
		if !errors.As(err, &insufficientErr) {
			t.Errorf("InsufficientStockError bekleniyordu, gelen: %v", err)
		}
	}

	if succeeded != 1 || failed != 1 {
		t.Errorf("Bir onay geçmeli, biri reddedilmeli; geçen=%d, reddedilen=%d", succeeded, failed)
	}
	if got := stockQuantity(t, db, f.Stock.ID); got != 4 {
		t.Errorf("Eşzamanlı onaylar sonrası stok = %d, beklenen 4", got)
	}
}

func TestItemsSummary(t *testing.T) {
	req := &models.MaterialRequest{
		Items: []models.MaterialRequestItem{
			{
				Quantity: 3,
				Stock: models.MaterialStock{
					Material: models.Material{Code: "VD", Model: "X200", Unit: "adet"},
				},
			},
		},
	}

	if got := ItemsSummary(req); got != "Malzeme: VD-X200; Miktar: 3 adet" {
		t.Errorf("ItemsSummary = %q", got)
	}

	empty := &models.MaterialRequest{}
	if got := ItemsSummary(empty); got != "Kalem yok" {
		t.Errorf("Boş talep için ItemsSummary = %q, beklenen 'Kalem yok'", got)
	}
}
