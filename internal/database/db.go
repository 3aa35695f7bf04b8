package database

import (
	"log"

	"material-backend/internal/config"
	"material-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	// TranslateError: unique ihlalleri gorm.ErrDuplicatedKey olarak gelsin
	// (talep numarası çakışmasında yeniden deneme bunun üstüne kurulu)
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.Base{},
		&models.Department{},
		&models.User{},
		&models.MaterialAdmin{},
		&models.MaterialType{},
		&models.Material{},
		&models.MaterialStock{},
		&models.MaterialRequest{},
		&models.MaterialRequestItem{},
		&models.DeviceType{},
		&models.DepartmentDevice{},
		&models.EquipmentLog{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
