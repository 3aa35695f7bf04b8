package stock

import (
	"fmt"

	"material-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValidateQuantity: Stok miktarı 0'dan küçük olamaz.
func ValidateQuantity(value int) error {
	if value < 0 {
		return &NegativeValueError{Field: "Stok miktarı", Value: value}
	}
	return nil
}

// ValidateQuantitySafety: Uyarı eşiği 0'dan küçük olamaz.
func ValidateQuantitySafety(value int) error {
	if value < 0 {
		return &NegativeValueError{Field: "Stok uyarı eşiği", Value: value}
	}
	return nil
}

// Deduct: Stok kaydından amount kadar düşer. Satırı FOR UPDATE ile kilitler,
// böylece aynı stoğa dokunan eşzamanlı onaylar sıraya girer ve kaybolan
// güncelleme (iki onayın aynı başlangıç miktarını okuması) engellenir.
// amount mevcut miktarı aşıyorsa hiçbir şey yazılmaz, InsufficientStockError döner.
func Deduct(tx *gorm.DB, stockID uint, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("düşülecek miktar pozitif olmalı: %d", amount)
	}

	var s models.MaterialStock
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, "id = ?", stockID).Error; err != nil {
		return fmt.Errorf("stok kaydı bulunamadı (ID: %d): %w", stockID, err)
	}

	if amount > s.Quantity {
		code := fmt.Sprintf("stok #%d", stockID)
		var material models.Material
		if err := tx.First(&material, "id = ?", s.MaterialID).Error; err == nil {
			code = material.DisplayCode()
		}
		return &InsufficientStockError{MaterialCode: code, Available: s.Quantity, Requested: amount}
	}

	return tx.Model(&models.MaterialStock{}).
		Where("id = ?", stockID).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", amount)).Error
}
