package stock

import "fmt"

// NegativeValueError: Miktar ya da uyarı eşiği sıfırın altına çekilmeye
// çalışıldı. Kayıt yazılmadan önce yakalanır.
type NegativeValueError struct {
	Field string
	Value int
}

func (e *NegativeValueError) Error() string {
	return fmt.Sprintf("%s negatif olamaz: %d", e.Field, e.Value)
}

// InsufficientStockError: İstenen/düşülecek miktar mevcut stoktan büyük.
type InsufficientStockError struct {
	MaterialCode string
	Available    int
	Requested    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Stok yetersiz: %s için mevcut %d, istenen %d", e.MaterialCode, e.Available, e.Requested)
}

// DuplicateStockKeyError: (departman, malzeme) tekilliği ihlal edildi.
// Excel içe aktarmada satır numarasıyla birlikte döner.
type DuplicateStockKeyError struct {
	Row        int
	Department string
	Material   string
}

func (e *DuplicateStockKeyError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("Satır %d: '%s' departmanı ile '%s' malzemesi için zaten bir stok kaydı var", e.Row, e.Department, e.Material)
	}
	return fmt.Sprintf("'%s' departmanı ile '%s' malzemesi için zaten bir stok kaydı var", e.Department, e.Material)
}
