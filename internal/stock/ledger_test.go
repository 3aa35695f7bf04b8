package stock

import (
	"errors"
	"testing"
)

func TestValidateQuantity(t *testing.T) {
	if err := ValidateQuantity(0); err != nil {
		t.Errorf("Sıfır miktar geçerli olmalı, hata: %v", err)
	}
	if err := ValidateQuantity(100); err != nil {
		t.Errorf("Pozitif miktar geçerli olmalı, hata: %v", err)
	}

	err := ValidateQuantity(-1)
	var negErr *NegativeValueError
	if !errors.As(err, &negErr) {
		t.Fatalf("NegativeValueError bekleniyordu, gelen: %v", err)
	}
	if negErr.Value != -1 {
		t.Errorf("Hatadaki değer = %d, beklenen -1", negErr.Value)
	}
}

func TestValidateQuantitySafety(t *testing.T) {
	if err := ValidateQuantitySafety(0); err != nil {
		t.Errorf("Sıfır eşik geçerli olmalı, hata: %v", err)
	}

	err := ValidateQuantitySafety(-5)
	var negErr *NegativeValueError
	if !errors.As(err, &negErr) {
		t.Fatalf("NegativeValueError bekleniyordu, gelen: %v", err)
	}
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &InsufficientStockError{MaterialCode: "VD-X200", Available: 4, Requested: 6}
	want := "Stok yetersiz: VD-X200 için mevcut 4, istenen 6"
	if err.Error() != want {
		t.Errorf("Error() = %q, beklenen %q", err.Error(), want)
	}
}
