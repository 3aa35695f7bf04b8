package models

import "testing"

func TestApprovalStatusTerminal(t *testing.T) {
	if ApprovalStatusApproving.Terminal() {
		t.Error("approving son durum değildir")
	}
	if !ApprovalStatusPassed.Terminal() {
		t.Error("passed son durumdur")
	}
	if !ApprovalStatusNoPass.Terminal() {
		t.Error("nopass son durumdur")
	}
	if ApprovalStatus("bilinmeyen").Valid() {
		t.Error("bilinmeyen durum geçerli sayılmamalı")
	}
}

func TestStockStatus(t *testing.T) {
	s := MaterialStock{Quantity: 5, QuantitySafety: 3}
	if s.BelowSafety() || s.StockStatus() != "normal" {
		t.Errorf("5 >= 3 için durum normal olmalı, %s", s.StockStatus())
	}

	// Eşiğe eşit miktar uyarı değildir, eşiğin altı uyarıdır
	s = MaterialStock{Quantity: 3, QuantitySafety: 3}
	if s.StockStatus() != "normal" {
		t.Errorf("eşiğe eşit miktar normal olmalı, %s", s.StockStatus())
	}
	s = MaterialStock{Quantity: 2, QuantitySafety: 3}
	if !s.BelowSafety() || s.StockStatus() != "warning" {
		t.Errorf("2 < 3 için durum warning olmalı, %s", s.StockStatus())
	}

	// Sıfır stok, eşik de sıfırsa uyarı üretmez
	s = MaterialStock{Quantity: 0, QuantitySafety: 0}
	if s.StockStatus() != "normal" {
		t.Errorf("0/0 için durum normal olmalı, %s", s.StockStatus())
	}
}
