package stock

import (
	"strings"
	"testing"
)

func TestSplitMaterialKey(t *testing.T) {
	code, model, err := splitMaterialKey("VD-X200")
	if err != nil {
		t.Fatalf("splitMaterialKey hata döndü: %v", err)
	}
	if code != "VD" || model != "X200" {
		t.Errorf("splitMaterialKey = (%s, %s), beklenen (VD, X200)", code, model)
	}

	// Model tire içerebilir, sadece ilk tirede bölünür
	code, model, err = splitMaterialKey("KB-CAT6-5M")
	if err != nil {
		t.Fatalf("splitMaterialKey hata döndü: %v", err)
	}
	if code != "KB" || model != "CAT6-5M" {
		t.Errorf("splitMaterialKey = (%s, %s), beklenen (KB, CAT6-5M)", code, model)
	}

	for _, bad := range []string{"VDX200", "-X200", "VD-", ""} {
		if _, _, err := splitMaterialKey(bad); err == nil {
			t.Errorf("splitMaterialKey(%q) için hata bekleniyordu", bad)
		}
	}
}

func TestParseStockRows_Valid(t *testing.T) {
	rows := [][]string{
		{"Üretim", "VD-X200", "10", "2", "10001"},
		{"Üretim", "KB-CAT6-5M", "0", "0", "10001"},
	}

	parsed, errs := parseStockRows(rows, 1)
	if len(errs) != 0 {
		t.Fatalf("Hata beklenmiyordu: %v", errs)
	}
	if len(parsed) != 2 {
		t.Fatalf("2 satır bekleniyordu, %d satır var", len(parsed))
	}

	if parsed[0].Department != "Üretim" || parsed[0].MaterialCode != "VD" || parsed[0].MaterialModel != "X200" {
		t.Errorf("İlk satır yanlış çözümlendi: %+v", parsed[0])
	}
	if parsed[0].Quantity != 10 || parsed[0].QuantitySafety != 2 {
		t.Errorf("İlk satır miktarları yanlış: %+v", parsed[0])
	}
	if parsed[0].RowNumber != 2 {
		t.Errorf("İlk veri satırının dosyadaki numarası 2 olmalı, %d", parsed[0].RowNumber)
	}
}

func TestParseStockRows_SkipsEmptyRows(t *testing.T) {
	rows := [][]string{
		{"Üretim", "VD-X200", "10", "2", "10001"},
		{"", "", "", "", ""},
		{},
		{"Depo", "VD-X200", "5", "1", "10001"},
	}

	parsed, errs := parseStockRows(rows, 1)
	if len(errs) != 0 {
		t.Fatalf("Hata beklenmiyordu: %v", errs)
	}
	if len(parsed) != 2 {
		t.Errorf("Boş satırlar atlanmalı, %d satır çözümlendi", len(parsed))
	}
	if parsed[1].RowNumber != 5 {
		t.Errorf("Boş satırlar numaralandırmayı kaydırmamalı, son satır numarası = %d, beklenen 5", parsed[1].RowNumber)
	}
}

func TestParseStockRows_CollectsErrorsWithRowNumbers(t *testing.T) {
	rows := [][]string{
		{"Üretim", "VDX200", "10", "2", "10001"},   // malzeme anahtarı bozuk
		{"Üretim", "VD-X200", "-3", "2", "10001"},  // negatif stok
		{"Üretim", "VD-X200", "on", "2", "10001"},  // sayı değil
		{"", "VD-X200", "10", "2", "10001"},        // departman boş
		{"Üretim", "VD-X200", "10", "2", ""},       // oluşturan boş
	}

	parsed, errs := parseStockRows(rows, 1)
	if len(parsed) != 0 {
		t.Errorf("Hiçbir satır geçmemeliydi, %d satır geçti", len(parsed))
	}
	if len(errs) != 5 {
		t.Fatalf("5 hata bekleniyordu, %d hata var: %v", len(errs), errs)
	}

	for i, wantPrefix := range []string{"Satır 2", "Satır 3", "Satır 4", "Satır 5", "Satır 6"} {
		if !strings.HasPrefix(errs[i], wantPrefix) {
			t.Errorf("Hata %d %q ile başlamalı: %q", i, wantPrefix, errs[i])
		}
	}
}

func TestParseStockRows_DuplicateKeyInFile(t *testing.T) {
	rows := [][]string{
		{"Üretim", "VD-X200", "10", "2", "10001"},
		{"Üretim", "VD-X200", "7", "1", "10001"},
	}

	parsed, errs := parseStockRows(rows, 1)
	if len(parsed) != 1 {
		t.Errorf("Sadece ilk satır geçmeli, %d satır geçti", len(parsed))
	}
	if len(errs) != 1 {
		t.Fatalf("1 hata bekleniyordu, %d hata var: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0], "Satır 3") || !strings.Contains(errs[0], "zaten bir stok kaydı var") {
		t.Errorf("Yinelenen anahtar hatası satır numarası içermeli: %q", errs[0])
	}

	// Farklı departman aynı malzeme çakışma değildir
	rows = [][]string{
		{"Üretim", "VD-X200", "10", "2", "10001"},
		{"Depo", "VD-X200", "7", "1", "10001"},
	}
	parsed, errs = parseStockRows(rows, 1)
	if len(errs) != 0 || len(parsed) != 2 {
		t.Errorf("Farklı departmanlar çakışmamalı: parsed=%d errs=%v", len(parsed), errs)
	}
}
