package request

import (
	"testing"
	"time"
)

func TestNumberPrefixFor(t *testing.T) {
	day := time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC)
	if got := numberPrefixFor(day); got != "WL20240105" {
		t.Errorf("numberPrefixFor = %s, beklenen WL20240105", got)
	}
}

func TestNextRequestNumber(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		last   string
		want   string
	}{
		{"gün boş, 001 ile başlar", "WL20240105", "", "WL20240105001"},
		{"sıradaki numara", "WL20240105", "WL20240105001", "WL20240105002"},
		{"iki haneli sayaç", "WL20240105", "WL20240105041", "WL20240105042"},
		{"üç haneli sayaç taşmadan artar", "WL20240105", "WL20240105099", "WL20240105100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nextRequestNumber(tt.prefix, tt.last)
			if err != nil {
				t.Fatalf("nextRequestNumber hata döndü: %v", err)
			}
			if got != tt.want {
				t.Errorf("nextRequestNumber = %s, beklenen %s", got, tt.want)
			}
		})
	}
}

func TestNextRequestNumber_InvalidSuffix(t *testing.T) {
	if _, err := nextRequestNumber("WL20240105", "WL20240105abc"); err == nil {
		t.Error("bozuk numara için hata bekleniyordu")
	}
}

// Gün değişince sayaç sıfırlanır: yeni günün prefix'i altında kayıt yoktur,
// ilk numara yine 001 olur.
func TestNextRequestNumber_DayRollover(t *testing.T) {
	newDay := numberPrefixFor(time.Date(2024, 1, 6, 0, 0, 1, 0, time.UTC))
	got, err := nextRequestNumber(newDay, "")
	if err != nil {
		t.Fatalf("nextRequestNumber hata döndü: %v", err)
	}
	if got != "WL20240106001" {
		t.Errorf("nextRequestNumber = %s, beklenen WL20240106001", got)
	}
}
