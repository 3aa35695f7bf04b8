package request

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"material-backend/internal/models"

	"gorm.io/gorm"
)

const requestNumberPrefix = "WL"

// numberPrefixFor: "WL" + yyyymmdd. Sayaç gün bazında sıfırlanır.
func numberPrefixFor(t time.Time) string {
	return requestNumberPrefix + t.Format("20060102")
}

// nextRequestNumber: Prefix'e ait son numaradan sonrakini üretir.
// last boşsa gün 001 ile başlar.
func nextRequestNumber(prefix, last string) (string, error) {
	if last == "" {
		return prefix + "001", nil
	}
	suffix := strings.TrimPrefix(last, prefix)
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return "", fmt.Errorf("talep numarası çözümlenemedi: %s", last)
	}
	return fmt.Sprintf("%s%03d", prefix, n+1), nil
}

// GenerateRequestNumber: Günün prefix'i için sıradaki aday numarayı üretir.
// Oku-sonra-yaz olduğu için tek başına atomik değildir: eşzamanlı iki
// oluşturma aynı adayı hesaplayabilir. Tekillik unique index'e bırakılır,
// çakışmada çağıran (Create) yeni numarayla yeniden dener.
func GenerateRequestNumber(tx *gorm.DB, now time.Time) (string, error) {
	prefix := numberPrefixFor(now)

	var numbers []string
	err := tx.Model(&models.MaterialRequest{}).
		Where("request_number LIKE ?", prefix+"%").
		Order("request_number DESC").
		Limit(1).
		Pluck("request_number", &numbers).Error
	if err != nil {
		return "", err
	}

	last := ""
	if len(numbers) > 0 {
		last = numbers[0]
	}
	return nextRequestNumber(prefix, last)
}
