package request

import (
	"fmt"

	"material-backend/internal/models"
)

// RequestLockedError: Kararı verilmiş (passed/nopass) bir talebin kalemleri
// ya da durumu değiştirilmeye çalışıldı.
type RequestLockedError struct {
	RequestNumber string
	Status        models.ApprovalStatus
}

func (e *RequestLockedError) Error() string {
	return fmt.Sprintf("Talep %s '%s' durumunda, kalemler ve karar artık değiştirilemez", e.RequestNumber, e.Status)
}

// DuplicateRequestNumberError: Numara üretimi art arda çakıştı ve yeniden
// deneme sınırı aşıldı.
type DuplicateRequestNumberError struct {
	Number   string
	Attempts int
}

func (e *DuplicateRequestNumberError) Error() string {
	return fmt.Sprintf("Talep numarası üretilemedi: %s (%d deneme çakıştı)", e.Number, e.Attempts)
}
