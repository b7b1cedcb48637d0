package ledger

import (
	"strings"
	"time"

	"github.com/jhoicas/Ahorro-api/internal/domain"
)

// Day trunca t al inicio de su día calendario (en la zona de t).
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay indica si a y b caen en el mismo día calendario.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b.In(a.Location())))
}

// HourBucket devuelve [inicio, fin) de la hora de reloj que contiene t, en la zona de t.
func HourBucket(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
	return start, start.Add(time.Hour)
}

// ParseCollectionDate interpreta "2006-01-02" o RFC3339 y rechaza fechas futuras respecto a now.
func ParseCollectionDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, domain.ErrInvalidDate
	}
	t, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, domain.ErrInvalidDate
		}
		t = t.In(now.Location())
	}
	day := Day(t)
	if day.After(Day(now)) {
		return time.Time{}, domain.ErrInvalidDate
	}
	return day, nil
}

// EnsureNotFuture rechaza instantes posteriores a now (p. ej. satisfiedAt).
func EnsureNotFuture(t, now time.Time) error {
	if t.After(now) {
		return domain.ErrInvalidDate
	}
	return nil
}
