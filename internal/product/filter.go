package product

import (
	"time"

	"github.com/Asus/TradeAnalytics/internal/entity"
)

// FilterByDate keeps records created on or after start and on or before the end date.
// The end bound covers the whole end day. A zero start or end leaves that side open.
// Records without a creation time are dropped whenever a bound is set.
func FilterByDate(records []entity.ProductRecord, start, end time.Time) []entity.ProductRecord {
	if start.IsZero() && end.IsZero() {
		return records
	}

	var until time.Time
	if !end.IsZero() {
		y, m, d := end.Date()
		until = time.Date(y, m, d+1, 0, 0, 0, 0, end.Location())
	}

	out := make([]entity.ProductRecord, 0, len(records))
	for _, r := range records {
		if !r.CreatedAt.Valid {
			continue
		}
		t := r.CreatedAt.Time
		if !start.IsZero() && t.Before(start) {
			continue
		}
		if !until.IsZero() && !t.Before(until) {
			continue
		}
		out = append(out, r)
	}
	return out
}
