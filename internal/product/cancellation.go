package product

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/Asus/TradeAnalytics/internal/numeric"
)

// CancellationStats - доля отменённых заказов товара
type CancellationStats struct {
	ProductID        string  `json:"product_id"`
	ProductName      string  `json:"product_name"`
	TotalOrders      int     `json:"total_orders"`
	CanceledOrders   int     `json:"canceled_orders"`
	CancellationRate float64 `json:"cancellation_rate"`
	High             bool    `json:"high_cancellation"`
}

type cancelAcc struct {
	stats    CancellationStats
	orders   map[string]struct{}
	canceled map[string]struct{}
}

// Cancellation computes the per-product cancellation rate over distinct orders, sorted
// by rate descending. A product is flagged High when its rate exceeds the mean rate
// times the configured multiplier.
func (a *Analyzer) Cancellation(records []entity.ProductRecord) []CancellationStats {
	if len(records) == 0 {
		slog.Warn("cancellation analysis: no records")
		return []CancellationStats{}
	}

	idx := newProductIndex[cancelAcc]()
	for _, r := range records {
		acc := idx.get(r.ProductID, func() *cancelAcc {
			return &cancelAcc{
				stats:    CancellationStats{ProductID: r.ProductID, ProductName: r.ProductName},
				orders:   make(map[string]struct{}),
				canceled: make(map[string]struct{}),
			}
		})
		acc.orders[r.OrderID] = struct{}{}
		if r.Status.Canceled() {
			acc.canceled[r.OrderID] = struct{}{}
		}
	}

	out := make([]CancellationStats, 0, len(idx.ids))
	rates := make([]float64, 0, len(idx.ids))
	sum := 0.0
	for _, id := range idx.ids {
		acc := idx.byID[id]
		s := acc.stats
		s.TotalOrders = len(acc.orders)
		s.CanceledOrders = len(acc.canceled)
		rate := numeric.Ratio(float64(s.CanceledOrders), float64(s.TotalOrders))
		rates = append(rates, rate)
		sum += rate
		s.CancellationRate = numeric.Round(rate, 4)
		out = append(out, s)
	}

	limit := sum / float64(len(rates)) * a.cfg.CancellationRateMultiplier
	for i := range out {
		out[i].High = rates[i] > limit
	}
	slices.SortStableFunc(out, func(x, y CancellationStats) int {
		return cmp.Compare(y.CancellationRate, x.CancellationRate)
	})
	return out
}

// HighCancellation returns only the flagged products, highest rate first.
func (a *Analyzer) HighCancellation(records []entity.ProductRecord) []CancellationStats {
	all := a.Cancellation(records)
	out := make([]CancellationStats, 0, len(all))
	for _, s := range all {
		if s.High {
			out = append(out, s)
		}
	}
	return out
}
