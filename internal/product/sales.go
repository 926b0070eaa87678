// Package product runs the product-level analyses over joined order-item records:
// sales with peak hour, cancellation outliers, association itemsets, category
// rollups and health classification.
package product

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/Asus/TradeAnalytics/internal/numeric"
)

// Analyzer runs the analyses with a fixed Config. It holds no data and is safe for
// concurrent use.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

func (a *Analyzer) Config() Config {
	return a.cfg
}

// ProductStats - продажи одного товара
type ProductStats struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	TotalQuantity int     `json:"total_quantity"`
	TotalSales    float64 `json:"total_sales"`
	OrderCount    int     `json:"order_count"`
	AvgSales      float64 `json:"avg_sales"`
	PeakHour      *int    `json:"peak_hour"` // nil, если ни у одной строки нет времени
}

type salesAcc struct {
	stats    ProductStats
	lines    int
	orders   map[string]struct{}
	hours    [24]int
	seen     [24]bool
	hasHours bool
}

// productIndex groups records by product id keeping first-encounter order.
type productIndex[T any] struct {
	ids  []string
	byID map[string]*T
}

func newProductIndex[T any]() *productIndex[T] {
	return &productIndex[T]{byID: make(map[string]*T)}
}

func (p *productIndex[T]) get(id string, create func() *T) *T {
	v, ok := p.byID[id]
	if !ok {
		v = create()
		p.byID[id] = v
		p.ids = append(p.ids, id)
	}
	return v
}

// Sales aggregates quantity, revenue and distinct orders per product, sorted by
// total sales descending. The peak hour is the hour of day with the largest summed
// quantity, the lowest hour on ties.
func (a *Analyzer) Sales(records []entity.ProductRecord) []ProductStats {
	if len(records) == 0 {
		slog.Warn("sales analysis: no records")
		return []ProductStats{}
	}

	idx := newProductIndex[salesAcc]()
	for _, r := range records {
		acc := idx.get(r.ProductID, func() *salesAcc {
			return &salesAcc{
				stats:  ProductStats{ProductID: r.ProductID, ProductName: r.ProductName},
				orders: make(map[string]struct{}),
			}
		})
		acc.stats.TotalQuantity += r.Quantity
		acc.stats.TotalSales += r.SalesAmount()
		acc.lines++
		acc.orders[r.OrderID] = struct{}{}
		if r.CreatedAt.Valid {
			h := r.CreatedAt.Time.Hour()
			acc.hours[h] += r.Quantity
			acc.seen[h] = true
			acc.hasHours = true
		}
	}

	out := make([]ProductStats, 0, len(idx.ids))
	for _, id := range idx.ids {
		acc := idx.byID[id]
		s := acc.stats
		s.OrderCount = len(acc.orders)
		s.AvgSales = numeric.Round(s.TotalSales/float64(acc.lines), 2)
		s.TotalSales = numeric.Round(s.TotalSales, 2)
		if acc.hasHours {
			h := peakHour(acc.hours, acc.seen)
			s.PeakHour = &h
		}
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(x, y ProductStats) int {
		return cmp.Compare(y.TotalSales, x.TotalSales)
	})
	return out
}

func peakHour(hours [24]int, seen [24]bool) int {
	best := -1
	for h := range hours {
		if !seen[h] {
			continue
		}
		if best < 0 || hours[h] > hours[best] {
			best = h
		}
	}
	return best
}
