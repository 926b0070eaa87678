package product

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/Asus/TradeAnalytics/internal/numeric"
)

type CategoryStats struct {
	Category1     string  `json:"category1"`
	Category2     string  `json:"category2,omitempty"`
	Category3     string  `json:"category3,omitempty"`
	TotalQuantity int     `json:"total_quantity"`
	TotalSales    float64 `json:"total_sales"`
}

// CategoryReport - продажи по трём уровням категорий
type CategoryReport struct {
	Level1 []CategoryStats `json:"category1"`
	Level2 []CategoryStats `json:"category2"`
	Level3 []CategoryStats `json:"category3"`
}

type categoryKey struct{ c1, c2, c3 string }

type categoryRollup struct {
	keys  []categoryKey
	stats map[categoryKey]*CategoryStats
}

func newCategoryRollup() *categoryRollup {
	return &categoryRollup{stats: make(map[categoryKey]*CategoryStats)}
}

func (c *categoryRollup) add(k categoryKey, r entity.ProductRecord) {
	s, ok := c.stats[k]
	if !ok {
		s = &CategoryStats{Category1: k.c1, Category2: k.c2, Category3: k.c3}
		c.stats[k] = s
		c.keys = append(c.keys, k)
	}
	s.TotalQuantity += r.Quantity
	s.TotalSales += r.SalesAmount()
}

func (c *categoryRollup) sorted() []CategoryStats {
	out := make([]CategoryStats, 0, len(c.keys))
	for _, k := range c.keys {
		s := *c.stats[k]
		s.TotalSales = numeric.Round(s.TotalSales, 2)
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(x, y CategoryStats) int {
		return cmp.Compare(y.TotalSales, x.TotalSales)
	})
	return out
}

// Categories rolls quantity and revenue up the three category levels, each level
// sorted by total sales descending.
func (a *Analyzer) Categories(records []entity.ProductRecord) CategoryReport {
	if len(records) == 0 {
		slog.Warn("category analysis: no records")
		return CategoryReport{Level1: []CategoryStats{}, Level2: []CategoryStats{}, Level3: []CategoryStats{}}
	}

	l1, l2, l3 := newCategoryRollup(), newCategoryRollup(), newCategoryRollup()
	for _, r := range records {
		l1.add(categoryKey{c1: r.Category1}, r)
		l2.add(categoryKey{c1: r.Category1, c2: r.Category2}, r)
		l3.add(categoryKey{c1: r.Category1, c2: r.Category2, c3: r.Category3}, r)
	}
	return CategoryReport{Level1: l1.sorted(), Level2: l2.sorted(), Level3: l3.sorted()}
}
