package profile

import (
	"github.com/Asus/TradeAnalytics/internal/numeric"
	"github.com/Asus/TradeAnalytics/internal/topn"
)

const summaryTopN = 5

// NameCount - значение и число его появлений
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary - сводка по всем профилям для дашборда
type Summary struct {
	TotalUsers      int         `json:"total_users"`
	AvgOrderQuality float64     `json:"avg_order_quality"`
	TotalSpend      float64     `json:"total_consumption"`
	TopProvinces    []NameCount `json:"top_provinces"`
	TopProducts     []NameCount `json:"top_products"`
}

// Summarize reports population totals and the most frequent provinces and preferred products.
func Summarize(profiles []Profile) Summary {
	s := Summary{
		TotalUsers:   len(profiles),
		TopProvinces: []NameCount{},
		TopProducts:  []NameCount{},
	}
	if len(profiles) == 0 {
		return s
	}

	provinces := newCounter()
	products := newCounter()
	quality := 0.0
	for _, p := range profiles {
		quality += p.AvgOrderQuality
		s.TotalSpend += p.TotalSpend
		provinces.add(p.Province)
		for _, name := range p.PreferredList() {
			products.add(name)
		}
	}
	s.AvgOrderQuality = numeric.Round(quality/float64(len(profiles)), 2)
	s.TotalSpend = numeric.Round(s.TotalSpend, 2)
	s.TopProvinces = provinces.top(summaryTopN)
	s.TopProducts = products.top(summaryTopN)
	return s
}

type counter struct {
	index map[string]int
	items []NameCount
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(name string) {
	i, ok := c.index[name]
	if !ok {
		i = len(c.items)
		c.index[name] = i
		c.items = append(c.items, NameCount{Name: name})
	}
	c.items[i].Count++
}

func (c *counter) top(n int) []NameCount {
	return topn.Select(c.items, n, func(nc NameCount) float64 { return float64(nc.Count) })
}
