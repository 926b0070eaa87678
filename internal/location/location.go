// Package location builds the province → city → district revenue rollups.
package location

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/Asus/TradeAnalytics/internal/lineitem"
	"github.com/Asus/TradeAnalytics/internal/numeric"
	"github.com/Asus/TradeAnalytics/internal/topn"
)

// TopProductsLimit - сколько товаров показываем для провинции и города
const TopProductsLimit = 5

type ProvinceNode struct {
	Province    string   `json:"province"`
	TotalAmount float64  `json:"province_total"`
	TopProducts []string `json:"top_products"`
}

type CityNode struct {
	Province      string   `json:"province"`
	City          string   `json:"city"`
	TotalAmount   float64  `json:"city_total"`
	ProvinceTotal float64  `json:"province_total"`
	Share         float64  `json:"city_share"`
	TopProducts   []string `json:"top_products"`
}

// DistrictNode has no top products: the district level is rolled up by amount only.
type DistrictNode struct {
	Province    string  `json:"province"`
	City        string  `json:"city"`
	District    string  `json:"district"`
	TotalAmount float64 `json:"district_total"`
	CityTotal   float64 `json:"city_total"`
	Share       float64 `json:"district_share"`
}

type Result struct {
	Provinces []ProvinceNode `json:"province_summary"`
	Cities    []CityNode     `json:"city_summary"`
	Districts []DistrictNode `json:"district_summary"`
}

type cityKey struct{ province, city string }

type districtKey struct{ province, city, district string }

// groups accumulates a sum per key and remembers the order keys were first seen.
type groups[K comparable] struct {
	keys   []K
	totals map[K]float64
	tally  map[K]*lineitem.Tally
}

func newGroups[K comparable]() *groups[K] {
	return &groups[K]{totals: make(map[K]float64), tally: make(map[K]*lineitem.Tally)}
}

func (g *groups[K]) add(k K, amount float64) {
	if _, ok := g.totals[k]; !ok {
		g.keys = append(g.keys, k)
	}
	g.totals[k] += amount
}

func (g *groups[K]) addItems(k K, items []lineitem.LineItem) {
	t, ok := g.tally[k]
	if !ok {
		t = lineitem.NewTally()
		g.tally[k] = t
	}
	for _, it := range items {
		t.Add(it.ProductName, it.Quantity)
	}
}

func (g *groups[K]) topProducts(k K) []string {
	out := make([]string, 0, TopProductsLimit)
	t, ok := g.tally[k]
	if !ok {
		return out
	}
	best := topn.Select(t.Items(), TopProductsLimit, func(p lineitem.ProductQuantity) float64 {
		return float64(p.Quantity)
	})
	for _, p := range best {
		out = append(out, p.String())
	}
	return out
}

// Analyze rolls merchandise totals up the geography hierarchy. Every order counts,
// whatever its status.
func Analyze(orders []entity.ScoredOrder) Result {
	res := Result{
		Provinces: make([]ProvinceNode, 0),
		Cities:    make([]CityNode, 0),
		Districts: make([]DistrictNode, 0),
	}
	if len(orders) == 0 {
		slog.Warn("location analysis: no orders")
		return res
	}

	provinces := newGroups[string]()
	cities := newGroups[cityKey]()
	districts := newGroups[districtKey]()

	for _, o := range orders {
		pk := o.Province
		ck := cityKey{o.Province, o.City}
		dk := districtKey{o.Province, o.City, o.District}

		provinces.add(pk, o.MerchandiseTotal)
		cities.add(ck, o.MerchandiseTotal)
		districts.add(dk, o.MerchandiseTotal)

		items := lineitem.Explode(o.OrderID, o.AllProductText)
		provinces.addItems(pk, items)
		cities.addItems(ck, items)
	}

	for _, k := range provinces.keys {
		res.Provinces = append(res.Provinces, ProvinceNode{
			Province:    k,
			TotalAmount: provinces.totals[k],
			TopProducts: provinces.topProducts(k),
		})
	}
	slices.SortStableFunc(res.Provinces, func(a, b ProvinceNode) int {
		return cmp.Compare(b.TotalAmount, a.TotalAmount)
	})

	for _, k := range cities.keys {
		parent := provinces.totals[k.province]
		res.Cities = append(res.Cities, CityNode{
			Province:      k.province,
			City:          k.city,
			TotalAmount:   cities.totals[k],
			ProvinceTotal: parent,
			Share:         share(cities.totals[k], parent),
			TopProducts:   cities.topProducts(k),
		})
	}
	slices.SortStableFunc(res.Cities, func(a, b CityNode) int {
		if c := cmp.Compare(a.Province, b.Province); c != 0 {
			return c
		}
		return cmp.Compare(b.Share, a.Share)
	})

	for _, k := range districts.keys {
		parent := cities.totals[cityKey{k.province, k.city}]
		res.Districts = append(res.Districts, DistrictNode{
			Province:    k.province,
			City:        k.city,
			District:    k.district,
			TotalAmount: districts.totals[k],
			CityTotal:   parent,
			Share:       share(districts.totals[k], parent),
		})
	}
	slices.SortStableFunc(res.Districts, func(a, b DistrictNode) int {
		if c := cmp.Compare(a.Province, b.Province); c != 0 {
			return c
		}
		if c := cmp.Compare(a.City, b.City); c != 0 {
			return c
		}
		return cmp.Compare(b.Share, a.Share)
	})

	slog.Debug("location analysis done",
		"provinces", len(res.Provinces), "cities", len(res.Cities), "districts", len(res.Districts))
	return res
}

func share(child, parent float64) float64 {
	return numeric.Round(numeric.Ratio(child, parent), 4)
}
