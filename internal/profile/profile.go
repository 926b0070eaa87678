// Package profile aggregates orders into per-customer profiles with an RFM score.
//
// Spend, quality, first/last order time and RFM consider valid orders only (status other
// than closed). Total orders counts every status and preferences are mined from every
// order, closed ones included. "Latest" attributes are the last non-empty value in load
// order, which matches the latest order only when the source is loaded chronologically.
package profile

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/Asus/TradeAnalytics/internal/lineitem"
	"github.com/Asus/TradeAnalytics/internal/numeric"
	"github.com/Asus/TradeAnalytics/internal/topn"
)

const (
	preferredLimit     = 3
	preferredSeparator = "、"
	maskedMinRunes     = 7
)

// Profile - профиль покупателя
type Profile struct {
	CustomerID        string          `json:"customer_id"`
	MaskedPhone       string          `json:"masked_phone"`
	Phone             string          `json:"phone"`
	MemberLevel       string          `json:"member_level"`
	Province          string          `json:"province"`
	City              string          `json:"city"`
	District          string          `json:"district"`
	FullAddress       string          `json:"full_address"`
	FirstOrderAt      entity.NullTime `json:"first_order_at"`
	LastOrderAt       entity.NullTime `json:"last_order_at"`
	TotalOrders       int             `json:"total_orders"`
	ValidOrders       int             `json:"valid_orders"`
	TotalSpend        float64         `json:"total_spend"`
	AvgOrderQuality   float64         `json:"avg_order_quality"`
	PreferredProducts string          `json:"preferred_products"`
	RFM               RFM             `json:"rfm"`
	RFMScore          int             `json:"rfm_score"`
}

// RFM holds the raw recency/frequency/monetary values and their bucket scores.
type RFM struct {
	RecencyDays int     `json:"recency_days"`
	Frequency   int     `json:"frequency"`
	Monetary    float64 `json:"monetary"`
	R           int     `json:"r_score"`
	F           int     `json:"f_score"`
	M           int     `json:"m_score"`
	hasRecency  bool
}

type accumulator struct {
	profile    Profile
	qualitySum float64
	prefs      *lineitem.Tally
}

// Build aggregates the orders into profiles sorted by customer id. Customers whose
// orders are all closed get no profile.
func Build(orders []entity.ScoredOrder) []Profile {
	if len(orders) == 0 {
		slog.Warn("customer profiling: no orders")
		return []Profile{}
	}

	var reference entity.NullTime
	byCustomer := make(map[string]*accumulator)
	for _, o := range orders {
		if o.CreatedAt.Valid && (!reference.Valid || o.CreatedAt.Time.After(reference.Time)) {
			reference = o.CreatedAt
		}

		acc, ok := byCustomer[o.CustomerID]
		if !ok {
			acc = &accumulator{profile: Profile{CustomerID: o.CustomerID}, prefs: lineitem.NewTally()}
			byCustomer[o.CustomerID] = acc
		}
		acc.profile.TotalOrders++
		for _, it := range lineitem.Explode(o.OrderID, o.AllProductText) {
			acc.prefs.Add(it.ProductName, it.Quantity)
		}
		if o.Status.Valid() {
			acc.addValid(o)
		}
	}

	profiles := make([]Profile, 0, len(byCustomer))
	for _, acc := range byCustomer {
		if acc.profile.ValidOrders == 0 {
			continue
		}
		profiles = append(profiles, acc.finish(reference))
	}
	slices.SortFunc(profiles, func(a, b Profile) int {
		return strings.Compare(a.CustomerID, b.CustomerID)
	})

	scoreRFM(profiles)
	slog.Debug("customer profiling done", "customers", len(profiles))
	return profiles
}

func (acc *accumulator) addValid(o entity.ScoredOrder) {
	p := &acc.profile
	p.ValidOrders++
	p.TotalSpend += o.MerchandiseTotal
	acc.qualitySum += o.QualityScore

	if o.CreatedAt.Valid {
		if !p.FirstOrderAt.Valid || o.CreatedAt.Before(p.FirstOrderAt) {
			p.FirstOrderAt = o.CreatedAt
		}
		if !p.LastOrderAt.Valid || p.LastOrderAt.Before(o.CreatedAt) {
			p.LastOrderAt = o.CreatedAt
		}
	}

	setLast(&p.MemberLevel, o.MemberLevel)
	setLast(&p.Phone, o.Phone)
	setLast(&p.Province, o.Province)
	setLast(&p.City, o.City)
	setLast(&p.District, o.District)
}

func setLast(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (acc *accumulator) finish(reference entity.NullTime) Profile {
	p := acc.profile
	p.TotalSpend = numeric.Round(p.TotalSpend, 2)
	p.AvgOrderQuality = numeric.Round(acc.qualitySum/float64(p.ValidOrders), 2)
	p.FullAddress = p.Province + p.City + p.District
	p.MaskedPhone = MaskPhone(p.Phone)

	best := topn.Select(acc.prefs.Items(), preferredLimit, func(pq lineitem.ProductQuantity) float64 {
		return float64(pq.Quantity)
	})
	names := make([]string, 0, len(best))
	for _, pq := range best {
		names = append(names, pq.Name)
	}
	p.PreferredProducts = strings.Join(names, preferredSeparator)

	p.RFM = RFM{Frequency: p.ValidOrders, Monetary: p.TotalSpend}
	if reference.Valid && p.LastOrderAt.Valid {
		p.RFM.RecencyDays = wholeDays(reference.Time.Sub(p.LastOrderAt.Time))
		p.RFM.hasRecency = true
	}
	return p
}

func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}

// MaskPhone keeps the first 3 and the last 4 characters. Phones shorter than 7
// characters give an empty string.
func MaskPhone(phone string) string {
	r := []rune(phone)
	if len(r) < maskedMinRunes {
		return ""
	}
	return string(r[:3]) + "****" + string(r[len(r)-4:])
}

// PreferredList splits the joined preference string back into names.
func (p Profile) PreferredList() []string {
	if p.PreferredProducts == "" {
		return []string{}
	}
	return strings.Split(p.PreferredProducts, preferredSeparator)
}
