package product

import (
	"log/slog"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/Asus/TradeAnalytics/internal/numeric"
)

type HealthStatus string

const (
	HealthHealthy             HealthStatus = "healthy"
	HealthProblematic         HealthStatus = "problematic"
	HealthHighMarginSlowMover HealthStatus = "high-margin-slow-moving"
	HealthTrafficDriver       HealthStatus = "traffic-driver"
	HealthAverage             HealthStatus = "average"
)

// HealthRecord - показатели "здоровья" товара
type HealthRecord struct {
	ProductID      string       `json:"product_id"`
	ProductName    string       `json:"product_name"`
	TotalSales     float64      `json:"total_sales"`
	OrderCount     int          `json:"order_count"`
	ProfitMargin   float64      `json:"profit_margin"`
	ReturnRate     float64      `json:"return_rate"`
	SalesFrequency float64      `json:"sales_frequency"`
	HealthStatus   HealthStatus `json:"health_status"`
}

// Health classifies every product from its estimated margin, cancellation rate and
// share of all orders. Metrics are rounded to 4 decimals before they are compared with
// the thresholds. Output follows the Sales order.
func (a *Analyzer) Health(records []entity.ProductRecord) []HealthRecord {
	if len(records) == 0 {
		slog.Warn("health analysis: no records")
		return []HealthRecord{}
	}

	sales := a.Sales(records)
	rates := make(map[string]float64)
	for _, c := range a.Cancellation(records) {
		rates[c.ProductID] = c.CancellationRate
	}

	totalOrders := 0
	for _, s := range sales {
		totalOrders += s.OrderCount
	}

	out := make([]HealthRecord, 0, len(sales))
	for _, s := range sales {
		cost := s.TotalSales * a.cfg.CostRatio
		h := HealthRecord{
			ProductID:      s.ProductID,
			ProductName:    s.ProductName,
			TotalSales:     s.TotalSales,
			OrderCount:     s.OrderCount,
			ProfitMargin:   numeric.Round(numeric.Ratio(s.TotalSales-cost, s.TotalSales), 4),
			ReturnRate:     rates[s.ProductID],
			SalesFrequency: numeric.Round(numeric.Ratio(float64(s.OrderCount), float64(totalOrders)), 4),
		}
		h.HealthStatus = a.classify(h)
		out = append(out, h)
	}
	return out
}

// classify applies the rules in order; the first match wins.
func (a *Analyzer) classify(h HealthRecord) HealthStatus {
	highMargin := h.ProfitMargin >= a.cfg.ProfitMarginThreshold
	lowReturn := h.ReturnRate <= a.cfg.ReturnRateThreshold
	frequent := h.SalesFrequency >= a.cfg.SalesFrequencyThreshold

	switch {
	case highMargin && lowReturn && frequent:
		return HealthHealthy
	case !highMargin && !lowReturn && !frequent:
		return HealthProblematic
	case highMargin && !frequent:
		return HealthHighMarginSlowMover
	case !highMargin && frequent:
		return HealthTrafficDriver
	}
	return HealthAverage
}
