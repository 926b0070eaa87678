package product

import (
	"fmt"
	"strings"

	"github.com/Asus/TradeAnalytics/internal/entity"
)

const recommendSampleSize = 3

// Recommendations turns the analyses into short operational suggestions for the
// advisory chat: high-cancellation products, top sellers, the strongest product
// combination and the best first-level category.
func (a *Analyzer) Recommendations(records []entity.ProductRecord) []string {
	sales := a.Sales(records)
	highCancel := a.HighCancellation(records)
	assoc := a.Association(records)
	categories := a.Categories(records)

	out := make([]string, 0, 4)

	if len(highCancel) > 0 {
		names := make([]string, 0, recommendSampleSize)
		for _, c := range highCancel[:min(recommendSampleSize, len(highCancel))] {
			names = append(names, c.ProductName)
		}
		out = append(out, fmt.Sprintf(
			"High cancellation products (%d), e.g. %s: check product descriptions, stock levels and delivery times",
			len(highCancel), strings.Join(names, ", ")))
	} else {
		out = append(out, "No high cancellation products: cancellation rates are within the normal range")
	}

	if len(sales) > 0 {
		names := make([]string, 0, recommendSampleSize)
		for _, s := range sales[:min(recommendSampleSize, len(sales))] {
			names = append(names, s.ProductName)
		}
		out = append(out, fmt.Sprintf("Top sellers: %s: increase stock and promotion", strings.Join(names, ", ")))
	} else {
		out = append(out, "No sales data found")
	}

	if len(assoc) > 0 {
		out = append(out, fmt.Sprintf("Found %d product combinations, suggested bundle: [%s]", len(assoc), assoc[0].Label))
	} else {
		out = append(out, "No product combinations found")
	}

	if len(categories.Level1) > 0 {
		out = append(out, fmt.Sprintf("Best category: %s: expand the assortment", categories.Level1[0].Category1))
	} else {
		out = append(out, "No category data found")
	}
	return out
}
