package service

import (
	"context"
	"time"

	"github.com/Asus/TradeAnalytics/internal/location"
	"github.com/Asus/TradeAnalytics/internal/product"
	"github.com/Asus/TradeAnalytics/internal/profile"
)

// UserReport - профили покупателей и сводка по ним
type UserReport struct {
	Profiles []profile.Profile `json:"user_profiles"`
	Summary  profile.Summary   `json:"summary_stats"`
}

// Analytics runs every analysis over the store's current snapshot. Results are
// recomputed per call and never cached.
type Analytics struct {
	store    *Store
	products *product.Analyzer
}

func NewAnalytics(store *Store, products *product.Analyzer) *Analytics {
	if products == nil {
		products = product.NewAnalyzer(product.DefaultConfig())
	}
	return &Analytics{store: store, products: products}
}

func (a *Analytics) Locations(ctx context.Context) (location.Result, error) {
	orders, err := a.store.Orders(ctx)
	if err != nil {
		return location.Result{}, err
	}
	return location.Analyze(orders), nil
}

func (a *Analytics) Profiles(ctx context.Context) (UserReport, error) {
	orders, err := a.store.Orders(ctx)
	if err != nil {
		return UserReport{}, err
	}
	profiles := profile.Build(orders)
	return UserReport{Profiles: profiles, Summary: profile.Summarize(profiles)}, nil
}

// Sales reports per-product sales for records created in [start, end day]. Zero
// bounds leave that side open.
func (a *Analytics) Sales(ctx context.Context, start, end time.Time) ([]product.ProductStats, error) {
	records, err := a.store.ProductRecords(ctx)
	if err != nil {
		return nil, err
	}
	return a.products.Sales(product.FilterByDate(records, start, end)), nil
}

func (a *Analytics) Cancellation(ctx context.Context) ([]product.CancellationStats, error) {
	records, err := a.store.ProductRecords(ctx)
	if err != nil {
		return nil, err
	}
	return a.products.Cancellation(records), nil
}

func (a *Analytics) HighCancellation(ctx context.Context) ([]product.CancellationStats, error) {
	records, err := a.store.ProductRecords(ctx)
	if err != nil {
		return nil, err
	}
	return a.products.HighCancellation(records), nil
}

func (a *Analytics) Association(ctx context.Context) ([]product.Itemset, error) {
	records, err := a.store.ProductRecords(ctx)
	if err != nil {
		return nil, err
	}
	return a.products.Association(records), nil
}

func (a *Analytics) Categories(ctx context.Context) (product.CategoryReport, error) {
	records, err := a.store.ProductRecords(ctx)
	if err != nil {
		return product.CategoryReport{}, err
	}
	return a.products.Categories(records), nil
}

func (a *Analytics) Health(ctx context.Context) ([]product.HealthRecord, error) {
	records, err := a.store.ProductRecords(ctx)
	if err != nil {
		return nil, err
	}
	return a.products.Health(records), nil
}

func (a *Analytics) Recommendations(ctx context.Context) ([]string, error) {
	records, err := a.store.ProductRecords(ctx)
	if err != nil {
		return nil, err
	}
	return a.products.Recommendations(records), nil
}

// Reload refreshes the underlying dataset.
func (a *Analytics) Reload(ctx context.Context) (*Snapshot, error) {
	return a.store.Reload(ctx)
}
