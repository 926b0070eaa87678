package main

import (
	"testing"

	"github.com/Asus/TradeAnalytics/config"
	"github.com/Asus/TradeAnalytics/internal/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvConfig() *config.Config {
	return &config.Config{
		Env:      "test",
		HTTPAddr: "127.0.0.1:0",
		Source: config.Source{
			Driver:    config.DriverCSV,
			OrdersCSV: "orders.csv",
			ItemsCSV:  "items.csv",
			Timezone:  "UTC",
		},
	}
}

// ошибки старта возвращаются из run, а не завершают процесс
func TestRunStartupErrors(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr error
		contain string
	}{
		{
			name:    "unknown driver",
			mutate:  func(cfg *config.Config) { cfg.Source.Driver = "oracle" },
			contain: "unsupported source driver",
		},
		{
			name:    "bad timezone",
			mutate:  func(cfg *config.Config) { cfg.Source.Timezone = "Mars/Olympus" },
			contain: "failed to resolve timezone",
		},
		{
			name:    "invalid analysis option",
			mutate:  func(cfg *config.Config) { cfg.Analysis = map[string]any{"min_support": "abc"} },
			wantErr: product.ErrInvalidConfig,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := csvConfig()
			tc.mutate(cfg)

			err := run(cfg)

			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.contain != "" {
				assert.Contains(t, err.Error(), tc.contain)
			}
		})
	}
}
