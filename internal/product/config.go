package product

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/Asus/TradeAnalytics/internal/entity"
)

var ErrInvalidConfig = errors.New("invalid analysis config")

// Config - пороги и параметры товарной аналитики
type Config struct {
	MinSupport                 float64 `json:"min_support" validate:"gt=0,lte=1"`
	CancellationRateMultiplier float64 `json:"cancellation_rate_multiplier" validate:"gt=0"`
	ProfitMarginThreshold      float64 `json:"profit_margin_threshold" validate:"gte=-1,lte=1"`
	ReturnRateThreshold        float64 `json:"return_rate_threshold" validate:"gte=0,lte=1"`
	SalesFrequencyThreshold    float64 `json:"sales_frequency_threshold" validate:"gte=0,lte=1"`
	CostRatio                  float64 `json:"cost_ratio" validate:"gte=0,lte=1"`
	AssociationTopN            int     `json:"association_top_n" validate:"gte=1"`
}

func DefaultConfig() Config {
	return Config{
		MinSupport:                 0.005,
		CancellationRateMultiplier: 1.5,
		ProfitMarginThreshold:      0.3,
		ReturnRateThreshold:        0.1,
		SalesFrequencyThreshold:    0.01,
		CostRatio:                  0.7,
		AssociationTopN:            20,
	}
}

// ключи старых конфигов: значение проверяется и отбрасывается
var reservedKeys = map[string]func(any) error{
	"top_n_products": func(v any) error {
		n, err := toInt(v)
		if err == nil && n < 1 {
			err = fmt.Errorf("must be at least 1, got %d", n)
		}
		return err
	},
	"slow_moving_threshold": func(v any) error {
		f, err := toFloat(v)
		if err == nil && (f < 0 || f > 1) {
			err = fmt.Errorf("must be within [0, 1], got %v", f)
		}
		return err
	},
}

// ConfigFromMap overlays a flat key/value mapping on the defaults. Unknown keys are
// logged and ignored; values that do not parse or fail validation are an error.
// Reserved keys are checked the same way but have no effect.
func ConfigFromMap(m map[string]any) (Config, error) {
	cfg := DefaultConfig()

	floats := map[string]*float64{
		"min_support":                  &cfg.MinSupport,
		"cancellation_rate_multiplier": &cfg.CancellationRateMultiplier,
		"profit_margin_threshold":      &cfg.ProfitMarginThreshold,
		"return_rate_threshold":        &cfg.ReturnRateThreshold,
		"sales_frequency_threshold":    &cfg.SalesFrequencyThreshold,
		"cost_ratio":                   &cfg.CostRatio,
	}
	ints := map[string]*int{
		"association_top_n": &cfg.AssociationTopN,
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := m[key]
		if dst, ok := floats[key]; ok {
			v, err := toFloat(raw)
			if err != nil {
				return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
			}
			*dst = v
			continue
		}
		if dst, ok := ints[key]; ok {
			v, err := toInt(raw)
			if err != nil {
				return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
			}
			*dst = v
			continue
		}
		if check, ok := reservedKeys[key]; ok {
			if err := check(raw); err != nil {
				return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
			}
			slog.Debug("reserved analysis option ignored", "key", key)
			continue
		}
		slog.Warn("unknown analysis option ignored", "key", key)
	}

	if err := entity.Validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	}
	return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != float64(int(x)) {
			return 0, fmt.Errorf("not an integer: %v", x)
		}
		return int(x), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(x))
	}
	return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
}
