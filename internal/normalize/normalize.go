// Package normalize coerces raw source rows into the canonical typed rows.
//
// Row-level problems never fail a load: bad timestamps become "no time", bad numbers
// become 0 and blank geography becomes "unknown". Only a missing required column is an error.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// UnknownPlace заменяет пустые значения географии
const UnknownPlace = "unknown"

var ErrMissingColumn = errors.New("required column is missing")

var requiredOrderColumns = []string{
	entity.ColOrderID, entity.ColStatus, entity.ColCreatedAt,
	entity.ColMerchandiseTotal, entity.ColCustomerID, entity.ColAllProductText,
}

// пустые значения, которые приходят из выгрузок и pandas-подобных источников
var nullTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"NaN":  {},
	"None": {},
	"null": {},
	"NULL": {},
	"<NA>": {},
	"NaT":  {},
}

var statusAliases = map[string]entity.Status{
	"交易完成":             entity.StatusCompleted,
	"已发货":              entity.StatusShipped,
	"待发货":              entity.StatusPendingShipment,
	"交易关闭":             entity.StatusClosed,
	"已取消":              entity.StatusCanceled,
	"completed":        entity.StatusCompleted,
	"complete":         entity.StatusCompleted,
	"shipped":          entity.StatusShipped,
	"pending_shipment": entity.StatusPendingShipment,
	"pending shipment": entity.StatusPendingShipment,
	"closed":           entity.StatusClosed,
	"canceled":         entity.StatusCanceled,
	"cancelled":        entity.StatusCanceled,
}

// Normalizer converts RawTables into typed rows. Timestamps without an explicit zone
// are interpreted in loc.
type Normalizer struct {
	loc *time.Location
}

func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// Orders normalizes the canonical order table, keeping load order.
func (n *Normalizer) Orders(table entity.RawTable) ([]entity.Order, error) {
	if err := checkColumns(table, requiredOrderColumns); err != nil {
		return nil, err
	}

	orders := make([]entity.Order, 0, len(table.Rows))
	for _, row := range table.Rows {
		orders = append(orders, entity.Order{
			OrderID:          n.String(row[entity.ColOrderID]),
			Status:           Status(row[entity.ColStatus]),
			CreatedAt:        n.Time(row[entity.ColCreatedAt]),
			PaidAt:           n.Time(row[entity.ColPaidAt]),
			CompletedAt:      n.Time(row[entity.ColCompletedAt]),
			AllProductText:   n.String(row[entity.ColAllProductText]),
			ItemTypeCount:    n.Int(row[entity.ColItemTypeCount]),
			ItemUnitCount:    n.Int(row[entity.ColItemUnitCount]),
			ShippingFee:      nonNegative(n.Float(row[entity.ColShippingFee])),
			DiscountTotal:    n.Float(row[entity.ColDiscountTotal]),
			MerchandiseTotal: nonNegative(n.Float(row[entity.ColMerchandiseTotal])),
			CustomerID:       n.String(row[entity.ColCustomerID]),
			MemberLevel:      n.String(row[entity.ColMemberLevel]),
			OrderCountRaw:    n.OrderCount(row[entity.ColOrderCountRaw]),
			Phone:            n.String(row[entity.ColPhone]),
			Remark:           n.String(row[entity.ColRemark]),
			Province:         n.Place(row[entity.ColProvince]),
			City:             n.Place(row[entity.ColCity]),
			District:         n.Place(row[entity.ColDistrict]),
		})
	}
	return orders, nil
}

func checkColumns(table entity.RawTable, required []string) error {
	var missing []string
	for _, col := range required {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// String renders a raw value as trimmed text. Null-like values become "".
func (n *Normalizer) String(v any) string {
	s, ok := text(v)
	if !ok {
		return ""
	}
	return s
}

// Place renders a geography value; blank and null-like values become UnknownPlace.
func (n *Normalizer) Place(v any) string {
	s, ok := text(v)
	if !ok {
		return UnknownPlace
	}
	return s
}

// text returns the trimmed string form of v and false for null-like values.
func text(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s = x
	case []byte:
		s = string(x)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		s = x.Format(time.RFC3339)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	if _, isNull := nullTokens[s]; isNull {
		return "", false
	}
	return s, true
}

// Time parses a timestamp. Unparseable or empty input gives the "no time" value.
func (n *Normalizer) Time(v any) entity.NullTime {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return entity.NullTime{}
		}
		return entity.NewNullTime(x)
	case *time.Time:
		if x == nil || x.IsZero() {
			return entity.NullTime{}
		}
		return entity.NewNullTime(*x)
	}

	s, ok := text(v)
	if !ok {
		return entity.NullTime{}
	}
	t, err := dateparse.ParseIn(s, n.loc)
	if err != nil {
		slog.Debug("unparseable timestamp", "value", s, "error", err)
		return entity.NullTime{}
	}
	return entity.NewNullTime(t)
}

// Float parses a number best-effort; anything unparseable is 0.
func (n *Normalizer) Float(v any) float64 {
	switch x := v.(type) {
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case bool:
		return 0
	}

	s, ok := text(v)
	if !ok {
		return 0
	}
	d, err := decimal.NewFromString(cleanNumber(s))
	if err != nil {
		return 0
	}
	// "1e400" парсится в decimal, но во float64 уже +Inf
	return finite(d.InexactFloat64())
}

// Int parses a count; fractional values are truncated.
func (n *Normalizer) Int(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	}
	return int(n.Float(v))
}

// OrderCount parses the customer's order count, which exports write as "第3次".
func (n *Normalizer) OrderCount(v any) int {
	if c := n.Int(v); c != 0 {
		return c
	}
	s, ok := text(v)
	if !ok {
		return 0
	}
	digits := firstDigitRun(s)
	if digits == "" {
		return 0
	}
	c, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return c
}

// Status maps a raw status label onto the canonical status.
func Status(v any) entity.Status {
	s, ok := text(v)
	if !ok {
		return entity.StatusUnknown
	}
	if st, ok := statusAliases[s]; ok {
		return st
	}
	lower := strings.ToLower(s)
	if st, ok := statusAliases[lower]; ok {
		return st
	}
	return entity.Status(lower)
}

var numberReplacer = strings.NewReplacer(",", "", "¥", "", "￥", "", "$", "", "元", "", " ", "")

func cleanNumber(s string) string {
	return numberReplacer.Replace(s)
}

func firstDigitRun(s string) string {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}

func nonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
