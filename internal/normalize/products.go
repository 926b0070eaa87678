package normalize

import (
	"log/slog"

	"github.com/Asus/TradeAnalytics/internal/entity"
)

var requiredProductColumns = []string{
	entity.ColOrderID, entity.ColProductID, entity.ColProductName,
	entity.ColQuantity, entity.ColUnitPrice, entity.ColStatus, entity.ColCreatedAt,
}

// ProductRecords normalizes the joined order-item table. Rows without an order or
// product id are dropped and logged.
func (n *Normalizer) ProductRecords(table entity.RawTable) ([]entity.ProductRecord, error) {
	if err := checkColumns(table, requiredProductColumns); err != nil {
		return nil, err
	}

	records := make([]entity.ProductRecord, 0, len(table.Rows))
	dropped := 0
	for _, row := range table.Rows {
		rec := entity.ProductRecord{
			OrderID:     n.String(row[entity.ColOrderID]),
			ProductID:   n.String(row[entity.ColProductID]),
			ProductName: n.String(row[entity.ColProductName]),
			Category1:   n.Place(row[entity.ColCategory1]),
			Category2:   n.Place(row[entity.ColCategory2]),
			Category3:   n.Place(row[entity.ColCategory3]),
			UnitPrice:   nonNegative(n.Float(row[entity.ColUnitPrice])),
			Quantity:    max(n.Int(row[entity.ColQuantity]), 0),
			Status:      Status(row[entity.ColStatus]),
			CreatedAt:   n.Time(row[entity.ColCreatedAt]),
		}
		if err := entity.Validate.Struct(rec); err != nil {
			dropped++
			slog.Debug("product record dropped", "order_id", rec.OrderID, "product_id", rec.ProductID, "error", err)
			continue
		}
		if rec.ProductName == "" {
			rec.ProductName = rec.ProductID
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		slog.Warn("product records without order or product id were dropped", "dropped", dropped, "kept", len(records))
	}
	return records, nil
}
