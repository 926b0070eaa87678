package service

import (
	"context"

	"github.com/Asus/TradeAnalytics/internal/entity"
)

// Source отдаёт сырые таблицы; реализации: storage.Storage, storage.SQLStorage, source.CSV
type Source interface {
	LoadOrderTable(ctx context.Context) (entity.RawTable, error)
	LoadProductTable(ctx context.Context) (entity.RawTable, error)
}
