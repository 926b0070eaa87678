package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Asus/TradeAnalytics/config"
	"github.com/Asus/TradeAnalytics/internal/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// интерфейс, для того чтобы можно было запускать тесты
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage читает торговые таблицы из Postgres
type Storage struct {
	pool DBPool
}

func NewStorage(ctx context.Context, cfg *config.Source) (*Storage, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Creds.DBUser,
		cfg.Creds.DBPassword,
		cfg.Host,
		cfg.Port,
		cfg.Creds.DBName,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// LoadOrderTable загружает каноническую таблицу заказов
func (s *Storage) LoadOrderTable(ctx context.Context) (entity.RawTable, error) {
	return s.load(ctx, "orders", orderQuery(postgres))
}

// LoadProductTable загружает позиции заказов, соединённые с товаром, категорией и статусом заказа
func (s *Storage) LoadProductTable(ctx context.Context) (entity.RawTable, error) {
	return s.load(ctx, "order items", productQuery(postgres))
}

func (s *Storage) load(ctx context.Context, what, query string) (entity.RawTable, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return entity.RawTable{}, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer rows.Close()

	table, err := collectRows(rows)
	if err != nil {
		return entity.RawTable{}, fmt.Errorf("failed to read %s: %w", what, err)
	}
	slog.Info("table loaded from database", "table", what, "rows", len(table.Rows))
	return table, nil
}

// collectRows раскладывает строки по именам колонок из FieldDescriptions
func collectRows(rows pgx.Rows) (entity.RawTable, error) {
	fields := rows.FieldDescriptions()
	table := entity.RawTable{Columns: make([]string, len(fields))}
	for i, f := range fields {
		table.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return entity.RawTable{}, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := make(entity.RawRecord, len(values))
		for i, v := range values {
			rec[table.Columns[i]] = v
		}
		table.Rows = append(table.Rows, rec)
	}
	// были ли ошибки во время итерации по строкам
	if err := rows.Err(); err != nil {
		return entity.RawTable{}, fmt.Errorf("error during rows iteration: %w", err)
	}
	return table, nil
}
