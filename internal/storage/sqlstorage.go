package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"

	"github.com/Asus/TradeAnalytics/config"
	"github.com/Asus/TradeAnalytics/internal/entity"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// SQLStorage читает те же таблицы через database/sql: MySQL (исходная торговая БД) или SQLite
type SQLStorage struct {
	db     *sql.DB
	driver string
}

// NewSQLStorage opens a MySQL or SQLite source described by cfg.
func NewSQLStorage(ctx context.Context, cfg *config.Source) (*SQLStorage, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		dsn := mysql.NewConfig()
		dsn.User = cfg.Creds.DBUser
		dsn.Passwd = cfg.Creds.DBPassword
		dsn.Net = "tcp"
		dsn.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
		dsn.DBName = cfg.Creds.DBName
		dsn.ParseTime = true
		dsn.Params = map[string]string{"charset": "utf8mb4"}
		return OpenSQL(ctx, "mysql", dsn.FormatDSN())
	case config.DriverSQLite:
		return OpenSQL(ctx, "sqlite", cfg.SQLitePath)
	}
	return nil, fmt.Errorf("driver %q is not served by database/sql storage", cfg.Driver)
}

// OpenSQL opens and pings a database/sql connection.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStorage, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach %s database: %w", driver, err)
	}
	return &SQLStorage{db: db, driver: driver}, nil
}

func (s *SQLStorage) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *SQLStorage) LoadOrderTable(ctx context.Context) (entity.RawTable, error) {
	return s.load(ctx, "orders", orderQuery(plain))
}

func (s *SQLStorage) LoadProductTable(ctx context.Context) (entity.RawTable, error) {
	return s.load(ctx, "order items", productQuery(plain))
}

func (s *SQLStorage) load(ctx context.Context, what, query string) (entity.RawTable, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return entity.RawTable{}, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer rows.Close()

	table, err := collectSQLRows(rows)
	if err != nil {
		return entity.RawTable{}, fmt.Errorf("failed to read %s: %w", what, err)
	}
	slog.Info("table loaded from database", "driver", s.driver, "table", what, "rows", len(table.Rows))
	return table, nil
}

func collectSQLRows(rows *sql.Rows) (entity.RawTable, error) {
	cols, err := rows.Columns()
	if err != nil {
		return entity.RawTable{}, err
	}
	table := entity.RawTable{Columns: cols}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return entity.RawTable{}, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := make(entity.RawRecord, len(cols))
		for i, v := range values {
			// драйвер переиспользует буфер []byte между строками
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[cols[i]] = v
		}
		table.Rows = append(table.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return entity.RawTable{}, fmt.Errorf("error during rows iteration: %w", err)
	}
	return table, nil
}
