package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Asus/TradeAnalytics/config"
	"github.com/Asus/TradeAnalytics/internal/broker"
	"github.com/Asus/TradeAnalytics/internal/logger"
	"github.com/Asus/TradeAnalytics/internal/normalize"
	"github.com/Asus/TradeAnalytics/internal/product"
	"github.com/Asus/TradeAnalytics/internal/server"
	"github.com/Asus/TradeAnalytics/internal/service"
	"github.com/Asus/TradeAnalytics/internal/source"
	"github.com/Asus/TradeAnalytics/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logCloser, err := logger.Setup(cfg.Log)
	if err != nil {
		slog.Error("failed to init logger", "error", err)
		os.Exit(1)
	}
	slog.Info("Configuration loaded successfully", "env", cfg.Env, "driver", cfg.Source.Driver)

	err = run(cfg)
	if err != nil {
		slog.Error("service stopped with error", "error", err)
	}
	// os.Exit не выполняет defer, поэтому файл лога закрываем явно
	logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := openSource(ctx, &cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to init source: %w", err)
	}
	defer closeSource()

	loc, err := cfg.Source.Location()
	if err != nil {
		return fmt.Errorf("failed to resolve timezone: %w", err)
	}

	analysisCfg, err := product.ConfigFromMap(cfg.Analysis)
	if err != nil {
		return err
	}

	store := service.NewStore(src, normalize.NewNormalizer(loc))
	analytics := service.NewAnalytics(store, product.NewAnalyzer(analysisCfg))
	slog.Info("Analytics layer initialized")

	// прогреваем датасет, ошибка не фатальна: следующий запрос попробует снова
	if snap, err := store.Snapshot(ctx); err != nil {
		slog.Warn("initial dataset load failed", "error", err)
	} else {
		slog.Info("Dataset successfully loaded", "snapshot_id", snap.ID, "orders", len(snap.Orders))
	}

	if cfg.Kafka.Enabled {
		consumer := broker.NewKafkaConsumer(cfg.Kafka, store)
		defer consumer.Close()
		slog.Info("Kafka consumer initialized", "topic", cfg.Kafka.Topic)
		go func() {
			if err := consumer.ConsumeAndReload(ctx); err != nil {
				slog.Error("consumer error", "error", err)
			}
		}()
	}

	srv := server.NewServer(cfg.HTTPAddr, analytics, loc)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("HTTP server initialized", "address", cfg.HTTPAddr)
	return srv.Start()
}

// openSource выбирает реализацию источника по драйверу из конфига
func openSource(ctx context.Context, cfg *config.Source) (service.Source, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		stor, err := storage.NewStorage(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Successfully connected to DB", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.Creds.DBName)
		return stor, stor.Close, nil
	case config.DriverMySQL, config.DriverSQLite:
		stor, err := storage.NewSQLStorage(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Successfully connected to DB", "driver", cfg.Driver)
		return stor, stor.Close, nil
	case config.DriverCSV:
		return source.NewCSV(cfg.OrdersCSV, cfg.ItemsCSV), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported source driver %q", cfg.Driver)
}
