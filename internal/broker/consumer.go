package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Asus/TradeAnalytics/config"
	"github.com/Asus/TradeAnalytics/internal/service"

	"github.com/segmentio/kafka-go"
)

// ImportEvent публикует ETL после того, как обновил таблицы источника
type ImportEvent struct {
	Source     string    `json:"source"`
	Rows       int       `json:"rows"`
	ImportedAt time.Time `json:"imported_at"`
}

type Reloader interface {
	Reload(ctx context.Context) (*service.Snapshot, error) // Интерфейс для вызова из service
}

// интерфейс, для того чтобы можно было запускать тесты без брокера
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaConsumer struct {
	reader   messageReader
	reloader Reloader
}

func NewKafkaConsumer(cfg config.Kafka, reloader Reloader) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers, // e.g. "localhost:9092" брокеры, которые подключены к кластеру
		Topic:    cfg.Topic,   // "trade-imports"
		GroupID:  cfg.GroupID, // "trade-analytics"
		MaxBytes: 10e6,        // 10MB
	})
	return &KafkaConsumer{reader: reader, reloader: reloader}
}

// запускаем в отдельной горутине: каждое событие импорта перезагружает датасет
func (c *KafkaConsumer) ConsumeAndReload(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}
		c.handle(ctx, msg)
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, msg kafka.Message) {
	var event ImportEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		slog.Error("failed to parse import event JSON", "offset", msg.Offset, "error", err)
		return // Пропускаем некорректное сообщение, предварительно логируя
	}

	snap, err := c.reloader.Reload(ctx)
	if err != nil {
		// прежний снимок остаётся в работе
		slog.Error("failed to reload dataset", "source", event.Source, "error", err)
		return
	}
	slog.Info("dataset reloaded from import event",
		"source", event.Source,
		"rows", event.Rows,
		"imported_at", event.ImportedAt,
		"snapshot_id", snap.ID)
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
