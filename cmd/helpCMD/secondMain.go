package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/Asus/TradeAnalytics/internal/broker"
	"github.com/segmentio/kafka-go"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "comma separated kafka brokers")
	topic := flag.String("topic", "trade-imports", "topic the analytics service listens on")
	source := flag.String("source", "orders.csv", "name of the refreshed source")
	rows := flag.Int("rows", 0, "number of imported rows")
	flag.Parse()

	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:    *topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	event := broker.ImportEvent{Source: *source, Rows: *rows, ImportedAt: time.Now().UTC()}
	jsonData, err := json.Marshal(event)
	if err != nil {
		fmt.Println("failed to encode event", err)
		return
	}

	err = writer.WriteMessages(context.Background(), kafka.Message{Key: []byte(*source), Value: jsonData})
	if err != nil {
		fmt.Println("failed to write", err)
		return
	}
	fmt.Println("Import event sent")
}

// это мини "скрипт" для отправки события импорта в kafka после обновления таблиц
