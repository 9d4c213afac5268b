// Package kafka publishes derived track products to the sink topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/vortex-track/internal/config"
	"github.com/couchcryptid/vortex-track/internal/observability"
)

// ProductMessage is one derived product for one forecast cycle:
// GeoJSON payload plus the identifiers needed to key and route it.
type ProductMessage struct {
	StormID    string          `json:"storm_id"`
	Product    string          `json:"product"` // track, isotachs, swaths
	Advisory   string          `json:"advisory"`
	Cycle      string          `json:"cycle"`
	ComputedAt time.Time       `json:"computed_at"`
	GeoJSON    json.RawMessage `json:"geojson"`
}

// Key routes all products of one cycle to the same partition.
func (m ProductMessage) Key() string {
	return fmt.Sprintf("%s/%s/%s", m.StormID, m.Advisory, m.Cycle)
}

// Writer produces product messages to a Kafka topic.
type Writer struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// PublishBatch serializes and publishes a set of products in a single
// WriteMessages call.
func (w *Writer) PublishBatch(ctx context.Context, products []ProductMessage) error {
	if len(products) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(products))
	for i := range products {
		msg, err := serializeToMessage(products[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		w.metrics.PublishErrors.Inc()
		return fmt.Errorf("publish products: %w", err)
	}
	w.metrics.MessagesPublished.Add(float64(len(msgs)))
	w.logger.Debug("products published", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a product into a Kafka message.
func serializeToMessage(product ProductMessage) (kafkago.Message, error) {
	data, err := json.Marshal(product)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize product: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(product.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "product", Value: []byte(product.Product)},
			{Key: "computed_at", Value: []byte(product.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}
