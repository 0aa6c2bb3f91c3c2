package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"agroeye/internal/config"
	"agroeye/internal/metrics"
	"agroeye/internal/model"
)

// MessageReader is the part of *kafka.Reader the consumer loop needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

func StartKafka(ctx context.Context, cfg config.KafkaConfig, sink Sink, logger *slog.Logger) {
	if !cfg.Enabled {
		if logger != nil {
			logger.Info("kafka ingest disabled")
		}
		return
	}
	if logger != nil {
		logger.Info("kafka ingest enabled", "brokers", cfg.Brokers, "topic", cfg.Topic, "group_id", cfg.GroupID)
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 1e6,
	})
	go Consume(ctx, reader, sink, logger)
}

// Consume applies every message from r to sink until ctx is done.
func Consume(ctx context.Context, r MessageReader, sink Sink, logger *slog.Logger) {
	defer r.Close()
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if logger != nil {
				logger.Warn("kafka read error", "err", err)
			}
			if !BackoffSleep(ctx, time.Second) {
				return
			}
			continue
		}
		HandleMessage(m.Value, sink, logger)
	}
}

// HandleMessage parses one reading and applies it. It reports whether the
// reading was applied.
func HandleMessage(value []byte, sink Sink, logger *slog.Logger) bool {
	reading, err := ParseReadingBytes(value)
	if err != nil {
		metrics.ReadingsTotal.WithLabelValues("kafka", "rejected").Inc()
		if logger != nil {
			logger.Warn("kafka reading rejected", "err", err)
		}
		return false
	}
	sensor, err := sink.ApplyReading(reading)
	if err != nil {
		metrics.ReadingsTotal.WithLabelValues("kafka", "rejected").Inc()
		if logger != nil {
			level := slog.LevelWarn
			if errors.Is(err, model.ErrNotFound) {
				level = slog.LevelDebug
			}
			logger.Log(context.Background(), level, "kafka reading not applied", "sensor_id", reading.SensorID, "err", err)
		}
		return false
	}
	metrics.ReadingsTotal.WithLabelValues("kafka", "applied").Inc()
	metrics.SnapshotVersion.Set(float64(sink.Version()))
	if logger != nil {
		logger.Debug("sensor reading applied", "sensor_id", sensor.ID, "online", sensor.Online)
	}
	return true
}
