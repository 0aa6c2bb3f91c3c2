package ingest

import (
	"context"
	"time"

	"agroeye/internal/model"
	"agroeye/internal/snapshot"
)

// Sink receives parsed sensor readings.
type Sink interface {
	ApplyReading(r snapshot.SensorReading) (model.Sensor, error)
	Version() uint64
}

func BackoffSleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = 200 * time.Millisecond
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
