package storage

import (
	"context"
	"log/slog"

	"agroeye/internal/config"
	"agroeye/internal/fixture"
	"agroeye/internal/model"
)

// LoadSnapshot reads the record collections from the configured source. SQL
// drivers are seeded from the fixture first when cfg.Seed is set.
func LoadSnapshot(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (model.Snapshot, error) {
	if cfg.Driver == "" || cfg.Driver == "fixture" {
		snap, err := loadFixture(cfg.FixturePath)
		if err == nil && logger != nil {
			logger.Info("records loaded from fixture", "path", cfg.FixturePath, "sensors", len(snap.Sensors), "alerts", len(snap.Alerts))
		}
		return snap, err
	}
	st, err := NewStore(cfg)
	if err != nil {
		return model.Snapshot{}, err
	}
	defer st.Close()
	if err := st.Init(ctx); err != nil {
		return model.Snapshot{}, err
	}
	if cfg.Seed {
		seed, err := loadFixture(cfg.FixturePath)
		if err != nil {
			return model.Snapshot{}, err
		}
		if err := st.Seed(ctx, seed); err != nil {
			return model.Snapshot{}, err
		}
		if logger != nil {
			logger.Info("storage seeded", "driver", cfg.Driver)
		}
	}
	snap, err := st.Load(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	if logger != nil {
		logger.Info("records loaded from storage", "driver", cfg.Driver, "sensors", len(snap.Sensors), "alerts", len(snap.Alerts))
	}
	return snap, nil
}

func loadFixture(path string) (model.Snapshot, error) {
	if path == "" {
		return fixture.Sample()
	}
	return fixture.Load(path)
}
