package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"agroeye/internal/config"
	"agroeye/internal/fixture"
	"agroeye/internal/model"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "agroeye.db") + "?_pragma=busy_timeout(5000)"
	st, err := NewStore(config.SourceConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return st
}

func TestSeedAndLoadPreservesOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	sample, err := fixture.Sample()
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if err := st.Seed(ctx, sample); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Alerts) != len(sample.Alerts) {
		t.Fatalf("alerts: %d", len(got.Alerts))
	}
	for i := range sample.Alerts {
		if got.Alerts[i] != sample.Alerts[i] {
			t.Fatalf("alert %d differs: %+v vs %+v", i, got.Alerts[i], sample.Alerts[i])
		}
	}
	for i := range sample.Sensors {
		if got.Sensors[i] != sample.Sensors[i] {
			t.Fatalf("sensor %d differs: %+v vs %+v", i, got.Sensors[i], sample.Sensors[i])
		}
	}
	if len(got.Users) != 5 || len(got.Datasets) != 4 || len(got.MapNodes) != 8 {
		t.Fatalf("unexpected sizes: %d %d %d", len(got.Users), len(got.Datasets), len(got.MapNodes))
	}
	if got.MapNodes[2] != sample.MapNodes[2] || got.Datasets[3] != sample.Datasets[3] || got.Users[4] != sample.Users[4] {
		t.Fatalf("records differ after round trip")
	}
}

func TestSeedReplacesRows(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	sample, _ := fixture.Sample()
	if err := st.Seed(ctx, sample); err != nil {
		t.Fatalf("seed: %v", err)
	}
	small := model.Snapshot{Alerts: sample.Alerts[:2]}
	if err := st.Seed(ctx, small); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Alerts) != 2 || len(got.Sensors) != 0 {
		t.Fatalf("expected rows replaced, got %d alerts %d sensors", len(got.Alerts), len(got.Sensors))
	}
}

func TestSeedRejectsInvalid(t *testing.T) {
	st := newTestStore(t)
	bad := model.Snapshot{Users: []model.User{{ID: "U1", Name: "No Email", Role: model.RoleUser, Status: model.UserActive}}}
	if err := st.Seed(context.Background(), bad); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := NewStore(config.SourceConfig{Driver: "mongo"}); err == nil {
		t.Fatalf("expected error")
	}
}
