package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"agroeye/internal/config"
	"agroeye/internal/model"
)

func TestLoadSnapshotFixture(t *testing.T) {
	snap, err := LoadSnapshot(context.Background(), config.SourceConfig{Driver: "fixture"}, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Sensors) != 8 || len(snap.Alerts) != 10 {
		t.Fatalf("unexpected sizes: %d %d", len(snap.Sensors), len(snap.Alerts))
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("users:\n  - {id: U1, name: A, role: root, status: active, email: a@b}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSnapshot(context.Background(), config.SourceConfig{Driver: "fixture", FixturePath: path}, nil); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestLoadSnapshotSeededSQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "src.db") + "?_pragma=busy_timeout(5000)"
	ctx := context.Background()
	snap, err := LoadSnapshot(ctx, config.SourceConfig{Driver: "sqlite", DSN: dsn, Seed: true}, nil)
	if err != nil {
		t.Fatalf("seeded load: %v", err)
	}
	if len(snap.MapNodes) != 8 || snap.Alerts[0].ID != "1" {
		t.Fatalf("unexpected snapshot: %d nodes, first alert %q", len(snap.MapNodes), snap.Alerts[0].ID)
	}
	// A second start without seeding reads the rows already stored.
	again, err := LoadSnapshot(ctx, config.SourceConfig{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Users) != len(snap.Users) {
		t.Fatalf("users = %d", len(again.Users))
	}
}
