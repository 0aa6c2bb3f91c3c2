package fixture

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"agroeye/internal/model"
)

func TestSample(t *testing.T) {
	snap, err := Sample()
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(snap.Sensors) != 8 || len(snap.Alerts) != 10 || len(snap.Datasets) != 4 || len(snap.Users) != 5 || len(snap.MapNodes) != 8 {
		t.Fatalf("unexpected sizes: %d %d %d %d %d",
			len(snap.Sensors), len(snap.Alerts), len(snap.Datasets), len(snap.Users), len(snap.MapNodes))
	}
	if snap.Sensors[2].Online || snap.Sensors[2].Battery != 15 {
		t.Fatalf("S003 should be offline with battery 15: %+v", snap.Sensors[2])
	}
	if snap.Alerts[0].Priority != model.PriorityHigh || snap.Alerts[0].Category != model.CategoryDisease {
		t.Fatalf("alert 1: %+v", snap.Alerts[0])
	}
	if snap.Users[4].Status != model.UserInactive {
		t.Fatalf("user 5: %+v", snap.Users[4])
	}
	if snap.MapNodes[2].Health != model.HealthDisease {
		t.Fatalf("node 3: %+v", snap.MapNodes[2])
	}
}

func TestParseJSON(t *testing.T) {
	snap, err := Parse([]byte(`{"users":[{"id":"U1","name":"A","email":"a@b.c","role":"admin","status":"active"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(snap.Users) != 1 || snap.Users[0].Role != model.RoleAdmin {
		t.Fatalf("unexpected users: %+v", snap.Users)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("alerts:\n  - {id: \"1\", type: urgent, category: pest, message: m, location: l}\n"))
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	_, err = Parse([]byte("datasets:\n  - {id: DS9, name: Scans, type: pdf, status: active}\n"))
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for unknown dataset type, got %v", err)
	}
	if _, err := Parse([]byte("  ")); err == nil {
		t.Fatalf("expected error for empty fixture")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(path, sample, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	snap, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Alerts) != 10 {
		t.Fatalf("alerts: %d", len(snap.Alerts))
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
