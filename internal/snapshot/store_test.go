package snapshot

import (
	"errors"
	"math"
	"testing"

	"agroeye/internal/model"
)

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Sensors: []model.Sensor{
			{ID: "S001", Name: "Field Sensor A1", Location: "North Field - Zone A", Online: true, Temperature: 28, Battery: 85, Signal: 95},
		},
		Alerts: []model.Alert{
			{ID: "1", Priority: model.PriorityHigh, Category: model.CategoryDisease, Message: "Disease", Location: "Field A3"},
			{ID: "2", Priority: model.PriorityMedium, Category: model.CategoryPest, Message: "Pest", Location: "Field A1", IsRead: true},
			{ID: "3", Priority: model.PriorityNormal, Category: model.CategoryGrowth, Message: "Growth", Location: "Field B1"},
		},
	}
}

func TestMarkAlertRead(t *testing.T) {
	s := NewStore(testSnapshot())
	before := s.Snapshot()
	if err := s.MarkAlertRead("1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if before.Alerts[0].IsRead {
		t.Fatalf("earlier snapshot changed")
	}
	if !s.Snapshot().Alerts[0].IsRead {
		t.Fatalf("alert not marked read")
	}
	if err := s.MarkAlertRead("99"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkAllAndDelete(t *testing.T) {
	s := NewStore(testSnapshot())
	if n := s.MarkAllAlertsRead(); n != 2 {
		t.Fatalf("changed = %d", n)
	}
	if n := s.MarkAllAlertsRead(); n != 0 {
		t.Fatalf("second pass changed = %d", n)
	}
	v := s.Version()
	if err := s.DeleteAlert("2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Version() == v {
		t.Fatalf("version not bumped")
	}
	alerts := s.Snapshot().Alerts
	if len(alerts) != 2 || alerts[0].ID != "1" || alerts[1].ID != "3" {
		t.Fatalf("unexpected alerts after delete: %+v", alerts)
	}
	if err := s.DeleteAlert("2"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApplyReading(t *testing.T) {
	s := NewStore(testSnapshot())
	moisture := 64.0
	got, err := s.ApplyReading(SensorReading{SensorID: "S001", SoilMoisture: &moisture, LastUpdate: "just now"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.SoilMoisture != 64 || got.Temperature != 28 || got.LastUpdate != "just now" {
		t.Fatalf("unexpected sensor %+v", got)
	}

	off := false
	got, _ = s.ApplyReading(SensorReading{SensorID: "S001", Online: &off})
	if got.Online || got.Temperature != 0 || got.Signal != 0 || got.Battery != 85 {
		t.Fatalf("offline sensor must zero its readings: %+v", got)
	}

	nan := math.NaN()
	if _, err := s.ApplyReading(SensorReading{SensorID: "S001", Battery: &nan}); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := s.ApplyReading(SensorReading{SensorID: "S404"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApplyReadingReconnect(t *testing.T) {
	snap := testSnapshot()
	snap.Sensors = append(snap.Sensors, model.Sensor{ID: "S003", Name: "Field Sensor B1", Location: "South Field", Battery: 15})
	s := NewStore(snap)
	v := s.Version()

	on := true
	if _, err := s.ApplyReading(SensorReading{SensorID: "S003", Online: &on}); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if got := s.Snapshot().Sensors[1]; got.Online {
		t.Fatalf("sensor must stay offline after a bare online flag: %+v", got)
	}
	if s.Version() != v {
		t.Fatalf("rejected reading bumped the version")
	}

	temp, hum, soil := 29.0, 64.0, 71.0
	got, err := s.ApplyReading(SensorReading{SensorID: "S003", Online: &on, Temperature: &temp, Humidity: &hum, SoilMoisture: &soil})
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if !got.Online || got.Temperature != 29 || got.Humidity != 64 || got.SoilMoisture != 71 {
		t.Fatalf("unexpected sensor after reconnect %+v", got)
	}

	// Partial updates are fine once the sensor is online.
	if _, err := s.ApplyReading(SensorReading{SensorID: "S003", Online: &on, Humidity: &hum}); err != nil {
		t.Fatalf("online partial update: %v", err)
	}
}

func TestReplaceCopiesInput(t *testing.T) {
	s := NewStore(model.Snapshot{})
	next := testSnapshot()
	s.Replace(next)
	next.Alerts[0].Message = "changed"
	if s.Snapshot().Alerts[0].Message == "changed" {
		t.Fatalf("store aliases replaced snapshot")
	}
}
