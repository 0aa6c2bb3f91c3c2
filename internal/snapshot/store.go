// Package snapshot holds the current record collections and applies the
// state transitions the dashboard performs on them. Readers always get a
// private copy, so a view and its counts can be derived from one consistent
// snapshot while writers keep going.
package snapshot

import (
	"math"
	"strings"
	"sync"

	"agroeye/internal/model"
)

type Store struct {
	mu      sync.RWMutex
	data    model.Snapshot
	version uint64
}

func NewStore(initial model.Snapshot) *Store {
	return &Store{data: initial.Clone(), version: 1}
}

func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Replace swaps in a whole new set of collections, as after a reload from
// the record source.
func (s *Store) Replace(next model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = next.Clone()
	s.version++
}

func (s *Store) MarkAlertRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.data.Alerts, id)
	if idx < 0 {
		return notFound("alert", id)
	}
	next := append([]model.Alert(nil), s.data.Alerts...)
	next[idx].IsRead = true
	s.data.Alerts = next
	s.version++
	return nil
}

// MarkAllAlertsRead returns how many alerts changed state.
func (s *Store) MarkAllAlertsRead() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append([]model.Alert(nil), s.data.Alerts...)
	changed := 0
	for i := range next {
		if !next[i].IsRead {
			next[i].IsRead = true
			changed++
		}
	}
	if changed > 0 {
		s.data.Alerts = next
		s.version++
	}
	return changed
}

func (s *Store) DeleteAlert(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.data.Alerts, id)
	if idx < 0 {
		return notFound("alert", id)
	}
	next := make([]model.Alert, 0, len(s.data.Alerts)-1)
	next = append(next, s.data.Alerts[:idx]...)
	next = append(next, s.data.Alerts[idx+1:]...)
	s.data.Alerts = next
	s.version++
	return nil
}

// SensorReading is a partial update for one sensor. Nil fields are left
// unchanged.
type SensorReading struct {
	SensorID     string   `json:"sensor_id"`
	Online       *bool    `json:"online,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	Humidity     *float64 `json:"humidity,omitempty"`
	SoilMoisture *float64 `json:"soil_moisture,omitempty"`
	Battery      *float64 `json:"battery,omitempty"`
	Signal       *int     `json:"signal,omitempty"`
	LastUpdate   string   `json:"last_update,omitempty"`
}

func (r SensorReading) Validate() error {
	if strings.TrimSpace(r.SensorID) == "" {
		return model.Invalid("reading without sensor_id")
	}
	for name, v := range map[string]*float64{
		"temperature":   r.Temperature,
		"humidity":      r.Humidity,
		"soil_moisture": r.SoilMoisture,
		"battery":       r.Battery,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return model.Invalid("reading for %q has non-finite %s", r.SensorID, name)
		}
	}
	return nil
}

// ApplyReading merges r into the matching sensor and returns the result. A
// reading that brings an offline sensor back online must carry every
// environmental metric.
func (s *Store) ApplyReading(r SensorReading) (model.Sensor, error) {
	if err := r.Validate(); err != nil {
		return model.Sensor{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.data.Sensors, r.SensorID)
	if idx < 0 {
		return model.Sensor{}, notFound("sensor", r.SensorID)
	}
	wasOnline := s.data.Sensors[idx].Online
	if !wasOnline && r.Online != nil && *r.Online &&
		(r.Temperature == nil || r.Humidity == nil || r.SoilMoisture == nil) {
		// An offline sensor stores zeros; they must not be served as readings.
		return model.Sensor{}, model.Invalid("sensor %q coming online needs temperature, humidity and soil_moisture", r.SensorID)
	}
	next := append([]model.Sensor(nil), s.data.Sensors...)
	sensor := &next[idx]
	if r.Online != nil {
		sensor.Online = *r.Online
	}
	if r.Temperature != nil {
		sensor.Temperature = *r.Temperature
	}
	if r.Humidity != nil {
		sensor.Humidity = *r.Humidity
	}
	if r.SoilMoisture != nil {
		sensor.SoilMoisture = *r.SoilMoisture
	}
	if r.Battery != nil {
		sensor.Battery = *r.Battery
	}
	if r.Signal != nil {
		sensor.Signal = *r.Signal
	}
	if r.LastUpdate != "" {
		sensor.LastUpdate = r.LastUpdate
	}
	if !sensor.Online {
		sensor.Temperature, sensor.Humidity, sensor.SoilMoisture, sensor.Signal = 0, 0, 0, 0
	}
	s.data.Sensors = next
	s.version++
	return *sensor, nil
}

func indexOf[R model.Record](records []R, id string) int {
	for i, r := range records {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return e.Kind + " " + `"` + e.ID + `" not found` }

func (e *NotFoundError) Unwrap() error { return model.ErrNotFound }
