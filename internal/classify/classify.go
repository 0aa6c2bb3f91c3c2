// Package classify maps raw metric readings to discrete status labels.
//
// Each metric kind owns an ordered table of numeric bands. Bands are tried
// top to bottom and the first one containing the value wins; a value no band
// contains gets the table's fallback label. A Classifier is immutable after
// construction and safe for concurrent use.
package classify

import (
	"math"

	"agroeye/internal/config"
	"agroeye/internal/model"
)

// Band is a numeric interval with a label. Min and Max may be infinite.
type Band struct {
	Label   model.Status
	Min     float64
	Max     float64
	MinOpen bool
	MaxOpen bool
}

// Contains reports whether v lies inside the band, honouring open bounds.
func (b Band) Contains(v float64) bool {
	if b.MinOpen {
		if v <= b.Min {
			return false
		}
	} else if v < b.Min {
		return false
	}
	if b.MaxOpen {
		return v < b.Max
	}
	return v <= b.Max
}

// Table is the ordered list of bands for one metric kind.
type Table struct {
	Bands    []Band
	Fallback model.Status
	// PassThrough tables accept any finite value and return StatusNone.
	PassThrough bool
}

func (t Table) classify(v float64) model.Status {
	if t.PassThrough {
		return model.StatusNone
	}
	for _, b := range t.Bands {
		if b.Contains(v) {
			return b.Label
		}
	}
	return t.Fallback
}

// Classifier holds one table per metric kind.
type Classifier struct {
	tables map[model.MetricKind]Table
}

// DefaultTables returns fresh copies of the built-in thresholds.
func DefaultTables() map[model.MetricKind]Table {
	inf := math.Inf(1)
	return map[model.MetricKind]Table{
		model.MetricTemperature: {
			Bands: []Band{
				{Label: model.StatusOptimal, Min: 25, Max: 32},
				{Label: model.StatusWarning, Min: 32, Max: 35, MinOpen: true},
			},
			Fallback: model.StatusCritical,
		},
		model.MetricHumidity: {
			Bands: []Band{
				{Label: model.StatusOptimal, Min: 60, Max: 70},
				{Label: model.StatusWarning, Min: 50, Max: 60, MaxOpen: true},
			},
			Fallback: model.StatusCritical,
		},
		model.MetricSoilMoisture: {
			Bands: []Band{
				{Label: model.StatusOptimal, Min: 70, Max: 80},
				{Label: model.StatusWarning, Min: 60, Max: 70, MaxOpen: true},
			},
			Fallback: model.StatusCritical,
		},
		model.MetricBattery: {
			Bands: []Band{
				{Label: model.StatusGood, Min: 50, Max: inf, MinOpen: true},
				{Label: model.StatusNeedsCharging, Min: 20, Max: 50, MinOpen: true},
			},
			Fallback: model.StatusLow,
		},
		model.MetricConfidence: {PassThrough: true},
	}
}

func Default() *Classifier {
	return &Classifier{tables: DefaultTables()}
}

// New builds a classifier from tables. Kinds missing from tables keep their
// default thresholds.
func New(tables map[model.MetricKind]Table) (*Classifier, error) {
	merged := DefaultTables()
	for kind, t := range tables {
		if !kind.Valid() {
			return nil, model.Invalid("unknown metric kind %q", kind)
		}
		if err := validateTable(kind, t); err != nil {
			return nil, err
		}
		merged[kind] = Table{
			Bands:       append([]Band(nil), t.Bands...),
			Fallback:    t.Fallback,
			PassThrough: t.PassThrough,
		}
	}
	return &Classifier{tables: merged}, nil
}

// FromConfig converts the configured thresholds into a classifier.
func FromConfig(cfg config.ThresholdsConfig) (*Classifier, error) {
	tables := make(map[model.MetricKind]Table)
	for kind, tc := range map[model.MetricKind]*config.TableConfig{
		model.MetricTemperature:  cfg.Temperature,
		model.MetricHumidity:     cfg.Humidity,
		model.MetricSoilMoisture: cfg.SoilMoisture,
		model.MetricBattery:      cfg.Battery,
	} {
		if tc == nil {
			continue
		}
		t := Table{Fallback: model.Status(tc.Fallback)}
		for _, bc := range tc.Bands {
			b := Band{
				Label:   model.Status(bc.Label),
				Min:     math.Inf(-1),
				Max:     math.Inf(1),
				MinOpen: bc.MinOpen,
				MaxOpen: bc.MaxOpen,
			}
			if bc.Min != nil {
				b.Min = *bc.Min
			}
			if bc.Max != nil {
				b.Max = *bc.Max
			}
			t.Bands = append(t.Bands, b)
		}
		tables[kind] = t
	}
	return New(tables)
}

func validateTable(kind model.MetricKind, t Table) error {
	if t.PassThrough {
		return nil
	}
	if t.Fallback == model.StatusNone {
		return model.Invalid("%s thresholds need a fallback label", kind)
	}
	if !t.Fallback.Valid() {
		return model.Invalid("%s fallback %q is not a known status", kind, t.Fallback)
	}
	for i, b := range t.Bands {
		if b.Label == model.StatusNone {
			return model.Invalid("%s band %d has no label", kind, i)
		}
		if !b.Label.Valid() {
			return model.Invalid("%s band %d label %q is not a known status", kind, i, b.Label)
		}
		if math.IsNaN(b.Min) || math.IsNaN(b.Max) || b.Min > b.Max {
			return model.Invalid("%s band %d has bounds [%v, %v]", kind, i, b.Min, b.Max)
		}
	}
	return nil
}

// Classify returns the status of value for kind. NaN and infinite values are
// rejected rather than bucketed.
func (c *Classifier) Classify(kind model.MetricKind, value float64) (model.Status, error) {
	t, ok := c.tables[kind]
	if !ok {
		return model.StatusNone, model.Invalid("unknown metric kind %q", kind)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return model.StatusNone, model.Invalid("%s value %v is not a finite number", kind, value)
	}
	return t.classify(value), nil
}

// Table returns a copy of the thresholds in effect for kind.
func (c *Classifier) Table(kind model.MetricKind) (Table, bool) {
	t, ok := c.tables[kind]
	if !ok {
		return Table{}, false
	}
	t.Bands = append([]Band(nil), t.Bands...)
	return t, true
}
