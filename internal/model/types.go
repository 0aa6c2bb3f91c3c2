package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

// Invalid wraps ErrInvalidArgument with a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

type MetricKind string

const (
	MetricTemperature  MetricKind = "temperature"
	MetricHumidity     MetricKind = "humidity"
	MetricSoilMoisture MetricKind = "soilMoisture"
	MetricBattery      MetricKind = "battery"
	MetricConfidence   MetricKind = "confidence"
)

func (MetricKind) Values() []MetricKind {
	return []MetricKind{MetricTemperature, MetricHumidity, MetricSoilMoisture, MetricBattery, MetricConfidence}
}

func (k MetricKind) Valid() bool { return contains(k.Values(), k) }

type Status string

const (
	StatusOptimal       Status = "optimal"
	StatusWarning       Status = "warning"
	StatusCritical      Status = "critical"
	StatusGood          Status = "good"
	StatusNeedsCharging Status = "needs-charging"
	StatusLow           Status = "low"
	// StatusNone is returned for pass-through metrics.
	StatusNone Status = ""
)

// Values lists the labels a band or fallback may carry. StatusNone is not
// one of them.
func (Status) Values() []Status {
	return []Status{StatusOptimal, StatusWarning, StatusCritical, StatusGood, StatusNeedsCharging, StatusLow}
}

func (s Status) Valid() bool { return contains(s.Values(), s) }

// Reading is one metric value carried by a record. Available is false for
// the zero sentinel an offline sensor reports.
type Reading struct {
	Kind      MetricKind `json:"kind"`
	Value     float64    `json:"value"`
	Available bool       `json:"available"`
}

// Record is the common view the query layer needs from every record kind.
type Record interface {
	RecordID() string
	SearchFields() []string
	Readings() []Reading
	Validate() error
}

// Tag is a closed enum used as a record's category. The zero value must
// report the full set through Values.
type Tag[T any] interface {
	~string
	Values() []T
	Valid() bool
}

// Tagged is a record carrying a category tag of type T.
type Tagged[T any] interface {
	Record
	Tag() T
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func requireField(kind, id, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return Invalid("%s %q missing %s", kind, id, field)
	}
	return nil
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return Invalid("%s with empty id", kind)
	}
	return nil
}
