package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"agroeye/internal/model"
	"agroeye/internal/snapshot"
)

func ParseReadingBytes(data []byte) (snapshot.SensorReading, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return snapshot.SensorReading{}, err
	}
	return ParseReadingMap(obj)
}

// ParseReadingMap accepts the field spellings different gateways use.
// Unknown keys are ignored.
func ParseReadingMap(obj map[string]interface{}) (snapshot.SensorReading, error) {
	fields := make(map[string]interface{}, len(obj))
	for key, val := range obj {
		fields[strings.ToLower(key)] = val
	}
	var r snapshot.SensorReading
	if v, ok := first(fields, "sensor_id", "sensorid", "sensor", "device_id", "id"); ok {
		r.SensorID = strings.TrimSpace(fmt.Sprint(v))
	}
	if r.SensorID == "" {
		return snapshot.SensorReading{}, model.Invalid("reading without sensor id")
	}
	var err error
	if r.Temperature, err = floatField(fields, "temperature", "temp"); err != nil {
		return snapshot.SensorReading{}, err
	}
	if r.Humidity, err = floatField(fields, "humidity", "hum"); err != nil {
		return snapshot.SensorReading{}, err
	}
	if r.SoilMoisture, err = floatField(fields, "soil_moisture", "soilmoisture", "moisture"); err != nil {
		return snapshot.SensorReading{}, err
	}
	if r.Battery, err = floatField(fields, "battery", "battery_level"); err != nil {
		return snapshot.SensorReading{}, err
	}
	if f, err := floatField(fields, "signal", "rssi_pct"); err != nil {
		return snapshot.SensorReading{}, err
	} else if f != nil {
		n := int(*f)
		r.Signal = &n
	}
	if v, ok := first(fields, "online", "connected"); ok {
		b, err := toBool(v)
		if err != nil {
			return snapshot.SensorReading{}, model.Invalid("online: %v", err)
		}
		r.Online = &b
	}
	if v, ok := first(fields, "last_update", "lastupdate", "timestamp", "ts"); ok {
		r.LastUpdate = fmt.Sprint(v)
	}
	return r, nil
}

func first(fields map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func floatField(fields map[string]interface{}, keys ...string) (*float64, error) {
	v, ok := first(fields, keys...)
	if !ok {
		return nil, nil
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, model.Invalid("%s: %q is not a number", keys[0], x)
		}
		f = parsed
	default:
		return nil, model.Invalid("%s: unexpected %T", keys[0], v)
	}
	return &f, nil
}

func toBool(v interface{}) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(x))
	}
	return false, fmt.Errorf("unexpected %T", v)
}
