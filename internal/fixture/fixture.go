package fixture

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"agroeye/internal/model"
	"agroeye/internal/query"
)

//go:embed sample.yaml
var sample []byte

// Sample returns the built-in demo collections.
func Sample() (model.Snapshot, error) {
	return Parse(sample)
}

func Load(path string) (model.Snapshot, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap, err := Parse(content)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("fixture %s: %w", path, err)
	}
	return snap, nil
}

// Parse decodes a YAML or JSON document and validates every collection.
func Parse(content []byte) (model.Snapshot, error) {
	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return model.Snapshot{}, errors.New("fixture is empty")
	}
	var snap model.Snapshot
	var err error
	if strings.HasPrefix(trimmed, "{") {
		err = json.Unmarshal([]byte(trimmed), &snap)
	} else {
		err = yaml.Unmarshal([]byte(trimmed), &snap)
	}
	if err != nil {
		return model.Snapshot{}, err
	}
	if err := Validate(snap); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

func Validate(snap model.Snapshot) error {
	if err := query.Validate(snap.Sensors); err != nil {
		return fmt.Errorf("sensors: %w", err)
	}
	if err := query.Validate(snap.Alerts); err != nil {
		return fmt.Errorf("alerts: %w", err)
	}
	if err := query.Validate(snap.Datasets); err != nil {
		return fmt.Errorf("datasets: %w", err)
	}
	if err := query.Validate(snap.Users); err != nil {
		return fmt.Errorf("users: %w", err)
	}
	if err := query.Validate(snap.MapNodes); err != nil {
		return fmt.Errorf("map nodes: %w", err)
	}
	return nil
}
