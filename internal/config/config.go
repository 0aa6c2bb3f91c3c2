package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel   string           `json:"log_level" yaml:"log_level"`
	LogFormat  string           `json:"log_format" yaml:"log_format"`
	API        APIConfig        `json:"api" yaml:"api"`
	Source     SourceConfig     `json:"source" yaml:"source"`
	Ingest     IngestConfig     `json:"ingest" yaml:"ingest"`
	Thresholds ThresholdsConfig `json:"thresholds" yaml:"thresholds"`
}

type APIConfig struct {
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Addr        string   `json:"addr" yaml:"addr"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// SourceConfig selects where the record collections come from. The fixture
// driver reads FixturePath, or the embedded sample data when it is empty.
type SourceConfig struct {
	Driver      string `json:"driver" yaml:"driver"`
	FixturePath string `json:"fixture_path" yaml:"fixture_path"`
	DSN         string `json:"dsn" yaml:"dsn"`
	Seed        bool   `json:"seed" yaml:"seed"`
}

type IngestConfig struct {
	Kafka KafkaConfig `json:"kafka" yaml:"kafka"`
}

type KafkaConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
	GroupID string   `json:"group_id" yaml:"group_id"`
}

// ThresholdsConfig overrides classifier tables. A nil table keeps the
// built-in thresholds for that metric.
type ThresholdsConfig struct {
	Temperature  *TableConfig `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Humidity     *TableConfig `json:"humidity,omitempty" yaml:"humidity,omitempty"`
	SoilMoisture *TableConfig `json:"soil_moisture,omitempty" yaml:"soil_moisture,omitempty"`
	Battery      *TableConfig `json:"battery,omitempty" yaml:"battery,omitempty"`
}

type TableConfig struct {
	Bands    []BandConfig `json:"bands" yaml:"bands"`
	Fallback string       `json:"fallback" yaml:"fallback"`
}

// BandConfig bounds are inclusive unless the matching *_open flag is set.
// A missing bound is unbounded.
type BandConfig struct {
	Label   string   `json:"label" yaml:"label"`
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinOpen bool     `json:"min_open,omitempty" yaml:"min_open,omitempty"`
	MaxOpen bool     `json:"max_open,omitempty" yaml:"max_open,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		API:       APIConfig{Enabled: true, Addr: ":8080"},
		Source:    SourceConfig{Driver: "fixture"},
		Ingest:    IngestConfig{Kafka: KafkaConfig{Enabled: false}},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return Parse(content)
}

// Parse decodes YAML or JSON content over the defaults.
func Parse(content []byte) (*Config, error) {
	cfg := DefaultConfig()
	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.Source.Driver == "" {
		cfg.Source.Driver = "fixture"
	}
	cfg.Source.Driver = strings.ToLower(strings.TrimSpace(cfg.Source.Driver))
}

func Validate(cfg *Config) error {
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr required when api.enabled is true")
	}
	switch cfg.Source.Driver {
	case "fixture":
	case "sqlite", "postgres", "postgresql":
		if cfg.Source.Driver != "sqlite" && strings.TrimSpace(cfg.Source.DSN) == "" {
			return errors.New("source.dsn required for postgres")
		}
	default:
		return fmt.Errorf("source.driver %q not supported", cfg.Source.Driver)
	}
	if cfg.Ingest.Kafka.Enabled {
		if len(cfg.Ingest.Kafka.Brokers) == 0 || cfg.Ingest.Kafka.Topic == "" || cfg.Ingest.Kafka.GroupID == "" {
			return errors.New("ingest.kafka requires brokers, topic, group_id")
		}
	}
	for name, tc := range map[string]*TableConfig{
		"temperature":   cfg.Thresholds.Temperature,
		"humidity":      cfg.Thresholds.Humidity,
		"soil_moisture": cfg.Thresholds.SoilMoisture,
		"battery":       cfg.Thresholds.Battery,
	} {
		if err := validateTable(name, tc); err != nil {
			return err
		}
	}
	return nil
}

func validateTable(name string, tc *TableConfig) error {
	if tc == nil {
		return nil
	}
	if tc.Fallback == "" {
		return fmt.Errorf("thresholds.%s.fallback required", name)
	}
	for i, b := range tc.Bands {
		if b.Label == "" {
			return fmt.Errorf("thresholds.%s.bands[%d].label required", name, i)
		}
		if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
			return fmt.Errorf("thresholds.%s.bands[%d] min greater than max", name, i)
		}
	}
	return nil
}

type Manager struct {
	path    string
	cfg     atomic.Value
	modTime time.Time
}

func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	m := &Manager{path: path}
	m.cfg.Store(cfg)
	info, err := os.Stat(path)
	if err == nil {
		m.modTime = info.ModTime()
	}
	return m, nil
}

// NewStaticManager serves cfg without a backing file. Reload and Watch are
// no-ops; Update keeps the value in memory only.
func NewStaticManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m := &Manager{}
	m.cfg.Store(cfg)
	return m
}

func (m *Manager) Get() *Config {
	if v := m.cfg.Load(); v != nil {
		return v.(*Config)
	}
	return DefaultConfig()
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) Reload() (*Config, error) {
	if m.path == "" {
		return m.Get(), nil
	}
	cfg, err := Load(m.path)
	if err != nil {
		return nil, err
	}
	m.cfg.Store(cfg)
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return cfg, nil
}

func (m *Manager) Update(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := Validate(cfg); err != nil {
		return err
	}
	if m.path != "" {
		if err := Save(m.path, cfg); err != nil {
			return err
		}
	}
	m.cfg.Store(cfg)
	if m.path == "" {
		return nil
	}
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return nil
}

func (m *Manager) NeedsReload() (bool, error) {
	if m.path == "" {
		return false, nil
	}
	info, err := os.Stat(m.path)
	if err != nil {
		return false, err
	}
	return info.ModTime().After(m.modTime), nil
}

func (m *Manager) Watch(interval time.Duration, onReload func(*Config), onError func(error), stop <-chan struct{}) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			needs, err := m.NeedsReload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if !needs {
				continue
			}
			cfg, err := m.Reload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if onReload != nil {
				onReload(cfg)
			}
		case <-stop:
			return
		}
	}
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
