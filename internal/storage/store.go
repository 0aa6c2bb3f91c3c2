package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"agroeye/internal/config"
	"agroeye/internal/fixture"
	"agroeye/internal/model"
)

// Store is a SQL-backed record source. Rows carry an increasing seq column so
// Load returns each collection in the order it was seeded.
type Store interface {
	Init(ctx context.Context) error
	Close() error
	Seed(ctx context.Context, snap model.Snapshot) error
	Load(ctx context.Context) (model.Snapshot, error)
}

func NewStore(cfg config.SourceConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

type baseStore struct {
	db     *sqlx.DB
	schema []string
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *baseStore) Init(ctx context.Context) error {
	if b.db == nil {
		return nil
	}
	for _, stmt := range b.schema {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const (
	sensorColumns  = "id, name, location, online, temperature, humidity, soil_moisture, battery, signal, last_update"
	alertColumns   = "id, priority, category, message, confidence, ts, location, is_read"
	datasetColumns = "id, name, kind, size, records, uploaded_by, uploaded_date, status"
	userColumns    = "id, name, email, role, status, last_login, fields"
	nodeColumns    = "id, name, x, y, temperature, moisture, health"
)

var tables = []string{"sensors", "alerts", "datasets", "users", "map_nodes"}

// Seed replaces every table's rows with snap in one transaction.
func (b *baseStore) Seed(ctx context.Context, snap model.Snapshot) error {
	if b.db == nil {
		return nil
	}
	if err := fixture.Validate(snap); err != nil {
		return err
	}
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	steps := []func() error{
		func() error { return insertAll(ctx, tx, "sensors", sensorColumns, snap.Sensors) },
		func() error { return insertAll(ctx, tx, "alerts", alertColumns, snap.Alerts) },
		func() error { return insertAll(ctx, tx, "datasets", datasetColumns, snap.Datasets) },
		func() error { return insertAll(ctx, tx, "users", userColumns, snap.Users) },
		func() error { return insertAll(ctx, tx, "map_nodes", nodeColumns, snap.MapNodes) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func insertAll[R any](ctx context.Context, tx *sqlx.Tx, table, columns string, records []R) error {
	if len(records) == 0 {
		return nil
	}
	names := strings.Split(columns, ", ")
	binds := make([]string, 0, len(names))
	for _, n := range names {
		binds = append(binds, ":"+n)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, columns, strings.Join(binds, ", "))
	for _, r := range records {
		if _, err := tx.NamedExecContext(ctx, stmt, r); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func (b *baseStore) Load(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot
	if b.db == nil {
		return snap, nil
	}
	if err := selectAll(ctx, b.db, &snap.Sensors, "sensors", sensorColumns); err != nil {
		return model.Snapshot{}, err
	}
	if err := selectAll(ctx, b.db, &snap.Alerts, "alerts", alertColumns); err != nil {
		return model.Snapshot{}, err
	}
	if err := selectAll(ctx, b.db, &snap.Datasets, "datasets", datasetColumns); err != nil {
		return model.Snapshot{}, err
	}
	if err := selectAll(ctx, b.db, &snap.Users, "users", userColumns); err != nil {
		return model.Snapshot{}, err
	}
	if err := selectAll(ctx, b.db, &snap.MapNodes, "map_nodes", nodeColumns); err != nil {
		return model.Snapshot{}, err
	}
	if err := fixture.Validate(snap); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

func selectAll[R any](ctx context.Context, db *sqlx.DB, dest *[]R, table, columns string) error {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY seq", columns, table)
	if err := db.SelectContext(ctx, dest, q); err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}
	return nil
}
