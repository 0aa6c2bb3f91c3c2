package storage

import (
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/agroeye?sslmode=disable"
	}
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db, schema: postgresSchema}}, nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS sensors (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		online BOOLEAN NOT NULL,
		temperature DOUBLE PRECISION NOT NULL,
		humidity DOUBLE PRECISION NOT NULL,
		soil_moisture DOUBLE PRECISION NOT NULL,
		battery DOUBLE PRECISION NOT NULL,
		signal INTEGER NOT NULL,
		last_update TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		priority TEXT NOT NULL,
		category TEXT NOT NULL,
		message TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		ts TEXT NOT NULL,
		location TEXT NOT NULL,
		is_read BOOLEAN NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_priority ON alerts(priority)`,
	`CREATE TABLE IF NOT EXISTS datasets (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		size TEXT NOT NULL,
		records INTEGER NOT NULL,
		uploaded_by TEXT NOT NULL,
		uploaded_date TEXT NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		last_login TEXT NOT NULL,
		fields INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS map_nodes (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		x DOUBLE PRECISION NOT NULL,
		y DOUBLE PRECISION NOT NULL,
		temperature DOUBLE PRECISION NOT NULL,
		moisture DOUBLE PRECISION NOT NULL,
		health TEXT NOT NULL
	)`,
}
