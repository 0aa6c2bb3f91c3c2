package storage

import (
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	baseStore
}

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:agroeye.db?_pragma=busy_timeout(5000)"
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db, schema: sqliteSchema}}, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS sensors (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		online INTEGER NOT NULL,
		temperature REAL NOT NULL,
		humidity REAL NOT NULL,
		soil_moisture REAL NOT NULL,
		battery REAL NOT NULL,
		signal INTEGER NOT NULL,
		last_update TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		priority TEXT NOT NULL,
		category TEXT NOT NULL,
		message TEXT NOT NULL,
		confidence REAL NOT NULL,
		ts TEXT NOT NULL,
		location TEXT NOT NULL,
		is_read INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS datasets (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
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
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		last_login TEXT NOT NULL,
		fields INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS map_nodes (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		temperature REAL NOT NULL,
		moisture REAL NOT NULL,
		health TEXT NOT NULL
	)`,
}
