package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	name     string
	createKV string
	selectKV string
	upsertKV string
}

var sqliteDialect = dialect{
	name: "sqlite",
	createKV: `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	selectKV: `SELECT value FROM kv WHERE key = ?`,
	upsertKV: `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
}

var postgresDialect = dialect{
	name: "postgres",
	createKV: `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	selectKV: `SELECT value FROM kv WHERE key = $1`,
	upsertKV: `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
}

var mysqlDialect = dialect{
	name: "mysql",
	createKV: "CREATE TABLE IF NOT EXISTS kv (" +
		"`key` VARCHAR(191) PRIMARY KEY," +
		"value LONGBLOB NOT NULL," +
		"updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" +
		")",
	selectKV: "SELECT value FROM kv WHERE `key` = ?",
	upsertKV: "INSERT INTO kv (`key`, value) VALUES (?, ?) " +
		"ON DUPLICATE KEY UPDATE value = VALUES(value)",
}

// sqlStore is the shared implementation for SQLite, Postgres and MySQL.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

// openSQL opens a networked SQL backend and creates the kv table.
func openSQL(ctx context.Context, driverName, dsn string, d dialect) (Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}

	s := &sqlStore{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[STORAGE] Connected to %s", driverName)
	return s, nil
}

func (s *sqlStore) migrate(ctx context.Context) error {
	migrations := []string{
		s.dialect.createKV,
	}
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %.40s: %w", m, err)
		}
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.selectKV, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.upsertKV, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
