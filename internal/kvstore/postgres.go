package kvstore

import (
	"fmt"

	_ "github.com/lib/pq"
)

func buildPostgresDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.dsn()
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.Username, cfg.Password, cfg.Database, sslMode,
	)
}
