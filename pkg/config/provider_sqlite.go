package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements Provider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return &SQLiteProvider{db: db, dbPath: dbPath}, nil
}

// settings are stored one value per row:
//
//	CREATE TABLE settings (section TEXT, key TEXT, value TEXT,
//	                       PRIMARY KEY (section, key));
func (s *SQLiteProvider) get(section, key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM settings WHERE section = ? AND key = ?`, section, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting %s.%s: %w", section, key, err)
	}
	return value, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	fields := []struct {
		section, key string
		dest         *string
	}{
		{"terrain", "data_dir", &config.Terrain.DataDir},
		{"terrain", "cache_dir", &config.Terrain.CacheDir},
		{"terrain", "colour_scheme", &config.Terrain.ColourScheme},
		{"postcodes", "backend", &config.Postcodes.Backend},
		{"postcodes", "sqlite_path", &config.Postcodes.SQLitePath},
		{"postcodes", "postgres_dsn", &config.Postcodes.PostgresDSN},
		{"log", "file", &config.Log.File},
	}
	for _, f := range fields {
		value, err := s.get(f.section, f.key)
		if err != nil {
			return nil, err
		}
		*f.dest = value
	}
	if config.Terrain.DataDir == "" {
		return nil, fmt.Errorf("%s: terrain.data_dir setting is required", s.dbPath)
	}

	listenAddr, err := s.get("server", "listen_addr")
	if err != nil {
		return nil, err
	}
	var port int
	portStr, err := s.get("server", "port")
	if err != nil {
		return nil, err
	}
	if portStr != "" {
		if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
			return nil, fmt.Errorf("server.port is not a number: %q", portStr)
		}
		config.Server = &ServerData{ListenAddr: listenAddr, Port: port}
	}

	return config, nil
}

// IsReadOnly returns false; SQLite configs can be managed in place
func (s *SQLiteProvider) IsReadOnly() bool { return false }

// Close closes the database connection
func (s *SQLiteProvider) Close() error { return s.db.Close() }
