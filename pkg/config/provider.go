// Package config loads application configuration from YAML files or
// SQLite databases through a common provider interface.
package config

// Provider defines the interface for configuration data sources
type Provider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Terrain   TerrainData   `json:"terrain" yaml:"terrain"`
	Postcodes PostcodeData  `json:"postcodes,omitempty" yaml:"postcodes,omitempty"`
	Server    *ServerData   `json:"server,omitempty" yaml:"server,omitempty"`
	Log       LogData       `json:"log,omitempty" yaml:"log,omitempty"`
}

// TerrainData holds the Terrain 50 dataset and renderer settings
type TerrainData struct {
	// DataDir is the root of the unzipped terr50_gagg_gb distribution
	DataDir string `json:"data_dir" yaml:"data_dir"`
	// CacheDir enables the parsed-mosaic cache when set
	CacheDir     string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
	ColourScheme string `json:"colour_scheme,omitempty" yaml:"colour_scheme,omitempty"`
}

// PostcodeData selects and configures the Code-Point Open store
type PostcodeData struct {
	// Backend is "sqlite" or "postgres"; empty disables postcode features
	Backend     string `json:"backend,omitempty" yaml:"backend,omitempty"`
	SQLitePath  string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
	PostgresDSN string `json:"postgres_dsn,omitempty" yaml:"postgres_dsn,omitempty"`
}

// ServerData holds the map server's HTTP settings
type ServerData struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	Port       int    `json:"port" yaml:"port"`
}

// LogData holds logging output settings
type LogData struct {
	// File switches logging from stderr to a rotated file
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}
