package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

// Store describes the single blob the daemon owns. Format is fixed for the
// lifetime of a store.
type Store struct {
	FilePath    string `yaml:"filePath" validate:"required|unixPath"`
	Format      string `yaml:"format" validate:"required|in:cbor,protobuf,proto"`
	Compression string `yaml:"compression" validate:"in:none,zstd"`

	// QuarantineDir keeps unreadable blobs. Empty disables it.
	QuarantineDir string        `yaml:"quarantineDir"`
	QuarantineTTL time.Duration `yaml:"quarantineTTL"`
}

type Persistence struct {
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server        `yaml:"webServer"`
	Store       Store         `yaml:"store"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}
