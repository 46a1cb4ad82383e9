// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Store drivers understood by the server.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds runtime settings for the FieldLog server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the operator gRPC endpoint.
//   - StoreDriver: sqlite, postgres or memory.
//   - DatabaseDSN: sqlite file path or PostgreSQL DSN (pgx).
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: operator token lifetime.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible footage store.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - TapePrefix: prefix of auto-generated tape numbers.
//   - ROVLabels: movement codes of ROV deployments (JSON only).
//   - DefaultMode: mode a new operator session starts in.
//   - LogLevel / LogFormat: slog handler settings.
type Config struct {
	EndpointAddrGRPC            string
	StoreDriver                 string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
	TapePrefix                  string
	ROVLabels                   []string
	DefaultMode                 string
	LogLevel                    string
	LogFormat                   string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.StoreDriver = DriverSQLite
	c.DatabaseDSN = "fieldlog.db"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 12 * time.Hour
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "footage"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.TapePrefix = "TAPE"
	c.DefaultMode = "DIVING"
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// LoadFile builds a Config from defaults and the JSON file at path, without
// looking at command-line flags. An empty path yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path == "" {
		return cfg, nil
	}
	if err := overlayFile(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
