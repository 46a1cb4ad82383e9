package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/flagx"
	"github.com/dmitrijs2005/fieldlog/internal/models"
)

const (
	DefaultServer              = "127.0.0.1:50051"
	DefaultOnlineCheckInterval = 5 * time.Second
	DefaultPingTimeout         = 3 * time.Second
	DefaultLogLevel            = "warn"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the console's view of the field session: which server to talk
// to, which job pack and structure to open and how to authenticate.
type Config struct {
	Server              string
	OnlineCheckInterval time.Duration
	PingTimeout         time.Duration

	// AccessToken wins over TokenFile. With neither set the console prompts.
	AccessToken string
	TokenFile   string

	JobPackID   string
	StructureID string
	Mode        models.Mode

	// FootageDir is where downloaded footage lands; empty means the
	// working directory.
	FootageDir string
	LogLevel   string
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		Server:              DefaultServer,
		OnlineCheckInterval: DefaultOnlineCheckInterval,
		PingTimeout:         DefaultPingTimeout,
		Mode:                models.ModeDiving,
		LogLevel:            DefaultLogLevel,
	}
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// the flags in args, and validates the result.
func LoadConfig(args []string) (*Config, error) {
	cfg := Defaults()
	if path := flagx.ConfigFile(args); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings and normalizes the mode.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return fmt.Errorf("%w: server address is empty", ErrInvalidConfig)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("%w: online check interval must be positive", ErrInvalidConfig)
	}
	if c.PingTimeout <= 0 || c.PingTimeout > c.OnlineCheckInterval {
		return fmt.Errorf("%w: ping timeout must be positive and at most the check interval", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.JobPackID) == "" {
		return fmt.Errorf("%w: job pack id is required", ErrInvalidConfig)
	}

	mode, err := models.ParseMode(string(c.Mode))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.Mode = mode
	return nil
}

// Token returns the inline token or the first line of TokenFile. An empty
// token and a nil error mean none was configured.
func (c *Config) Token() (string, error) {
	if t := strings.TrimSpace(c.AccessToken); t != "" {
		return t, nil
	}
	if c.TokenFile == "" {
		return "", nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line), nil
}
