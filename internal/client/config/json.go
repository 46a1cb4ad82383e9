package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/timex"
)

// fileConfig is the JSON file layout. Absent keys leave the current value.
type fileConfig struct {
	Server              string         `json:"server"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	PingTimeout         timex.Duration `json:"ping_timeout"`
	AccessToken         string         `json:"access_token"`
	TokenFile           string         `json:"token_file"`
	JobPackID           string         `json:"job_pack_id"`
	StructureID         string         `json:"structure_id"`
	Mode                string         `json:"mode"`
	FootageDir          string         `json:"footage_dir"`
	LogLevel            string         `json:"log_level"`
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	setString(&c.Server, fc.Server)
	setString(&c.AccessToken, fc.AccessToken)
	setString(&c.TokenFile, fc.TokenFile)
	setString(&c.JobPackID, fc.JobPackID)
	setString(&c.StructureID, fc.StructureID)
	setString(&c.FootageDir, fc.FootageDir)
	setString(&c.LogLevel, fc.LogLevel)
	if fc.Mode != "" {
		c.Mode = models.Mode(fc.Mode)
	}
	if fc.OnlineCheckInterval.Duration > 0 {
		c.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.PingTimeout.Duration > 0 {
		c.PingTimeout = fc.PingTimeout.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
