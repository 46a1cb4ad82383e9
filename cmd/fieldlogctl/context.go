package main

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/fieldlog/internal/server/config"
	"github.com/dmitrijs2005/fieldlog/internal/server/db"
)

var errMemoryStore = errors.New("the memory store driver keeps no data between runs")

type commandContext struct {
	configFlag *string
	driverFlag *string
	dsnFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, driverFlag, dsnFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		driverFlag: driverFlag,
		dsnFlag:    dsnFlag,
	}
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.LoadFile(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if v := flagValue(c.driverFlag); v != "" {
			cfg.StoreDriver = v
		}
		if v := flagValue(c.dsnFlag); v != "" {
			cfg.DatabaseDSN = v
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the configured SQL store, applies migrations and runs fn.
func (c *commandContext) withStore(ctx context.Context, fn func(*db.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if cfg.StoreDriver == config.DriverMemory {
		return errMemoryStore
	}

	s, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		return err
	}
	return fn(s)
}
