package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/fieldlog/internal/flagx"
	"github.com/dmitrijs2005/fieldlog/internal/models"
)

var consoleFlags = []string{"-a", "-i", "-p", "-t", "-T", "-j", "-s", "-m", "-d", "-l"}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("fieldlog", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	mode := string(c.Mode)
	fs.StringVar(&c.Server, "a", c.Server, "server gRPC address (host:port)")
	fs.DurationVar(&c.OnlineCheckInterval, "i", c.OnlineCheckInterval, "online check interval, e.g. 5s")
	fs.DurationVar(&c.PingTimeout, "p", c.PingTimeout, "timeout of one online check")
	fs.StringVar(&c.AccessToken, "t", c.AccessToken, "operator access token")
	fs.StringVar(&c.TokenFile, "T", c.TokenFile, "file holding the operator access token")
	fs.StringVar(&c.JobPackID, "j", c.JobPackID, "job pack id")
	fs.StringVar(&c.StructureID, "s", c.StructureID, "structure id")
	fs.StringVar(&mode, "m", mode, "starting mode (DIVING or ROV)")
	fs.StringVar(&c.FootageDir, "d", c.FootageDir, "directory for downloaded footage")
	fs.StringVar(&c.LogLevel, "l", c.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(flagx.FilterArgs(args, consoleFlags)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.Mode = models.Mode(mode)
	return nil
}
