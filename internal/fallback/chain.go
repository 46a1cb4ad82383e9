// Package fallback runs an ordered list of strategies and returns the
// result of the first one that produces a value. It backs the degrading
// tiers of deployment discovery and tape listing.
package fallback

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fieldlog/internal/logging"
)

// Strategy is one tier. ok=false means "no data here, try the next tier";
// an error stops the chain.
type Strategy[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, bool, error)
}

// Chain is an ordered list of tiers.
type Chain[T any] struct {
	strategies []Strategy[T]
	logger     logging.Logger
}

// New builds a chain. A nil logger discards tier errors.
func New[T any](logger logging.Logger, strategies ...Strategy[T]) *Chain[T] {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Chain[T]{strategies: strategies, logger: logger}
}

// Result reports which tier produced Value. Tier is 1-based; zero means
// every tier came back empty.
type Result[T any] struct {
	Value T
	Tier  int
	Name  string
}

// Run evaluates tiers in order and stops at the first one with data. A
// failing tier or a cancelled ctx ends the run with an error.
func (c *Chain[T]) Run(ctx context.Context) (Result[T], error) {
	var res Result[T]
	for i, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		v, ok, err := s.Run(ctx)
		if err != nil {
			c.logger.Warn(ctx, "fallback tier failed", "tier", i+1, "name", s.Name, "error", err)
			return res, fmt.Errorf("tier %s: %w", s.Name, err)
		}
		if !ok {
			c.logger.Debug(ctx, "fallback tier empty", "tier", i+1, "name", s.Name)
			continue
		}

		res.Value = v
		res.Tier = i + 1
		res.Name = s.Name
		return res, nil
	}
	return res, nil
}
