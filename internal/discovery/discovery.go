// Package discovery finds the deployments of a job pack and structure
// through three degrading tiers: the strict scope, the job pack alone, and
// placeholders synthesized from inspection history. No tier writes to the
// store.
package discovery

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/fallback"
	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/deployments"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/inspections"
	"github.com/dmitrijs2005/fieldlog/internal/timex"
)

// JobPackLimit caps the job-pack-only tier.
const JobPackLimit = 10

// Tier numbers reported in Result.
const (
	TierNone     = 0
	TierStrict   = 1
	TierJobPack  = 2
	TierInferred = 3
)

// Scope is the job pack, structure and mode being worked.
type Scope struct {
	JobPackID   string      `json:"job_pack_id"`
	StructureID string      `json:"structure_id"`
	Mode        models.Mode `json:"mode"`
}

// Result lists the deployments found and which tier produced them. Active
// is the first deployment, or nil.
type Result struct {
	Deployments []*models.Deployment
	Tier        int
	Active      *models.Deployment
}

type Discovery struct {
	deployments deployments.Repository
	inspections inspections.Repository
	logger      logging.Logger
	now         func() time.Time
}

func New(d deployments.Repository, i inspections.Repository, logger logging.Logger) *Discovery {
	return &Discovery{
		deployments: d,
		inspections: i,
		logger:      logger.With("module", "discovery"),
		now:         time.Now,
	}
}

// Discover runs the tiers in order. A tier is consulted only when every
// earlier tier came back empty; a store failure in any tier is returned.
func (d *Discovery) Discover(ctx context.Context, scope Scope) (Result, error) {
	if _, err := deployments.TableFor(scope.Mode); err != nil {
		return Result{}, err
	}

	chain := fallback.New(d.logger,
		d.tier("strict", func(ctx context.Context) ([]*models.Deployment, error) {
			return d.deployments.ListByScope(ctx, scope.Mode, scope.JobPackID, scope.StructureID, 0)
		}),
		d.tier("job pack", func(ctx context.Context) ([]*models.Deployment, error) {
			return d.deployments.ListByScope(ctx, scope.Mode, scope.JobPackID, "", JobPackLimit)
		}),
		d.tier("inspection history", func(ctx context.Context) ([]*models.Deployment, error) {
			return d.placeholders(ctx, scope)
		}),
	)

	res, err := chain.Run(ctx)
	if err != nil {
		return Result{}, err
	}
	if res.Tier == TierNone {
		return Result{}, nil
	}

	out := Result{Deployments: res.Value, Tier: res.Tier, Active: res.Value[0]}
	d.logger.Debug(ctx, "deployments discovered", "tier", res.Tier, "count", len(res.Value), "job_pack", scope.JobPackID)
	return out, nil
}

func (d *Discovery) tier(name string, fn func(context.Context) ([]*models.Deployment, error)) fallback.Strategy[[]*models.Deployment] {
	return fallback.Strategy[[]*models.Deployment]{
		Name: name,
		Run: func(ctx context.Context) ([]*models.Deployment, bool, error) {
			list, err := fn(ctx)
			if err != nil {
				return nil, false, err
			}
			return list, len(list) > 0, nil
		},
	}
}

// placeholders synthesizes one COMPLETED "Legacy Records" deployment per
// distinct deployment id referenced by the scope's inspection records,
// newest reference first.
func (d *Discovery) placeholders(ctx context.Context, scope Scope) ([]*models.Deployment, error) {
	records, err := d.inspections.ListByScope(ctx, scope.JobPackID, scope.StructureID, scope.Mode)
	if err != nil {
		return nil, err
	}

	now := d.now()
	seen := make(map[string]bool)
	var out []*models.Deployment
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.DeploymentID == "" || seen[rec.DeploymentID] {
			continue
		}
		seen[rec.DeploymentID] = true

		created, _ := timex.CombineDateTime(rec.Date, rec.Time, now)
		out = append(out, Placeholder(scope, rec.DeploymentID, created))
	}
	return out, nil
}

// Placeholder builds a read-only deployment for an id known only from
// inspection records.
func Placeholder(scope Scope, id string, createdAt time.Time) *models.Deployment {
	return &models.Deployment{
		ID:          id,
		Mode:        scope.Mode,
		Name:        common.LegacyDeploymentName,
		Status:      models.DeploymentCompleted,
		JobPackID:   scope.JobPackID,
		StructureID: scope.StructureID,
		CreatedAt:   createdAt,
		Placeholder: true,
	}
}
