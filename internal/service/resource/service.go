package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/triage-api/internal/email"
	"github.com/jwalitptl/triage-api/internal/model"
	"github.com/jwalitptl/triage-api/internal/repository"
	"github.com/jwalitptl/triage-api/internal/service/event"
	"github.com/jwalitptl/triage-api/internal/triage"
	apperrors "github.com/jwalitptl/triage-api/pkg/errors"
	"github.com/jwalitptl/triage-api/pkg/logger"
	"github.com/jwalitptl/triage-api/pkg/metrics"
)

const snapshotKey = "snapshot"

// DefaultStock is the registry a fresh deployment starts with.
var DefaultStock = []model.Resource{
	{ResourceType: "oxygen", CurrentStock: 50, CriticalLevel: 10},
	{ResourceType: "morphine", CurrentStock: 30, CriticalLevel: 5},
	{ResourceType: "blood_o_neg", CurrentStock: 20, CriticalLevel: 3},
	{ResourceType: "saline", CurrentStock: 100, CriticalLevel: 20},
	{ResourceType: "gauze", CurrentStock: 200, CriticalLevel: 50},
	{ResourceType: "antibiotics", CurrentStock: 40, CriticalLevel: 8},
}

type ResourceService interface {
	List(ctx context.Context) ([]*model.Resource, error)
	Upsert(ctx context.Context, req *model.UpsertResourceRequest) (*model.Resource, error)
	Snapshot(ctx context.Context) (triage.Snapshot, error)
	SeedDefaults(ctx context.Context) (int, error)
}

type Service struct {
	repo     repository.ResourceRepository
	events   event.Emitter
	notifier email.Service
	cache    *cache.Cache
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService builds the resource registry service. A cacheTTL of zero disables snapshot caching.
func NewService(
	repo repository.ResourceRepository,
	events event.Emitter,
	notifier email.Service,
	cacheTTL time.Duration,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	var c *cache.Cache
	if cacheTTL > 0 {
		c = cache.New(cacheTTL, 2*cacheTTL)
	}
	if notifier == nil {
		notifier = email.NopService{}
	}
	return &Service{
		repo:     repo,
		events:   events,
		notifier: notifier,
		cache:    c,
		logger:   log,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context) ([]*model.Resource, error) {
	resources, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list resources: %w", err))
	}
	return resources, nil
}

// Upsert applies a resupply event. New resources get the default critical level unless
// one is given; existing ones keep their critical level and location unless overridden.
func (s *Service) Upsert(ctx context.Context, req *model.UpsertResourceRequest) (*model.Resource, error) {
	resourceType := strings.TrimSpace(req.ResourceType)
	if resourceType == "" {
		return nil, apperrors.BadRequest("resource_type is required", nil)
	}
	if req.CurrentStock == nil || *req.CurrentStock < 0 {
		return nil, apperrors.BadRequest("current_stock must be a non-negative integer", nil)
	}
	if req.CriticalLevel != nil && *req.CriticalLevel < 0 {
		return nil, apperrors.BadRequest("critical_level must be a non-negative integer", nil)
	}

	res := &model.Resource{
		ResourceType:  resourceType,
		CriticalLevel: model.DefaultCriticalLevel,
	}
	existing, err := s.repo.GetByType(ctx, resourceType)
	switch {
	case err == nil:
		res.CriticalLevel = existing.CriticalLevel
		res.Location = existing.Location
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, apperrors.Internal(fmt.Errorf("failed to load resource: %w", err))
	}

	res.CurrentStock = *req.CurrentStock
	if req.CriticalLevel != nil {
		res.CriticalLevel = *req.CriticalLevel
	}
	if req.Location != nil {
		res.Location = req.Location
	}
	res.LastUpdated = s.now()

	if err := s.repo.Upsert(ctx, res); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to upsert resource: %w", err))
	}
	s.invalidate()

	s.logger.Info("Resource updated",
		"resource_type", res.ResourceType,
		"current_stock", res.CurrentStock,
		"critical_level", res.CriticalLevel)

	if err := s.events.Emit(ctx, model.EventResourceUpdated, res); err != nil {
		s.logger.Error(err, "Failed to emit resource event", "resource_type", res.ResourceType)
	}

	s.trackScarcity(ctx, res)
	return res, nil
}

func (s *Service) trackScarcity(ctx context.Context, res *model.Resource) {
	gauge := s.metrics.ScarceResources.WithLabelValues(res.ResourceType)
	if !res.Scarce() {
		gauge.Set(0)
		return
	}
	gauge.Set(1)

	status := "sent"
	if err := s.notifier.SendResupplyAlert(ctx, res); err != nil {
		status = "error"
		s.logger.Error(err, "Failed to send resupply alert", "resource_type", res.ResourceType)
	}
	s.metrics.ResupplyAlerts.WithLabelValues(res.ResourceType, status).Inc()
}

// Snapshot reads the whole registry once. Results are cached briefly and dropped on
// every upsert.
func (s *Service) Snapshot(ctx context.Context) (triage.Snapshot, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(snapshotKey); ok {
			return v.(triage.Snapshot), nil
		}
	}

	resources, err := s.repo.List(ctx)
	if err != nil {
		return triage.Snapshot{}, fmt.Errorf("failed to load resource snapshot: %w", err)
	}
	snap := triage.NewSnapshot(resources)

	if s.cache != nil {
		s.cache.SetDefault(snapshotKey, snap)
	}
	return snap, nil
}

// SeedDefaults installs DefaultStock into an empty registry and returns how many
// resources were created.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	now := s.now()
	for i := range DefaultStock {
		res := DefaultStock[i]
		res.LastUpdated = now
		if err := s.repo.Upsert(ctx, &res); err != nil {
			return i, fmt.Errorf("failed to seed %s: %w", res.ResourceType, err)
		}
	}
	s.invalidate()

	s.logger.Info("Seeded default resources", "count", len(DefaultStock))
	return len(DefaultStock), nil
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.Delete(snapshotKey)
	}
}
