// Package registry resolves and caches destination configuration.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/feedgate/internal/cache"
	"github.com/jonesrussell/feedgate/internal/database"
	"github.com/jonesrussell/feedgate/internal/logger"
	"github.com/jonesrussell/feedgate/internal/models"
)

const (
	destinationKeyPrefix  = "destination:"
	activeDestinationsKey = "active_destinations"
)

// Registry resolves destination configuration through a read-through cache.
// Reads are cached until an explicit invalidation; Register and Update
// invalidate both the per-name key and the active-destinations aggregate key.
// The registry never queries remote systems.
type Registry struct {
	repo   *database.Repository
	cache  cache.Cache
	ttl    time.Duration
	logger logger.Logger
}

// NewRegistry creates a new destination registry. The ttl bounds how long a
// cached entry may outlive a missed invalidation; zero means entries live
// until explicitly invalidated.
func NewRegistry(repo *database.Repository, c cache.Cache, ttl time.Duration, log logger.Logger) *Registry {
	return &Registry{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: log,
	}
}

// Resolve returns the destination configuration for name, or
// models.ErrNotFound when no such destination exists.
func (r *Registry) Resolve(ctx context.Context, name string) (*models.Destination, error) {
	key := destinationKeyPrefix + name

	cached := &models.Destination{}
	err := r.cache.Get(ctx, key, cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		// A broken cache degrades to a database read, it never fails a resolve.
		r.logger.Warn("destination cache read failed",
			logger.String("destination", name),
			logger.Error(err))
	}

	dest, err := r.repo.GetDestinationByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if setErr := r.cache.Set(ctx, key, dest, r.ttl); setErr != nil {
		r.logger.Warn("destination cache write failed",
			logger.String("destination", name),
			logger.Error(setErr))
	}

	return dest, nil
}

// IsActive reports whether the named destination exists and is active.
func (r *Registry) IsActive(ctx context.Context, name string) (bool, error) {
	dest, err := r.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return dest.Active, nil
}

// ActiveDestinations returns all active destinations, cached under the
// aggregate key.
func (r *Registry) ActiveDestinations(ctx context.Context) ([]models.Destination, error) {
	cached := []models.Destination{}
	err := r.cache.Get(ctx, activeDestinationsKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		r.logger.Warn("active destinations cache read failed", logger.Error(err))
	}

	destinations, err := r.repo.ListDestinations(ctx, true)
	if err != nil {
		return nil, err
	}

	if setErr := r.cache.Set(ctx, activeDestinationsKey, destinations, r.ttl); setErr != nil {
		r.logger.Warn("active destinations cache write failed", logger.Error(setErr))
	}

	return destinations, nil
}

// Register creates a new destination and invalidates the affected cache keys.
func (r *Registry) Register(ctx context.Context, req *models.DestinationCreateRequest) (*models.Destination, error) {
	dest, err := r.repo.CreateDestination(ctx, req)
	if err != nil {
		return nil, err
	}

	if invErr := r.invalidate(ctx, dest.Name); invErr != nil {
		return nil, invErr
	}

	r.logger.Info("destination registered",
		logger.String("destination", dest.Name),
		logger.String("family", dest.Family),
		logger.Bool("active", dest.Active))

	return dest, nil
}

// Update applies a partial update to a destination and invalidates the
// affected cache keys.
func (r *Registry) Update(ctx context.Context, name string, req *models.DestinationUpdateRequest) (*models.Destination, error) {
	dest, err := r.repo.UpdateDestination(ctx, name, req)
	if err != nil {
		return nil, err
	}

	if invErr := r.invalidate(ctx, name); invErr != nil {
		return nil, invErr
	}

	return dest, nil
}

// Delete removes a destination and invalidates the affected cache keys.
func (r *Registry) Delete(ctx context.Context, name string) error {
	if err := r.repo.DeleteDestination(ctx, name); err != nil {
		return err
	}
	return r.invalidate(ctx, name)
}

func (r *Registry) invalidate(ctx context.Context, name string) error {
	err := r.cache.Invalidate(ctx, destinationKeyPrefix+name, activeDestinationsKey)
	if err != nil {
		// A write that leaves stale cache entries behind is an error the
		// caller must see; silently serving outdated config is worse.
		return fmt.Errorf("invalidate destination cache: %w", err)
	}
	return nil
}
