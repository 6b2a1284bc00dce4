package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"linktracker-dashboard/internal/domain"
	"linktracker-dashboard/internal/metrics"
	"linktracker-dashboard/internal/repository"
	"linktracker-dashboard/pkg/logger"
)

// BrandService lists and registers brands
type BrandService struct {
	brands repository.BrandRepository
	cache  StatsCache
	logger *logger.Logger
}

// NewBrandService creates a new brand service
func NewBrandService(brands repository.BrandRepository, cache StatsCache, log *logger.Logger) *BrandService {
	return &BrandService{
		brands: brands,
		cache:  cache,
		logger: log,
	}
}

// List returns every brand with counts over its links.
func (s *BrandService) List(ctx context.Context) ([]domain.Brand, error) {
	names, err := s.brands.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}

	brands := make([]domain.Brand, 0, len(names))
	for _, name := range names {
		links, err := s.brands.ListLinks(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to list links of brand %s: %w", name, err)
		}
		brands = append(brands, domain.SummarizeBrand(name, links))
	}
	return brands, nil
}

// Create registers an empty brand.
// Returns domain.ErrInvalidBrandName or domain.ErrBrandExists.
func (s *BrandService) Create(ctx context.Context, name string) error {
	if err := domain.ValidateBrandName(name); err != nil {
		return err
	}

	names, err := s.brands.ListBrands(ctx)
	if err != nil {
		return fmt.Errorf("failed to list brands: %w", err)
	}
	if slices.Contains(names, name) {
		return domain.ErrBrandExists
	}

	// The repository re-checks atomically; a concurrent create still ends in
	// ErrBrandExists.
	if err := s.brands.CreateBrand(ctx, domain.NewBrandPlaceholder(name)); err != nil {
		if errors.Is(err, domain.ErrBrandExists) {
			return err
		}
		return fmt.Errorf("failed to create brand %s: %w", name, err)
	}

	metrics.RecordBrandCreated()
	invalidateOverview(ctx, s.cache, s.logger)
	return nil
}

// invalidateOverview drops the cached overview after a mutation. Failing to
// do so only delays fresh counts until the TTL expires.
func invalidateOverview(ctx context.Context, cache StatsCache, log *logger.Logger) {
	if err := cache.DeleteOverview(ctx); err != nil {
		log.WithContext(ctx).Warn("failed to invalidate overview cache", "error", err)
	}
}
