package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"linktracker-dashboard/internal/domain"
	"linktracker-dashboard/internal/linkapi"
	"linktracker-dashboard/internal/metrics"
	"linktracker-dashboard/internal/repository"
	"linktracker-dashboard/pkg/logger"
)

// LinkService lists, creates and deletes tracked links.
// Creation goes through the external link API; reads and deletes go to the
// brand repository directly.
type LinkService struct {
	brands  repository.BrandRepository
	creator LinkCreator
	cache   StatsCache
	logger  *logger.Logger
}

// NewLinkService creates a new link service
func NewLinkService(brands repository.BrandRepository, creator LinkCreator, cache StatsCache, log *logger.Logger) *LinkService {
	return &LinkService{
		brands:  brands,
		creator: creator,
		cache:   cache,
		logger:  log,
	}
}

// List returns real links, newest first. An empty brand lists every brand.
func (s *LinkService) List(ctx context.Context, brand string) ([]*domain.BrandLink, error) {
	brands := []string{brand}
	if brand == "" {
		var err error
		brands, err = s.brands.ListBrands(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list brands: %w", err)
		}
	}

	links := make([]*domain.BrandLink, 0)
	for _, b := range brands {
		brandLinks, err := s.brands.ListLinks(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("failed to list links of brand %s: %w", b, err)
		}
		for _, link := range brandLinks {
			if !link.IsPlaceholder() {
				links = append(links, link)
			}
		}
	}

	sort.SliceStable(links, func(i, j int) bool {
		if !links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].CreatedAt.After(links[j].CreatedAt)
		}
		if links[i].Brand != links[j].Brand {
			return links[i].Brand < links[j].Brand
		}
		return links[i].UUID < links[j].UUID
	})
	return links, nil
}

// Create mints a link through the link API. Link API errors are returned
// unwrapped so callers can tell them apart.
func (s *LinkService) Create(ctx context.Context, input domain.CreateLinkInput) (*domain.BrandLink, error) {
	link, err := s.creator.CreateLink(ctx, input)
	if err != nil {
		metrics.RecordLinkAPIError(linkAPIErrorKind(err))
		return nil, err
	}

	metrics.RecordLinkCreated()
	invalidateOverview(ctx, s.cache, s.logger)
	return link, nil
}

// Get returns one link. The brand placeholder is not a link.
func (s *LinkService) Get(ctx context.Context, brand, uuid string) (*domain.BrandLink, error) {
	if uuid == domain.PlaceholderUUID {
		return nil, domain.ErrLinkNotFound
	}

	link, err := s.brands.GetLink(ctx, brand, uuid)
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get link %s/%s: %w", brand, uuid, err)
	}
	return link, nil
}

// Delete removes one link. The brand placeholder cannot be deleted this way.
func (s *LinkService) Delete(ctx context.Context, brand, uuid string) error {
	if uuid == domain.PlaceholderUUID {
		return domain.ErrLinkNotFound
	}

	if err := s.brands.DeleteLink(ctx, brand, uuid); err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete link %s/%s: %w", brand, uuid, err)
	}

	invalidateOverview(ctx, s.cache, s.logger)
	return nil
}

func linkAPIErrorKind(err error) string {
	var (
		rateLimitErr *linkapi.RateLimitError
		upstreamErr  *linkapi.UpstreamError
	)
	switch {
	case errors.Is(err, linkapi.ErrUnauthorized):
		return "auth"
	case errors.As(err, &rateLimitErr):
		return "rate_limit"
	case errors.As(err, &upstreamErr):
		return "upstream"
	default:
		return "transport"
	}
}
