package service

import (
	"context"

	"linktracker-dashboard/internal/domain"
)

// StatsCache caches computed dashboard statistics.
// GetOverview returns nil, nil on a miss.
type StatsCache interface {
	GetOverview(ctx context.Context) (*domain.OverviewStats, error)
	SetOverview(ctx context.Context, stats *domain.OverviewStats) error
	DeleteOverview(ctx context.Context) error
}

// LinkCreator mints new links. The link API client implements it.
type LinkCreator interface {
	CreateLink(ctx context.Context, input domain.CreateLinkInput) (*domain.BrandLink, error)
}
