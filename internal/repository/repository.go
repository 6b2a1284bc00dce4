package repository

import (
	"context"
	"time"

	"linktracker-dashboard/internal/domain"
)

// EventRepository reads analytics events deposited by the ingestion pipeline.
// Events are never written or deleted through this interface.
type EventRepository interface {
	// Scan returns a bounded snapshot of the most recent events.
	// It is a sample, not the whole table, once the table outgrows limit.
	Scan(ctx context.Context, limit int) ([]*domain.AnalyticsEvent, error)

	// QueryByTrackingID returns one session's events in chronological order.
	QueryByTrackingID(ctx context.Context, trackingID string) ([]*domain.AnalyticsEvent, error)

	// QueryByBrand returns a brand's events, most recent first.
	QueryByBrand(ctx context.Context, brand string, limit int) ([]*domain.AnalyticsEvent, error)

	// QueryByLink returns a link's events, most recent first.
	QueryByLink(ctx context.Context, linkUUID string, limit int) ([]*domain.AnalyticsEvent, error)

	// CountSince counts events at or after since. An empty eventType counts
	// every type.
	CountSince(ctx context.Context, since time.Time, eventType string) (int64, error)

	// CountByDay counts events per UTC day at or after since.
	CountByDay(ctx context.Context, since time.Time, eventType string) ([]domain.DailyCount, error)

	// CountByCountry counts events per country, largest first.
	CountByCountry(ctx context.Context) ([]domain.CountryCount, error)

	// CountByEventType counts events per type, largest first.
	CountByEventType(ctx context.Context) ([]domain.EventTypeCount, error)
}

// BrandRepository manages brands and the links issued under them.
// A brand exists as soon as it has at least one record, placeholder or not.
type BrandRepository interface {
	// ListBrands returns every distinct brand name.
	ListBrands(ctx context.Context) ([]string, error)

	// ListLinks returns every record of a brand, placeholder included.
	ListLinks(ctx context.Context, brand string) ([]*domain.BrandLink, error)

	// GetLink returns one link or domain.ErrLinkNotFound.
	GetLink(ctx context.Context, brand, uuid string) (*domain.BrandLink, error)

	// DeleteLink removes one link or returns domain.ErrLinkNotFound.
	DeleteLink(ctx context.Context, brand, uuid string) error

	// CreateBrand registers an empty brand with a placeholder record.
	// Returns domain.ErrBrandExists if the brand already has any record.
	CreateBrand(ctx context.Context, placeholder *domain.BrandLink) error

	// CountLinks counts real links. An empty status counts every status.
	CountLinks(ctx context.Context, status string) (int64, error)
}
