package service

import (
	"context"
	"fmt"
	"time"

	"linktracker-dashboard/internal/domain"
	"linktracker-dashboard/internal/repository"
	"linktracker-dashboard/pkg/logger"
)

// StatsService computes the dashboard statistics.
// Event counts cover the trailing windowDays, starting at UTC midnight.
type StatsService struct {
	events     repository.EventRepository
	brands     repository.BrandRepository
	cache      StatsCache
	logger     *logger.Logger
	windowDays int
	now        func() time.Time
}

// NewStatsService creates a new stats service
func NewStatsService(events repository.EventRepository, brands repository.BrandRepository, cache StatsCache, log *logger.Logger, windowDays int) *StatsService {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &StatsService{
		events:     events,
		brands:     brands,
		cache:      cache,
		logger:     log,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// Overview returns the headline counts, from cache when possible.
// Cache failures are logged and the counts are computed from storage.
func (s *StatsService) Overview(ctx context.Context) (*domain.OverviewStats, error) {
	log := s.logger.WithContext(ctx)

	cached, err := s.cache.GetOverview(ctx)
	if err != nil {
		log.Warn("failed to read overview cache", "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	stats, err := s.computeOverview(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetOverview(ctx, stats); err != nil {
		log.Warn("failed to cache overview", "error", err)
	}
	return stats, nil
}

func (s *StatsService) computeOverview(ctx context.Context) (*domain.OverviewStats, error) {
	since := s.windowStart(s.windowDays)

	brands, err := s.brands.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count brands: %w", err)
	}

	totalLinks, err := s.brands.CountLinks(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to count links: %w", err)
	}

	activeLinks, err := s.brands.CountLinks(ctx, domain.LinkStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count active links: %w", err)
	}

	totalEvents, err := s.events.CountSince(ctx, since, "")
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	totalClicks, err := s.events.CountSince(ctx, since, domain.EventTypeClick)
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks: %w", err)
	}

	return &domain.OverviewStats{
		TotalBrands: int64(len(brands)),
		TotalLinks:  totalLinks,
		ActiveLinks: activeLinks,
		TotalEvents: totalEvents,
		TotalClicks: totalClicks,
	}, nil
}

// ClicksOverTime returns one entry per UTC day of the window, oldest first,
// ending today. Days without clicks are present with a zero count.
func (s *StatsService) ClicksOverTime(ctx context.Context) ([]domain.DailyCount, error) {
	since := s.windowStart(s.windowDays - 1)

	counts, err := s.events.CountByDay(ctx, since, domain.EventTypeClick)
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks by day: %w", err)
	}

	byDay := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDay[c.Date] = c.Count
	}

	days := make([]domain.DailyCount, 0, s.windowDays)
	for i := 0; i < s.windowDays; i++ {
		date := since.AddDate(0, 0, i).Format(time.DateOnly)
		days = append(days, domain.DailyCount{Date: date, Count: byDay[date]})
	}
	return days, nil
}

// Geo returns event counts per country, largest first.
func (s *StatsService) Geo(ctx context.Context) ([]domain.CountryCount, error) {
	counts, err := s.events.CountByCountry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count events by country: %w", err)
	}
	return counts, nil
}

// EventTypes returns event counts per type, largest first.
func (s *StatsService) EventTypes(ctx context.Context) ([]domain.EventTypeCount, error) {
	counts, err := s.events.CountByEventType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count events by type: %w", err)
	}
	return counts, nil
}

// windowStart is UTC midnight daysAgo days before today.
func (s *StatsService) windowStart(daysAgo int) time.Time {
	y, m, d := s.now().UTC().AddDate(0, 0, -daysAgo).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
