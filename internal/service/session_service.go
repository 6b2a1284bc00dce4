package service

import (
	"context"
	"fmt"
	"time"

	"linktracker-dashboard/internal/analytics"
	"linktracker-dashboard/internal/domain"
	"linktracker-dashboard/internal/metrics"
	"linktracker-dashboard/internal/repository"
	"linktracker-dashboard/pkg/validator"
)

// SessionService serves the session and visitor views of analytics events.
//
// List works on a snapshot of at most scanLimit recent events, so Total is
// the number of groups inside that snapshot. Raise ANALYTICS_SCAN_LIMIT to
// widen it.
type SessionService struct {
	events    repository.EventRepository
	scanLimit int
}

// NewSessionService creates a new session service
func NewSessionService(events repository.EventRepository, scanLimit int) *SessionService {
	return &SessionService{
		events:    events,
		scanLimit: scanLimit,
	}
}

// List returns one page of sessions or visitors.
func (s *SessionService) List(ctx context.Context, q analytics.Query) (analytics.Result, error) {
	events, err := s.events.Scan(ctx, s.scanLimit)
	if err != nil {
		return analytics.Result{}, fmt.Errorf("failed to scan events: %w", err)
	}
	metrics.EventSnapshotSize.Observe(float64(len(events)))

	start := time.Now()
	result := analytics.Aggregate(events, q)
	metrics.SessionAggregationDuration.WithLabelValues(string(result.GroupBy)).Observe(time.Since(start).Seconds())

	return result, nil
}

// Session returns every event of one tracking ID as a session.
// Returns domain.ErrSessionNotFound when the tracking ID has no events.
func (s *SessionService) Session(ctx context.Context, trackingID string) (*domain.EventSession, error) {
	events, err := s.events.QueryByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %w", trackingID, err)
	}

	sessions := analytics.GroupSessions(events)
	if len(sessions) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return sessions[0], nil
}

// Events returns the most recent raw events of a brand or a link.
func (s *SessionService) Events(ctx context.Context, filter domain.EventFilter, limit int) ([]*domain.AnalyticsEvent, error) {
	var (
		events []*domain.AnalyticsEvent
		err    error
	)

	switch {
	case filter.Brand != "" && filter.LinkUUID != "":
		return nil, validator.NewValidationError("brand", "cannot be combined with link")
	case filter.Brand != "":
		events, err = s.events.QueryByBrand(ctx, filter.Brand, limit)
	case filter.LinkUUID != "":
		events, err = s.events.QueryByLink(ctx, filter.LinkUUID, limit)
	default:
		return nil, validator.NewValidationError("brand", "brand or link is required")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	return events, nil
}
