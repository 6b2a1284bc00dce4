package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"linktracker-dashboard/internal/domain"
	"linktracker-dashboard/internal/metrics"
	"linktracker-dashboard/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `
	tracking_id, event_uuid, "timestamp", brand, link_uuid, event_type,
	visitor_ip, user_agent, country, city, region, payload`

// eventRepository reads the analytics_events table.
type eventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new PostgreSQL event repository
func NewEventRepository(db *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Scan(ctx context.Context, limit int) (events []*domain.AnalyticsEvent, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("events_scan", start, err) }(time.Now())

	query := `SELECT ` + eventColumns + `
		FROM analytics_events
		ORDER BY "timestamp" DESC
		LIMIT $1`

	return r.queryEvents(ctx, query, limit)
}

func (r *eventRepository) QueryByTrackingID(ctx context.Context, trackingID string) (events []*domain.AnalyticsEvent, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("events_by_tracking_id", start, err) }(time.Now())

	query := `SELECT ` + eventColumns + `
		FROM analytics_events
		WHERE tracking_id = $1
		ORDER BY "timestamp" ASC, event_uuid ASC`

	return r.queryEvents(ctx, query, trackingID)
}

func (r *eventRepository) QueryByBrand(ctx context.Context, brand string, limit int) (events []*domain.AnalyticsEvent, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("events_by_brand", start, err) }(time.Now())

	query := `SELECT ` + eventColumns + `
		FROM analytics_events
		WHERE brand = $1
		ORDER BY "timestamp" DESC
		LIMIT $2`

	return r.queryEvents(ctx, query, brand, limit)
}

func (r *eventRepository) QueryByLink(ctx context.Context, linkUUID string, limit int) (events []*domain.AnalyticsEvent, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("events_by_link", start, err) }(time.Now())

	query := `SELECT ` + eventColumns + `
		FROM analytics_events
		WHERE link_uuid = $1
		ORDER BY "timestamp" DESC
		LIMIT $2`

	return r.queryEvents(ctx, query, linkUUID, limit)
}

func (r *eventRepository) CountSince(ctx context.Context, since time.Time, eventType string) (count int64, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("events_count", start, err) }(time.Now())

	query := `
		SELECT COUNT(*)
		FROM analytics_events
		WHERE "timestamp" >= $1 AND ($2 = '' OR event_type = $2)
	`

	if err = r.db.QueryRow(ctx, query, isoTimestamp(since), eventType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (r *eventRepository) CountByDay(ctx context.Context, since time.Time, eventType string) (counts []domain.DailyCount, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("events_count_by_day", start, err) }(time.Now())

	query := `
		SELECT substr("timestamp", 1, 10) AS day, COUNT(*)
		FROM analytics_events
		WHERE "timestamp" >= $1 AND ($2 = '' OR event_type = $2)
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.db.Query(ctx, query, isoTimestamp(since), eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to count events by day: %w", err)
	}

	counts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DailyCount, error) {
		var c domain.DailyCount
		err := row.Scan(&c.Date, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily counts: %w", err)
	}
	return counts, nil
}

func (r *eventRepository) CountByCountry(ctx context.Context) (counts []domain.CountryCount, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("events_count_by_country", start, err) }(time.Now())

	query := `
		SELECT COALESCE(NULLIF(country, ''), 'unknown') AS c, COUNT(*) AS n
		FROM analytics_events
		GROUP BY c
		ORDER BY n DESC, c ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count events by country: %w", err)
	}

	counts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CountryCount, error) {
		var c domain.CountryCount
		err := row.Scan(&c.Country, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan country counts: %w", err)
	}
	return counts, nil
}

func (r *eventRepository) CountByEventType(ctx context.Context) (counts []domain.EventTypeCount, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("events_count_by_type", start, err) }(time.Now())

	query := `
		SELECT COALESCE(NULLIF(event_type, ''), 'unknown') AS t, COUNT(*) AS n
		FROM analytics_events
		GROUP BY t
		ORDER BY n DESC, t ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count events by type: %w", err)
	}

	counts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.EventTypeCount, error) {
		var c domain.EventTypeCount
		err := row.Scan(&c.Type, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan event type counts: %w", err)
	}
	return counts, nil
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.AnalyticsEvent, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.AnalyticsEvent, 0)
	for rows.Next() {
		e := &domain.AnalyticsEvent{}
		var payload []byte
		err := rows.Scan(
			&e.TrackingID,
			&e.EventUUID,
			&e.Timestamp,
			&e.Brand,
			&e.LinkUUID,
			&e.EventType,
			&e.VisitorIP,
			&e.UserAgent,
			&e.Country,
			&e.City,
			&e.Region,
			&payload,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.EventPayload); err != nil {
				return nil, fmt.Errorf("failed to decode payload of event %s: %w", e.EventUUID, err)
			}
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// isoTimestamp renders t the way the ingestion pipeline writes timestamps,
// so text comparison in SQL is chronological.
func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
