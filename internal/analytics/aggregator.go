// Package analytics turns a flat snapshot of analytics events into the
// session and visitor views shown on the dashboard.
//
// Everything here is a pure function of its input: no I/O, no shared state,
// safe to call from concurrent requests.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"linktracker-dashboard/internal/domain"
)

// GroupBy selects how events are grouped.
type GroupBy string

const (
	GroupByTrackingID GroupBy = "tracking_id"
	GroupByVisitorIP  GroupBy = "visitor_ip"
)

// ParseGroupBy maps the query parameter to a GroupBy.
// An empty value means tracking_id.
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case "", GroupByTrackingID:
		return GroupByTrackingID, nil
	case GroupByVisitorIP:
		return GroupByVisitorIP, nil
	default:
		return "", fmt.Errorf("unsupported groupBy %q", s)
	}
}

// Query describes one page of a grouping.
type Query struct {
	GroupBy GroupBy
	Limit   int
	Offset  int
}

// Result is one page of sessions or visitors. Exactly one of Sessions and
// Visitors is set, matching the query's GroupBy.
// Total counts every group in the input, not just the page.
type Result struct {
	GroupBy  GroupBy
	Sessions []*domain.EventSession
	Visitors []*domain.VisitorSession
	Total    int
}

// Aggregate groups events per q.GroupBy, sorts the groups and returns the
// requested page.
func Aggregate(events []*domain.AnalyticsEvent, q Query) Result {
	switch q.GroupBy {
	case GroupByVisitorIP:
		visitors := GroupVisitors(events)
		return Result{
			GroupBy:  GroupByVisitorIP,
			Visitors: Paginate(visitors, q.Limit, q.Offset),
			Total:    len(visitors),
		}
	default:
		sessions := GroupSessions(events)
		return Result{
			GroupBy:  GroupByTrackingID,
			Sessions: Paginate(sessions, q.Limit, q.Offset),
			Total:    len(sessions),
		}
	}
}

// GroupSessions buckets events by tracking ID. Sessions come back most
// recent first (by first event).
func GroupSessions(events []*domain.AnalyticsEvent) []*domain.EventSession {
	buckets := bucketBy(events, func(e *domain.AnalyticsEvent) string { return e.TrackingID })

	sessions := make([]*domain.EventSession, 0, len(buckets))
	for trackingID, bucket := range buckets {
		s := summarize(bucket)
		earliest := s.events[0]
		sessions = append(sessions, &domain.EventSession{
			TrackingID:      trackingID,
			Brand:           earliest.Brand,
			EventCount:      len(s.events),
			FirstEvent:      s.first,
			LastEvent:       s.last,
			DurationSeconds: s.duration.Seconds(),
			Country:         earliest.Country,
			City:            earliest.City,
			UserAgent:       earliest.UserAgent,
			VisitorIP:       earliest.VisitorIP,
			Events:          s.events,
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		ti, tj := parseTimestamp(sessions[i].FirstEvent), parseTimestamp(sessions[j].FirstEvent)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return sessions[i].TrackingID < sessions[j].TrackingID
	})
	return sessions
}

// GroupVisitors buckets events by visitor IP, dropping events without one.
// The most active visitor comes first.
func GroupVisitors(events []*domain.AnalyticsEvent) []*domain.VisitorSession {
	withIP := make([]*domain.AnalyticsEvent, 0, len(events))
	for _, e := range events {
		if e != nil && e.VisitorIP != "" {
			withIP = append(withIP, e)
		}
	}
	buckets := bucketBy(withIP, func(e *domain.AnalyticsEvent) string { return e.VisitorIP })

	visitors := make([]*domain.VisitorSession, 0, len(buckets))
	for ip, bucket := range buckets {
		s := summarize(bucket)
		earliest := s.events[0]
		visitors = append(visitors, &domain.VisitorSession{
			VisitorIP:   ip,
			TotalEvents: len(s.events),
			TrackingIDs: distinct(s.events, func(e *domain.AnalyticsEvent) string { return e.TrackingID }),
			Brands:      distinct(s.events, func(e *domain.AnalyticsEvent) string { return e.Brand }),
			FirstSeen:   s.first,
			LastSeen:    s.last,
			Country:     earliest.Country,
			City:        earliest.City,
			Region:      earliest.Region,
			Events:      s.events,
		})
	}

	sort.Slice(visitors, func(i, j int) bool {
		if visitors[i].TotalEvents != visitors[j].TotalEvents {
			return visitors[i].TotalEvents > visitors[j].TotalEvents
		}
		ti, tj := parseTimestamp(visitors[i].FirstSeen), parseTimestamp(visitors[j].FirstSeen)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return visitors[i].VisitorIP < visitors[j].VisitorIP
	})
	return visitors
}

// Paginate returns items[offset:offset+limit], clipped to the slice.
// A negative offset is out of range like any other. The result is never
// nil so it encodes as [] rather than null.
func Paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 || offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}

type summary struct {
	events   []*domain.AnalyticsEvent
	first    string
	last     string
	duration time.Duration
}

// summarize sorts a non-empty bucket in place by timestamp and reads off its
// endpoints.
func summarize(bucket []*domain.AnalyticsEvent) summary {
	sortEvents(bucket)
	first, last := bucket[0], bucket[len(bucket)-1]
	return summary{
		events:   bucket,
		first:    first.Timestamp,
		last:     last.Timestamp,
		duration: parseTimestamp(last.Timestamp).Sub(parseTimestamp(first.Timestamp)),
	}
}

// sortEvents orders events by timestamp ascending, then by event UUID so the
// order never depends on how the store returned them.
func sortEvents(events []*domain.AnalyticsEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := parseTimestamp(events[i].Timestamp), parseTimestamp(events[j].Timestamp)
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return events[i].EventUUID < events[j].EventUUID
	})
}

func bucketBy(events []*domain.AnalyticsEvent, key func(*domain.AnalyticsEvent) string) map[string][]*domain.AnalyticsEvent {
	buckets := make(map[string][]*domain.AnalyticsEvent)
	for _, e := range events {
		if e == nil {
			continue
		}
		k := key(e)
		buckets[k] = append(buckets[k], e)
	}
	return buckets
}

// distinct collects non-empty values in first-seen order.
func distinct(events []*domain.AnalyticsEvent, value func(*domain.AnalyticsEvent) string) []string {
	seen := make(map[string]struct{}, len(events))
	out := make([]string, 0, 1)
	for _, e := range events {
		v := value(e)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
