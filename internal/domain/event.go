package domain

import "errors"

// AnalyticsEvent is one recorded user action, written by the ingestion
// pipeline and never modified here.
// Timestamp stays an ISO-8601 string because that is how the pipeline stores
// it; parsing (and tolerating garbage) is the aggregator's job.
type AnalyticsEvent struct {
	TrackingID string `json:"tracking_id"`
	EventUUID  string `json:"event_uuid"`
	Timestamp  string `json:"timestamp"`
	Brand      string `json:"brand"`
	LinkUUID   string `json:"link_uuid,omitempty"`
	EventType  string `json:"event_type"`

	// Visitor information
	VisitorIP string `json:"visitor_ip"`
	UserAgent string `json:"user_agent"`

	// Geolocation
	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"region"`

	// Everything else the pipeline records is event-type specific.
	// It is stored as a single JSON document and flattened back into the
	// event on the wire.
	EventPayload
}

// EventPayload holds optional, event-type specific fields.
type EventPayload struct {
	Timezone   string   `json:"timezone,omitempty"`
	PostalCode string   `json:"postal_code,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`

	ASN             string `json:"asn,omitempty"`
	ASNOrganization string `json:"asn_organization,omitempty"`
	EdgeLocation    string `json:"edge_location,omitempty"`
	ThreatScore     *int   `json:"threat_score,omitempty"`
	HTTPProtocol    string `json:"http_protocol,omitempty"`

	URL       string `json:"url,omitempty"`
	PageURL   string `json:"page_url,omitempty"`
	PagePath  string `json:"page_path,omitempty"`
	PageTitle string `json:"page_title,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	Language  string `json:"language,omitempty"`

	ScreenResolution string `json:"screen_resolution,omitempty"`
	ViewportSize     string `json:"viewport_size,omitempty"`

	TimeOnPageSeconds *float64 `json:"time_on_page_seconds,omitempty"`
	MaxScrollDepth    *float64 `json:"max_scroll_depth,omitempty"`
	VisibilityState   string   `json:"visibility_state,omitempty"`

	// Click tracking
	ClickX          string `json:"click_x,omitempty"`
	ClickY          string `json:"click_y,omitempty"`
	ElementSelector string `json:"element_selector,omitempty"`
	ElementTag      string `json:"element_tag,omitempty"`
	ElementText     string `json:"element_text,omitempty"`
	LinkHref        string `json:"link_href,omitempty"`
	LinkText        string `json:"link_text,omitempty"`
	IsExternal      string `json:"is_external,omitempty"`

	// Scroll tracking
	DepthPercent   string `json:"depth_percent,omitempty"`
	ScrollPixels   string `json:"scroll_pixels,omitempty"`
	DocumentHeight string `json:"document_height,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// EventTypeClick is the event_type the ingestion pipeline uses for link clicks.
const EventTypeClick = "click"

// EventSession is every event sharing one tracking ID.
// It is derived per request and never stored.
type EventSession struct {
	TrackingID      string            `json:"tracking_id"`
	Brand           string            `json:"brand"`
	EventCount      int               `json:"event_count"`
	FirstEvent      string            `json:"first_event"`
	LastEvent       string            `json:"last_event"`
	DurationSeconds float64           `json:"duration_seconds"`
	Country         string            `json:"country"`
	City            string            `json:"city"`
	UserAgent       string            `json:"user_agent"`
	VisitorIP       string            `json:"visitor_ip,omitempty"`
	Events          []*AnalyticsEvent `json:"events"`
}

// VisitorSession is every event sharing one non-empty visitor IP.
type VisitorSession struct {
	VisitorIP   string            `json:"visitor_ip"`
	TotalEvents int               `json:"total_events"`
	TrackingIDs []string          `json:"tracking_ids"`
	Brands      []string          `json:"brands"`
	FirstSeen   string            `json:"first_seen"`
	LastSeen    string            `json:"last_seen"`
	Country     string            `json:"country"`
	City        string            `json:"city"`
	Region      string            `json:"region"`
	Events      []*AnalyticsEvent `json:"events"`
}

// EventFilter selects raw events by brand or by link. Exactly one is set.
type EventFilter struct {
	Brand    string
	LinkUUID string
}

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLinkNotFound    = errors.New("link not found")
)
