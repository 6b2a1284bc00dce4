package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"linktracker-dashboard/internal/analytics"
	"linktracker-dashboard/internal/domain"
	"linktracker-dashboard/pkg/logger"
	"linktracker-dashboard/pkg/validator"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// SessionService is what the session and event endpoints need
type SessionService interface {
	List(ctx context.Context, q analytics.Query) (analytics.Result, error)
	Session(ctx context.Context, trackingID string) (*domain.EventSession, error)
	Events(ctx context.Context, filter domain.EventFilter, limit int) ([]*domain.AnalyticsEvent, error)
}

// BrandService is what the brand endpoints need
type BrandService interface {
	List(ctx context.Context) ([]domain.Brand, error)
	Create(ctx context.Context, name string) error
}

// LinkService is what the link endpoints need
type LinkService interface {
	List(ctx context.Context, brand string) ([]*domain.BrandLink, error)
	Create(ctx context.Context, input domain.CreateLinkInput) (*domain.BrandLink, error)
	Get(ctx context.Context, brand, uuid string) (*domain.BrandLink, error)
	Delete(ctx context.Context, brand, uuid string) error
}

// StatsService is what the stats endpoints need
type StatsService interface {
	Overview(ctx context.Context) (*domain.OverviewStats, error)
	ClicksOverTime(ctx context.Context) ([]domain.DailyCount, error)
	Geo(ctx context.Context) ([]domain.CountryCount, error)
	EventTypes(ctx context.Context) ([]domain.EventTypeCount, error)
}

// Options tunes request parsing and the health report.
type Options struct {
	Environment     string
	DefaultPageSize int
	MaxPageSize     int
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sessions  SessionService
	brands    BrandService
	links     LinkService
	stats     StatsService
	logger    *logger.Logger
	validator *validator.Validator
	opts      Options
	startedAt time.Time
}

// NewHandler creates a new HTTP handler
func NewHandler(sessions SessionService, brands BrandService, links LinkService, stats StatsService, log *logger.Logger, opts Options) *Handler {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 50
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = opts.DefaultPageSize
	}

	v := validator.New()
	err := v.RegisterStringRule("brandname", domain.ErrInvalidBrandName.Error(), func(s string) bool {
		return domain.ValidateBrandName(s) == nil
	})
	if err != nil {
		panic(fmt.Sprintf("register brandname rule: %v", err))
	}

	return &Handler{
		sessions:  sessions,
		brands:    brands,
		links:     links,
		stats:     stats,
		logger:    log,
		validator: v,
		opts:      opts,
		startedAt: time.Now(),
	}
}

// Register mounts every dashboard route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /sessions", h.ListSessions)
	mux.HandleFunc("GET /sessions/{trackingID}", h.GetSession)
	mux.HandleFunc("GET /events", h.ListEvents)

	mux.HandleFunc("GET /brands", h.ListBrands)
	mux.HandleFunc("POST /brands", h.CreateBrand)
	mux.HandleFunc("GET /brands/{brand}/links", h.ListBrandLinks)

	mux.HandleFunc("GET /links", h.ListLinks)
	mux.HandleFunc("POST /links", h.CreateLink)
	mux.HandleFunc("GET /links/{brand}/{uuid}", h.GetLink)
	mux.HandleFunc("DELETE /links/{brand}/{uuid}", h.DeleteLink)

	mux.HandleFunc("GET /stats/overview", h.GetOverview)
	mux.HandleFunc("GET /stats/clicks", h.GetClicksOverTime)
	mux.HandleFunc("GET /stats/geo", h.GetGeo)
	mux.HandleFunc("GET /stats/event-types", h.GetEventTypes)

	mux.HandleFunc("GET /health/live", h.HealthCheck)
}

type SessionsResponse struct {
	Sessions []*domain.EventSession `json:"sessions"`
	Total    int                    `json:"total"`
}

type VisitorsResponse struct {
	Visitors []*domain.VisitorSession `json:"visitors"`
	Total    int                      `json:"total"`
}

type CreateBrandRequest struct {
	Name string `json:"name"`
}

type CreateBrandResponse struct {
	Success bool         `json:"success"`
	Brand   domain.Brand `json:"brand"`
}

type HealthResponse struct {
	Status        string  `json:"status"`
	Time          string  `json:"time"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Environment   string  `json:"environment"`
}

// ListSessions handles GET /sessions?limit&page&groupBy
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	verr := &validator.ValidationError{}

	limit := h.parseLimit(query.Get("limit"), verr)
	page := parsePositive(query.Get("page"), "page", 1, verr)
	groupBy, err := analytics.ParseGroupBy(query.Get("groupBy"))
	if err != nil {
		verr.Add("groupBy", "must be tracking_id or visitor_ip")
	}
	if verr.HasErrors() {
		h.writeServiceError(w, r, verr)
		return
	}

	result, err := h.sessions.List(r.Context(), analytics.Query{
		GroupBy: groupBy,
		Limit:   limit,
		Offset:  pageOffset(page, limit),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if result.GroupBy == analytics.GroupByVisitorIP {
		respondJSON(w, http.StatusOK, VisitorsResponse{Visitors: result.Visitors, Total: result.Total})
		return
	}
	respondJSON(w, http.StatusOK, SessionsResponse{Sessions: result.Sessions, Total: result.Total})
}

// GetSession handles GET /sessions/{trackingID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Session(r.Context(), r.PathValue("trackingID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// ListEvents handles GET /events?brand=|link=&limit
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	verr := &validator.ValidationError{}

	limit := h.parseLimit(query.Get("limit"), verr)
	if verr.HasErrors() {
		h.writeServiceError(w, r, verr)
		return
	}

	events, err := h.sessions.Events(r.Context(), domain.EventFilter{
		Brand:    query.Get("brand"),
		LinkUUID: query.Get("link"),
	}, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// ListBrands handles GET /brands
func (h *Handler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, brands)
}

// CreateBrand handles POST /brands
func (h *Handler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req CreateBrandRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if req.Name == "" {
		h.writeServiceError(w, r, validator.NewValidationError("name", "is required"))
		return
	}

	if err := h.brands.Create(r.Context(), req.Name); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.WithContext(r.Context()).Info("brand created", "brand", req.Name)
	respondJSON(w, http.StatusCreated, CreateBrandResponse{
		Success: true,
		Brand:   domain.Brand{Name: req.Name},
	})
}

// ListBrandLinks handles GET /brands/{brand}/links
func (h *Handler) ListBrandLinks(w http.ResponseWriter, r *http.Request) {
	h.listLinks(w, r, r.PathValue("brand"))
}

// ListLinks handles GET /links?brand=
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	h.listLinks(w, r, r.URL.Query().Get("brand"))
}

func (h *Handler) listLinks(w http.ResponseWriter, r *http.Request, brand string) {
	links, err := h.links.List(r.Context(), brand)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, links)
}

// CreateLink handles POST /links
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateLinkInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.validator.Struct(input); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	link, err := h.links.Create(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.linkLogger(r, link.Brand, link.UUID).Info("link created")
	respondJSON(w, http.StatusCreated, link)
}

// DeleteLink handles DELETE /links/{brand}/{uuid}
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	brand, uuid := r.PathValue("brand"), r.PathValue("uuid")
	if err := h.links.Delete(r.Context(), brand, uuid); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.linkLogger(r, brand, uuid).Info("link deleted")
	w.WriteHeader(http.StatusNoContent)
}

// GetLink handles GET /links/{brand}/{uuid}
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.Get(r.Context(), r.PathValue("brand"), r.PathValue("uuid"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, link)
}

func (h *Handler) linkLogger(r *http.Request, brand, uuid string) *logger.Logger {
	return h.logger.WithContext(r.Context()).WithFields(map[string]any{
		"brand": brand,
		"uuid":  uuid,
	})
}

// GetOverview handles GET /stats/overview
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Overview(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetClicksOverTime handles GET /stats/clicks
func (h *Handler) GetClicksOverTime(w http.ResponseWriter, r *http.Request) {
	days, err := h.stats.ClicksOverTime(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, days)
}

// GetGeo handles GET /stats/geo
func (h *Handler) GetGeo(w http.ResponseWriter, r *http.Request) {
	countries, err := h.stats.Geo(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, countries)
}

// GetEventTypes handles GET /stats/event-types
func (h *Handler) GetEventTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.stats.EventTypes(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, types)
}

// HealthCheck handles GET /health/live
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Time:          time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		Environment:   h.opts.Environment,
	})
}

// parseLimit reads a page size. Missing means the default.
func (h *Handler) parseLimit(raw string, verr *validator.ValidationError) int {
	limit := parsePositive(raw, "limit", h.opts.DefaultPageSize, verr)
	if limit > h.opts.MaxPageSize {
		verr.Add("limit", "must be between 1 and "+strconv.Itoa(h.opts.MaxPageSize))
	}
	return limit
}

func parsePositive(raw, field string, def int, verr *validator.ValidationError) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		verr.Add(field, "must be a positive integer")
		return def
	}
	return n
}

// pageOffset converts a 1-based page to an offset, saturating at math.MaxInt
// so a page past the end stays past the end.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// decodeJSON reads one JSON object from the body. Failures come back as a
// *validator.ValidationError on the "body" field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return validator.NewValidationError("body", "is too large")
		case errors.Is(err, io.EOF):
			return validator.NewValidationError("body", "is required")
		default:
			return validator.NewValidationError("body", "must be valid JSON")
		}
	}
	return nil
}
