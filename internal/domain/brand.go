package domain

import (
	"errors"
	"regexp"
	"time"
)

// PlaceholderUUID marks the record that registers a brand with no links yet.
// Brands only exist as partition keys of the links table, so an empty brand
// needs a row of its own.
const PlaceholderUUID = "_placeholder"

// Link statuses as written by the link-issuing API.
const (
	LinkStatusActive   = "active"
	LinkStatusInactive = "inactive"
	LinkStatusExpired  = "expired"
)

var brandNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var (
	ErrBrandExists      = errors.New("brand already exists")
	ErrInvalidBrandName = errors.New("brand name can only contain letters, numbers, hyphens, and underscores")
)

// BrandLink is one tracked link issued under a brand.
type BrandLink struct {
	Brand      string         `json:"brand"`
	UUID       string         `json:"UUID"`
	CreatedAt  time.Time      `json:"created_at"`
	CreatedBy  string         `json:"created_by"`
	RealURL    string         `json:"real_url"`
	ShortURL   string         `json:"short_url"`
	LinkStatus string         `json:"link_status"`
	CampaignID string         `json:"campaign_id,omitempty"`
	Source     string         `json:"source,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// IsPlaceholder reports whether the record only registers its brand.
func (l *BrandLink) IsPlaceholder() bool {
	return l.UUID == PlaceholderUUID
}

// NewBrandPlaceholder builds the record that registers an empty brand.
func NewBrandPlaceholder(brand string) *BrandLink {
	return &BrandLink{
		Brand:      brand,
		UUID:       PlaceholderUUID,
		CreatedAt:  time.Now().UTC(),
		CreatedBy:  "dashboard",
		LinkStatus: LinkStatusInactive,
		Metadata: map[string]any{
			"placeholder": true,
			"description": "Brand placeholder entry",
		},
	}
}

// Brand is a brand name with counts over its real (non-placeholder) links.
type Brand struct {
	Name     string `json:"name"`
	Total    int    `json:"total"`
	Active   int    `json:"active"`
	Inactive int    `json:"inactive"`
	Expired  int    `json:"expired"`
}

// SummarizeBrand counts links by status, skipping the placeholder.
func SummarizeBrand(name string, links []*BrandLink) Brand {
	b := Brand{Name: name}
	for _, link := range links {
		if link.IsPlaceholder() {
			continue
		}
		b.Total++
		switch link.LinkStatus {
		case LinkStatusActive:
			b.Active++
		case LinkStatusInactive:
			b.Inactive++
		case LinkStatusExpired:
			b.Expired++
		}
	}
	return b
}

// ValidateBrandName checks the brand naming rule.
func ValidateBrandName(name string) error {
	if !brandNamePattern.MatchString(name) {
		return ErrInvalidBrandName
	}
	return nil
}

// CreateLinkInput is what the link-issuing API needs to mint a link.
type CreateLinkInput struct {
	RealURL    string         `json:"real_url" validate:"required,url"`
	Brand      string         `json:"brand" validate:"required,brandname"`
	CreatedBy  string         `json:"created_by" validate:"required"`
	CampaignID string         `json:"campaign_id,omitempty"`
	Source     string         `json:"source,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
