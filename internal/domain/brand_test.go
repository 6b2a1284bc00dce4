package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBrandName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"acme-1", true},
		{"ACME_shop", true},
		{"a", true},
		{"My Brand!", false},
		{"", false},
		{"acme.com", false},
		{"ümlaut", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBrandName(tt.name)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidBrandName)
			}
		})
	}
}

func TestSummarizeBrand(t *testing.T) {
	links := []*BrandLink{
		NewBrandPlaceholder("acme"),
		{Brand: "acme", UUID: "1", LinkStatus: LinkStatusActive},
		{Brand: "acme", UUID: "2", LinkStatus: LinkStatusInactive},
		{Brand: "acme", UUID: "3", LinkStatus: LinkStatusExpired},
		{Brand: "acme", UUID: "4", LinkStatus: LinkStatusActive},
		{Brand: "acme", UUID: "5", LinkStatus: "archived"},
	}

	got := SummarizeBrand("acme", links)

	assert.Equal(t, Brand{Name: "acme", Total: 5, Active: 2, Inactive: 1, Expired: 1}, got)
}

func TestNewBrandPlaceholder(t *testing.T) {
	p := NewBrandPlaceholder("acme")

	assert.True(t, p.IsPlaceholder())
	assert.Equal(t, "acme", p.Brand)
	assert.Equal(t, LinkStatusInactive, p.LinkStatus)
	assert.Equal(t, true, p.Metadata["placeholder"])
	assert.False(t, p.CreatedAt.IsZero())
}
