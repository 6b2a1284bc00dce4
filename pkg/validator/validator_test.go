package validator

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type linkRequest struct {
	RealURL   string `json:"real_url" validate:"required,url"`
	Brand     string `json:"brand" validate:"required,slug"`
	CreatedBy string `json:"created_by" validate:"required"`
	Source    string `json:"source,omitempty"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

func newTestValidator(t *testing.T) *Validator {
	v := New()
	require.NoError(t, v.RegisterStringRule("slug", "must be a slug", slugPattern.MatchString))
	return v
}

func TestStruct_Valid(t *testing.T) {
	v := newTestValidator(t)

	err := v.Struct(linkRequest{
		RealURL:   "https://example.com",
		Brand:     "acme-1",
		CreatedBy: "ops",
	})

	assert.NoError(t, err)
}

func TestStruct_ReportsEveryFieldByJSONName(t *testing.T) {
	v := newTestValidator(t)

	err := v.Struct(linkRequest{
		RealURL: "not a url",
		Brand:   "My Brand!",
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"real_url":   "must be a valid URL",
		"brand":      "must be a slug",
		"created_by": "is required",
	}, verr.Fields)
}

func TestValidationError_Error(t *testing.T) {
	verr := NewValidationError("name", "is required")
	verr.Add("limit", "must be between 1 and 500")

	assert.True(t, verr.HasErrors())
	assert.Equal(t, "validation failed: limit must be between 1 and 500; name is required", verr.Error())
}

func TestRegisterStringRule_RejectsEmptyTag(t *testing.T) {
	v := New()

	err := v.RegisterStringRule("", "never used", func(string) bool { return true })

	assert.Error(t, err)
}
