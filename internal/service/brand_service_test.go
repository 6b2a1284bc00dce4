package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"linktracker-dashboard/internal/domain"
	"linktracker-dashboard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func link(brand, uuid, status string, created time.Time) *domain.BrandLink {
	return &domain.BrandLink{
		Brand:      brand,
		UUID:       uuid,
		LinkStatus: status,
		CreatedAt:  created,
	}
}

func TestBrandList_CountsRealLinks(t *testing.T) {
	ctx := context.Background()
	mockBrands := new(MockBrandRepository)
	service := NewBrandService(mockBrands, new(MockCache), logger.Discard())

	now := time.Now()
	mockBrands.On("ListBrands", ctx).Return([]string{"acme", "empty"}, nil)
	mockBrands.On("ListLinks", ctx, "acme").Return([]*domain.BrandLink{
		domain.NewBrandPlaceholder("acme"),
		link("acme", "1", domain.LinkStatusActive, now),
		link("acme", "2", domain.LinkStatusActive, now),
		link("acme", "3", domain.LinkStatusExpired, now),
	}, nil)
	mockBrands.On("ListLinks", ctx, "empty").Return([]*domain.BrandLink{
		domain.NewBrandPlaceholder("empty"),
	}, nil)

	brands, err := service.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, []domain.Brand{
		{Name: "acme", Total: 3, Active: 2, Expired: 1},
		{Name: "empty"},
	}, brands)
}

func TestBrandCreate_Success(t *testing.T) {
	ctx := context.Background()
	mockBrands := new(MockBrandRepository)
	mockCache := new(MockCache)
	service := NewBrandService(mockBrands, mockCache, logger.Discard())

	mockBrands.On("ListBrands", ctx).Return([]string{"other"}, nil)
	mockBrands.On("CreateBrand", ctx, mock.MatchedBy(func(p *domain.BrandLink) bool {
		return p.Brand == "acme-1" && p.IsPlaceholder() && p.LinkStatus == domain.LinkStatusInactive
	})).Return(nil)
	mockCache.On("DeleteOverview", ctx).Return(nil)

	err := service.Create(ctx, "acme-1")

	require.NoError(t, err)
	mockBrands.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestBrandCreate_InvalidName(t *testing.T) {
	ctx := context.Background()
	mockBrands := new(MockBrandRepository)
	service := NewBrandService(mockBrands, new(MockCache), logger.Discard())

	for _, name := range []string{"My Brand!", "", "a/b", "naïve"} {
		err := service.Create(ctx, name)
		assert.ErrorIs(t, err, domain.ErrInvalidBrandName, "name %q", name)
	}
	mockBrands.AssertNotCalled(t, "ListBrands", mock.Anything)
}

func TestBrandCreate_AlreadyListed(t *testing.T) {
	ctx := context.Background()
	mockBrands := new(MockBrandRepository)
	service := NewBrandService(mockBrands, new(MockCache), logger.Discard())

	mockBrands.On("ListBrands", ctx).Return([]string{"acme-1"}, nil)

	err := service.Create(ctx, "acme-1")

	assert.ErrorIs(t, err, domain.ErrBrandExists)
	mockBrands.AssertNotCalled(t, "CreateBrand", mock.Anything, mock.Anything)
}

func TestBrandCreate_LostRace(t *testing.T) {
	ctx := context.Background()
	mockBrands := new(MockBrandRepository)
	service := NewBrandService(mockBrands, new(MockCache), logger.Discard())

	mockBrands.On("ListBrands", ctx).Return([]string{}, nil)
	mockBrands.On("CreateBrand", ctx, mock.Anything).Return(domain.ErrBrandExists)

	err := service.Create(ctx, "acme-1")

	assert.ErrorIs(t, err, domain.ErrBrandExists)
}

func TestBrandCreate_CacheFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	mockBrands := new(MockBrandRepository)
	mockCache := new(MockCache)
	service := NewBrandService(mockBrands, mockCache, logger.Discard())

	mockBrands.On("ListBrands", ctx).Return([]string{}, nil)
	mockBrands.On("CreateBrand", ctx, mock.Anything).Return(nil)
	mockCache.On("DeleteOverview", ctx).Return(errors.New("redis down"))

	assert.NoError(t, service.Create(ctx, "acme-1"))
}
