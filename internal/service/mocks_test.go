package service

import (
	"context"
	"time"

	"linktracker-dashboard/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) events(args mock.Arguments) ([]*domain.AnalyticsEvent, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AnalyticsEvent), args.Error(1)
}

func (m *MockEventRepository) Scan(ctx context.Context, limit int) ([]*domain.AnalyticsEvent, error) {
	return m.events(m.Called(ctx, limit))
}

func (m *MockEventRepository) QueryByTrackingID(ctx context.Context, trackingID string) ([]*domain.AnalyticsEvent, error) {
	return m.events(m.Called(ctx, trackingID))
}

func (m *MockEventRepository) QueryByBrand(ctx context.Context, brand string, limit int) ([]*domain.AnalyticsEvent, error) {
	return m.events(m.Called(ctx, brand, limit))
}

func (m *MockEventRepository) QueryByLink(ctx context.Context, linkUUID string, limit int) ([]*domain.AnalyticsEvent, error) {
	return m.events(m.Called(ctx, linkUUID, limit))
}

func (m *MockEventRepository) CountSince(ctx context.Context, since time.Time, eventType string) (int64, error) {
	args := m.Called(ctx, since, eventType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventRepository) CountByDay(ctx context.Context, since time.Time, eventType string) ([]domain.DailyCount, error) {
	args := m.Called(ctx, since, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyCount), args.Error(1)
}

func (m *MockEventRepository) CountByCountry(ctx context.Context) ([]domain.CountryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CountryCount), args.Error(1)
}

func (m *MockEventRepository) CountByEventType(ctx context.Context) ([]domain.EventTypeCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EventTypeCount), args.Error(1)
}

// MockBrandRepository is a mock implementation of BrandRepository
type MockBrandRepository struct {
	mock.Mock
}

func (m *MockBrandRepository) ListBrands(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBrandRepository) ListLinks(ctx context.Context, brand string) ([]*domain.BrandLink, error) {
	args := m.Called(ctx, brand)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BrandLink), args.Error(1)
}

func (m *MockBrandRepository) GetLink(ctx context.Context, brand, uuid string) (*domain.BrandLink, error) {
	args := m.Called(ctx, brand, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BrandLink), args.Error(1)
}

func (m *MockBrandRepository) DeleteLink(ctx context.Context, brand, uuid string) error {
	return m.Called(ctx, brand, uuid).Error(0)
}

func (m *MockBrandRepository) CreateBrand(ctx context.Context, placeholder *domain.BrandLink) error {
	return m.Called(ctx, placeholder).Error(0)
}

func (m *MockBrandRepository) CountLinks(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockCache is a mock implementation of StatsCache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetOverview(ctx context.Context) (*domain.OverviewStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OverviewStats), args.Error(1)
}

func (m *MockCache) SetOverview(ctx context.Context, stats *domain.OverviewStats) error {
	return m.Called(ctx, stats).Error(0)
}

func (m *MockCache) DeleteOverview(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockLinkCreator is a mock implementation of LinkCreator
type MockLinkCreator struct {
	mock.Mock
}

func (m *MockLinkCreator) CreateLink(ctx context.Context, input domain.CreateLinkInput) (*domain.BrandLink, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BrandLink), args.Error(1)
}
