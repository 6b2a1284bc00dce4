package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linktracker-dashboard/internal/domain"
	"linktracker-dashboard/internal/metrics"
	"linktracker-dashboard/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const linkColumns = `
	brand, uuid, created_at, created_by, real_url, short_url,
	link_status, campaign_id, source, metadata`

// brandRepository is the PostgreSQL implementation of repository.BrandRepository.
// Links are keyed by (brand, uuid); a brand is any distinct brand value.
type brandRepository struct {
	db *pgxpool.Pool
}

// NewBrandRepository creates a new PostgreSQL brand repository
func NewBrandRepository(db *pgxpool.Pool) repository.BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) ListBrands(ctx context.Context) (brands []string, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("brands_list", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, `SELECT DISTINCT brand FROM brand_links ORDER BY brand`)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}

	brands, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan brands: %w", err)
	}
	return brands, nil
}

func (r *brandRepository) ListLinks(ctx context.Context, brand string) (links []*domain.BrandLink, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("links_by_brand", start, err) }(time.Now())

	query := `SELECT ` + linkColumns + `
		FROM brand_links
		WHERE brand = $1
		ORDER BY created_at DESC, uuid ASC`

	rows, err := r.db.Query(ctx, query, brand)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	links, err = pgx.CollectRows(rows, scanLink)
	if err != nil {
		return nil, fmt.Errorf("failed to scan links: %w", err)
	}
	return links, nil
}

func (r *brandRepository) GetLink(ctx context.Context, brand, uuid string) (link *domain.BrandLink, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("link_get", start, err) }(time.Now())

	query := `SELECT ` + linkColumns + `
		FROM brand_links
		WHERE brand = $1 AND uuid = $2`

	rows, err := r.db.Query(ctx, query, brand, uuid)
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	link, err = pgx.CollectExactlyOneRow(rows, scanLink)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return link, nil
}

func (r *brandRepository) DeleteLink(ctx context.Context, brand, uuid string) (err error) {
	defer func(start time.Time) { metrics.ObserveQuery("link_delete", start, err) }(time.Now())

	result, err := r.db.Exec(ctx, `DELETE FROM brand_links WHERE brand = $1 AND uuid = $2`, brand, uuid)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

// CreateBrand inserts the placeholder only when no record of the brand
// exists. The check and the insert are one statement so two concurrent
// creations of the same brand cannot both succeed.
func (r *brandRepository) CreateBrand(ctx context.Context, placeholder *domain.BrandLink) (err error) {
	defer func(start time.Time) { metrics.ObserveQuery("brand_create", start, err) }(time.Now())

	query := `
		INSERT INTO brand_links (` + linkColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		WHERE NOT EXISTS (SELECT 1 FROM brand_links WHERE brand = $1)
		ON CONFLICT (brand, uuid) DO NOTHING
	`

	result, err := r.db.Exec(
		ctx,
		query,
		placeholder.Brand,
		placeholder.UUID,
		placeholder.CreatedAt,
		placeholder.CreatedBy,
		placeholder.RealURL,
		placeholder.ShortURL,
		placeholder.LinkStatus,
		placeholder.CampaignID,
		placeholder.Source,
		placeholder.Metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrBrandExists
	}
	return nil
}

func (r *brandRepository) CountLinks(ctx context.Context, status string) (count int64, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("links_count", start, err) }(time.Now())

	query := `
		SELECT COUNT(*)
		FROM brand_links
		WHERE uuid <> $1 AND ($2 = '' OR link_status = $2)
	`

	if err = r.db.QueryRow(ctx, query, domain.PlaceholderUUID, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}

func scanLink(row pgx.CollectableRow) (*domain.BrandLink, error) {
	link := &domain.BrandLink{}
	err := row.Scan(
		&link.Brand,
		&link.UUID,
		&link.CreatedAt,
		&link.CreatedBy,
		&link.RealURL,
		&link.ShortURL,
		&link.LinkStatus,
		&link.CampaignID,
		&link.Source,
		&link.Metadata, // pgx decodes JSONB into map[string]any, NULL -> nil
	)
	return link, err
}
