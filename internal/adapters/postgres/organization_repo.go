package postgres

import (
	"context"

	"github.com/fairwage/fairwage/internal/core/domain"
)

// OrganizationRepo implements ports.OrganizationRepository with pgx.
type OrganizationRepo struct {
	db *DB
}

// NewOrganizationRepo creates a new OrganizationRepo.
func NewOrganizationRepo(db *DB) *OrganizationRepo {
	return &OrganizationRepo{db: db}
}

// Upsert inserts or updates an organization keyed by slug.
func (r *OrganizationRepo) Upsert(ctx context.Context, o *domain.Organization) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO organizations (slug, name, website, industry, verified)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO UPDATE
		SET name = EXCLUDED.name, website = EXCLUDED.website,
		    industry = EXCLUDED.industry, verified = EXCLUDED.verified
		RETURNING id, created_at
	`, o.Slug, o.Name, o.Website, o.Industry, o.Verified).Scan(&o.ID, &o.CreatedAt)
}

// GetBySlug returns an organization by its URL slug.
func (r *OrganizationRepo) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	var o domain.Organization
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, slug, name, COALESCE(website, ''), COALESCE(industry, ''), verified, created_at
		FROM organizations WHERE slug = $1
	`, slug).Scan(&o.ID, &o.Slug, &o.Name, &o.Website, &o.Industry, &o.Verified, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID returns an organization by UUID.
func (r *OrganizationRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	var o domain.Organization
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, slug, name, COALESCE(website, ''), COALESCE(industry, ''), verified, created_at
		FROM organizations WHERE id = $1
	`, id).Scan(&o.ID, &o.Slug, &o.Name, &o.Website, &o.Industry, &o.Verified, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns all organizations ordered by name.
func (r *OrganizationRepo) List(ctx context.Context) ([]domain.Organization, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, slug, name, COALESCE(website, ''), COALESCE(industry, ''), verified, created_at
		FROM organizations
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		var o domain.Organization
		if err := rows.Scan(&o.ID, &o.Slug, &o.Name, &o.Website, &o.Industry, &o.Verified, &o.CreatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}
