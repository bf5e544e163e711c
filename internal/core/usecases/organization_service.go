package usecases

import (
	"context"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/ports"
)

// OrganizationService handles employer lookups.
type OrganizationService struct {
	orgs ports.OrganizationRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgs ports.OrganizationRepository) *OrganizationService {
	return &OrganizationService{orgs: orgs}
}

// List returns all organizations.
func (s *OrganizationService) List(ctx context.Context) ([]domain.Organization, error) {
	return s.orgs.List(ctx)
}

// GetBySlug returns an organization by slug.
func (s *OrganizationService) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	return s.orgs.GetBySlug(ctx, slug)
}
