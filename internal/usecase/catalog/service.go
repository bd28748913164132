package catalog

import (
	"context"

	dom "example.com/glowshop/internal/domain/product"
)

type Service struct {
	repo dom.Repository
}

func NewService(repo dom.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	existed, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if p.Name != "" {
		existed.Name = p.Name
	}
	if p.Slug != "" {
		existed.Slug = p.Slug
	}
	if p.Description != "" {
		existed.Description = p.Description
	}
	if p.PriceCents > 0 {
		existed.PriceCents = p.PriceCents
	}
	if p.Image != "" {
		existed.Image = p.Image
	}
	if p.Category != "" {
		existed.Category = p.Category
	}
	existed.IsActive = p.IsActive

	return s.repo.Update(ctx, existed)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (*dom.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*dom.Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error) {
	if !filter.Sort.IsValid() {
		filter.Sort = dom.SortNewest
	}
	return s.repo.List(ctx, filter)
}
