package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/transport"
)

type CategoryService struct {
	*Deps
}

func NewCategoryService(d *Deps) *CategoryService {
	return &CategoryService{Deps: d}
}

func (s *CategoryService) Create(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	taken, err := s.Repo.CategoryNameTaken(ctx, req.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflictf("Category name already exists")
	}

	c := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
		IsActive:    true,
		Metadata:    req.Metadata,
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, duplicate(err, "Category name already exists")
	}
	s.invalidate(ctx, productStatsKey)
	return c, nil
}

func (s *CategoryService) FindAll(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CategoryService) FindOne(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, lookup(err, "Category", id)
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCategoryRequest) (*models.Category, error) {
	c, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != c.Name {
		taken, err := s.Repo.CategoryNameTaken(ctx, *req.Name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, conflictf("Category name already exists")
		}
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.Slug != nil {
		c.Slug = req.Slug
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.Metadata != nil {
		c.Metadata = req.Metadata
	}

	if err := s.Repo.SaveCategory(ctx, c); err != nil {
		return nil, duplicate(err, "Category name already exists")
	}
	s.invalidate(ctx, productStatsKey)
	return c, nil
}

func (s *CategoryService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return lookup(err, "Category", id)
	}
	s.invalidate(ctx, productStatsKey)
	return nil
}
