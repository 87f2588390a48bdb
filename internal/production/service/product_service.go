package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/confecta/confecta/internal/production/entity"
	"github.com/confecta/confecta/internal/production/repository"
)

// ProductService manages product registration.
type ProductService struct {
	repo *repository.ProductRepository
}

func NewProductService(repo *repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// CreateProductRequest registers a product.
type CreateProductRequest struct {
	Description string `json:"description" binding:"required"`
	Reference   string `json:"reference"`
	ImageURL    string `json:"image_url"`
}

// UpdateProductRequest edits a product.
type UpdateProductRequest struct {
	Description *string `json:"description"`
	Reference   *string `json:"reference"`
	ImageURL    *string `json:"image_url"`
}

func (s *ProductService) List(ctx context.Context, ownerID string, page, pageSize int, search string) ([]entity.Product, int64, error) {
	return s.repo.FindAll(ctx, ownerID, page, pageSize, search)
}

func (s *ProductService) Get(ctx context.Context, ownerID, id string) (*entity.Product, error) {
	return s.repo.FindByID(ctx, ownerID, id)
}

func (s *ProductService) Create(ctx context.Context, ownerID string, req *CreateProductRequest) (*entity.Product, error) {
	code, err := s.repo.GenerateCode(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate product code: %w", err)
	}

	product := &entity.Product{
		ID:          uuid.New().String()[:32],
		Code:        code,
		Description: req.Description,
		Reference:   req.Reference,
		ImageURL:    req.ImageURL,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, ownerID, id string, req *UpdateProductRequest) (*entity.Product, error) {
	product, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Reference != nil {
		product.Reference = *req.Reference
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.repo.FindByID(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, ownerID, id)
}
