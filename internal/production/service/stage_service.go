package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/confecta/confecta/internal/production/entity"
	"github.com/confecta/confecta/internal/production/repository"
)

// StageService manages the stage catalog.
type StageService struct {
	repo *repository.StageRepository
}

func NewStageService(repo *repository.StageRepository) *StageService {
	return &StageService{repo: repo}
}

// CreateStageRequest creates a catalog entry.
type CreateStageRequest struct {
	Name        string `json:"name" binding:"required"`
	SeqOrder    *int   `json:"seq_order"`
	Description string `json:"description"`
}

// UpdateStageRequest edits a catalog entry.
type UpdateStageRequest struct {
	Name        *string `json:"name"`
	SeqOrder    *int    `json:"seq_order"`
	Description *string `json:"description"`
}

// List returns the catalog in sequence order.
func (s *StageService) List(ctx context.Context, ownerID string) ([]entity.StageDefinition, error) {
	return s.repo.ListOrdered(ctx, ownerID)
}

func (s *StageService) Get(ctx context.Context, ownerID, id string) (*entity.StageDefinition, error) {
	return s.repo.FindByID(ctx, ownerID, id)
}

// Create appends a stage; when no seq_order is given it goes to the end.
func (s *StageService) Create(ctx context.Context, ownerID string, req *CreateStageRequest) (*entity.StageDefinition, error) {
	seqOrder := 0
	if req.SeqOrder != nil {
		seqOrder = *req.SeqOrder
	} else {
		next, err := s.repo.NextSeqOrder(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		seqOrder = next
	}

	stage := &entity.StageDefinition{
		ID:          uuid.New().String()[:32],
		Name:        req.Name,
		SeqOrder:    seqOrder,
		Description: req.Description,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

func (s *StageService) Update(ctx context.Context, ownerID, id string, req *UpdateStageRequest) (*entity.StageDefinition, error) {
	stage, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		stage.Name = *req.Name
	}
	if req.SeqOrder != nil {
		stage.SeqOrder = *req.SeqOrder
	}
	if req.Description != nil {
		stage.Description = *req.Description
	}

	if err := s.repo.Update(ctx, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

// Delete removes the catalog entry only. In-flight progress rows keep
// their snapshot and render the stage as removed.
func (s *StageService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.repo.FindByID(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, ownerID, id)
}
