package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/confecta/confecta/internal/production/entity"
	"github.com/confecta/confecta/internal/production/repository"
)

// FactionService manages the facção registry.
type FactionService struct {
	repo *repository.FactionRepository
}

func NewFactionService(repo *repository.FactionRepository) *FactionService {
	return &FactionService{repo: repo}
}

// CreateFactionRequest registers a facção.
type CreateFactionRequest struct {
	Name       string       `json:"name" binding:"required"`
	Contact    string       `json:"contact"`
	Phone      string       `json:"phone"`
	City       string       `json:"city"`
	StageCosts entity.JSONB `json:"stage_costs"`
	Notes      string       `json:"notes"`
}

// UpdateFactionRequest edits a facção.
type UpdateFactionRequest struct {
	Name       *string      `json:"name"`
	Contact    *string      `json:"contact"`
	Phone      *string      `json:"phone"`
	City       *string      `json:"city"`
	Status     *string      `json:"status"`
	StageCosts entity.JSONB `json:"stage_costs"`
	Notes      *string      `json:"notes"`
}

func (s *FactionService) List(ctx context.Context, ownerID string, page, pageSize int, status string) ([]entity.Faction, int64, error) {
	return s.repo.FindAll(ctx, ownerID, page, pageSize, status)
}

func (s *FactionService) Get(ctx context.Context, ownerID, id string) (*entity.Faction, error) {
	return s.repo.FindByID(ctx, ownerID, id)
}

func (s *FactionService) Create(ctx context.Context, ownerID string, req *CreateFactionRequest) (*entity.Faction, error) {
	faction := &entity.Faction{
		ID:         uuid.New().String()[:32],
		Name:       req.Name,
		Contact:    req.Contact,
		Phone:      req.Phone,
		City:       req.City,
		Status:     "active",
		StageCosts: req.StageCosts,
		Notes:      req.Notes,
		OwnerID:    ownerID,
	}
	if err := s.repo.Create(ctx, faction); err != nil {
		return nil, err
	}
	return faction, nil
}

func (s *FactionService) Update(ctx context.Context, ownerID, id string, req *UpdateFactionRequest) (*entity.Faction, error) {
	faction, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		faction.Name = *req.Name
	}
	if req.Contact != nil {
		faction.Contact = *req.Contact
	}
	if req.Phone != nil {
		faction.Phone = *req.Phone
	}
	if req.City != nil {
		faction.City = *req.City
	}
	if req.Status != nil {
		faction.Status = *req.Status
	}
	if req.StageCosts != nil {
		faction.StageCosts = req.StageCosts
	}
	if req.Notes != nil {
		faction.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, faction); err != nil {
		return nil, err
	}
	return faction, nil
}

func (s *FactionService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.repo.FindByID(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, ownerID, id)
}
