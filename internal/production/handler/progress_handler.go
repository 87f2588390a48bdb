package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/confecta/confecta/internal/production/entity"
	"github.com/confecta/confecta/internal/production/service"
)

// ProgressHandler exposes the per-order stage tracker.
type ProgressHandler struct {
	svc      *service.ProgressService
	orderSvc *service.OrderService
}

func NewProgressHandler(svc *service.ProgressService, orderSvc *service.OrderService) *ProgressHandler {
	return &ProgressHandler{svc: svc, orderSvc: orderSvc}
}

// progressView wraps the raw record with its derived fields so clients
// never recompute them.
type progressView struct {
	*entity.ProductionProgress
	CurrentStage    *entity.StageProgress `json:"current_stage"`
	NextStage       *entity.StageProgress `json:"next_stage"`
	IsPaused        bool                  `json:"is_paused"`
	AllFinished     bool                  `json:"all_finished"`
	PercentComplete int                   `json:"percent_complete"`
}

func (h *ProgressHandler) view(c *gin.Context, ownerID string, p *entity.ProductionProgress) (*progressView, error) {
	order, err := h.orderSvc.Get(c.Request.Context(), ownerID, p.OrderID)
	if err != nil {
		return nil, err
	}
	return &progressView{
		ProductionProgress: p,
		CurrentStage:       service.CurrentStage(p),
		NextStage:          service.NextStage(p),
		IsPaused:           service.IsPaused(p),
		AllFinished:        service.AllFinished(p),
		PercentComplete:    service.PercentComplete(p, order.TotalPieces()),
	}, nil
}

// Initialize POST /api/v1/orders/:id/progress
func (h *ProgressHandler) Initialize(c *gin.Context) {
	ownerID := GetOwnerID(c)
	progress, err := h.svc.Initialize(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	v, err := h.view(c, ownerID, progress)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, v)
}

// GetByOrder GET /api/v1/orders/:id/progress
func (h *ProgressHandler) GetByOrder(c *gin.Context) {
	ownerID := GetOwnerID(c)
	progress, err := h.svc.GetByOrder(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	v, err := h.view(c, ownerID, progress)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, v)
}

// FinalizeStage PUT /api/v1/progress/:id/stages/:stageId/finalize
func (h *ProgressHandler) FinalizeStage(c *gin.Context) {
	var req service.FinalizeStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	stage, err := h.svc.FinalizeStage(c.Request.Context(), GetOwnerID(c), c.Param("id"), c.Param("stageId"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, stage)
}

// PauseStage PUT /api/v1/progress/:id/stages/:stageId/pause
func (h *ProgressHandler) PauseStage(c *gin.Context) {
	stage, err := h.svc.PauseStage(c.Request.Context(), GetOwnerID(c), c.Param("id"), c.Param("stageId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, stage)
}

// ResumeStage PUT /api/v1/progress/:id/stages/:stageId/resume
func (h *ProgressHandler) ResumeStage(c *gin.Context) {
	stage, err := h.svc.ResumeStage(c.Request.Context(), GetOwnerID(c), c.Param("id"), c.Param("stageId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, stage)
}
