package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/confecta/confecta/internal/production/service"
)

// StageHandler exposes the shared stage catalog.
type StageHandler struct {
	svc *service.StageService
}

func NewStageHandler(svc *service.StageService) *StageHandler {
	return &StageHandler{svc: svc}
}

// List GET /api/v1/stages
func (h *StageHandler) List(c *gin.Context) {
	stages, err := h.svc.List(c.Request.Context(), GetOwnerID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": stages})
}

// Get GET /api/v1/stages/:id
func (h *StageHandler) Get(c *gin.Context) {
	stage, err := h.svc.Get(c.Request.Context(), GetOwnerID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, stage)
}

// Create POST /api/v1/stages
func (h *StageHandler) Create(c *gin.Context) {
	var req service.CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	stage, err := h.svc.Create(c.Request.Context(), GetOwnerID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, stage)
}

// Update PUT /api/v1/stages/:id
func (h *StageHandler) Update(c *gin.Context) {
	var req service.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	stage, err := h.svc.Update(c.Request.Context(), GetOwnerID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, stage)
}

// Delete DELETE /api/v1/stages/:id
func (h *StageHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetOwnerID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "stage deleted"})
}
