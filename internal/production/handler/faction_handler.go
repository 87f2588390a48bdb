package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/confecta/confecta/internal/production/service"
)

// FactionHandler exposes the facção (outsourced workshop) registry.
type FactionHandler struct {
	svc *service.FactionService
}

func NewFactionHandler(svc *service.FactionService) *FactionHandler {
	return &FactionHandler{svc: svc}
}

// List GET /api/v1/factions?status=active
func (h *FactionHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	factions, total, err := h.svc.List(c.Request.Context(), GetOwnerID(c), page, pageSize, c.Query("status"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: factions,
		Pagination: &Pagination{
			Page: page, PageSize: pageSize,
			Total: int(total), TotalPages: totalPages(total, pageSize),
		},
	})
}

// Get GET /api/v1/factions/:id
func (h *FactionHandler) Get(c *gin.Context) {
	faction, err := h.svc.Get(c.Request.Context(), GetOwnerID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, faction)
}

// Create POST /api/v1/factions
func (h *FactionHandler) Create(c *gin.Context) {
	var req service.CreateFactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	faction, err := h.svc.Create(c.Request.Context(), GetOwnerID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, faction)
}

// Update PUT /api/v1/factions/:id
func (h *FactionHandler) Update(c *gin.Context) {
	var req service.UpdateFactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	faction, err := h.svc.Update(c.Request.Context(), GetOwnerID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, faction)
}

// Delete DELETE /api/v1/factions/:id
func (h *FactionHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetOwnerID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "faction deleted"})
}
