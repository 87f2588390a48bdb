package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/confecta/confecta/internal/finance/service"
)

// PendencyHandler exposes the facção payment ledger.
type PendencyHandler struct {
	svc *service.PendencyService
}

func NewPendencyHandler(svc *service.PendencyService) *PendencyHandler {
	return &PendencyHandler{svc: svc}
}

// List GET /api/v1/pendencies?status=&faction_id=&order_id=
func (h *PendencyHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":     c.Query("status"),
		"faction_id": c.Query("faction_id"),
		"order_id":   c.Query("order_id"),
	}
	pendencies, total, err := h.svc.List(c.Request.Context(), GetOwnerID(c), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: pendencies,
		Pagination: &Pagination{
			Page: page, PageSize: pageSize,
			Total: int(total), TotalPages: totalPages(total, pageSize),
		},
	})
}

// Get GET /api/v1/pendencies/:id
func (h *PendencyHandler) Get(c *gin.Context) {
	pendency, err := h.svc.Get(c.Request.Context(), GetOwnerID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pendency)
}

// Delete DELETE /api/v1/pendencies/:id
func (h *PendencyHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetOwnerID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "pendency deleted"})
}

// MarkAsPaid POST /api/v1/pendencies/:id/pay
func (h *PendencyHandler) MarkAsPaid(c *gin.Context) {
	var req service.MarkAsPaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	payment, err := h.svc.MarkAsPaid(c.Request.Context(), GetOwnerID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, payment)
}

// ListPayments GET /api/v1/payments?faction_id=&order_id=
func (h *PendencyHandler) ListPayments(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"faction_id": c.Query("faction_id"),
		"order_id":   c.Query("order_id"),
	}
	payments, total, err := h.svc.ListPayments(c.Request.Context(), GetOwnerID(c), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: payments,
		Pagination: &Pagination{
			Page: page, PageSize: pageSize,
			Total: int(total), TotalPages: totalPages(total, pageSize),
		},
	})
}

// Summary GET /api/v1/finance/summary
func (h *PendencyHandler) Summary(c *gin.Context) {
	summary, err := h.svc.GetSummary(c.Request.Context(), GetOwnerID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, summary)
}

// GetSettings GET /api/v1/finance/settings
func (h *PendencyHandler) GetSettings(c *gin.Context) {
	settings, err := h.svc.GetSettings(c.Request.Context(), GetOwnerID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, settings)
}

// UpdateSettings PUT /api/v1/finance/settings
func (h *PendencyHandler) UpdateSettings(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	settings, err := h.svc.UpdateSettings(c.Request.Context(), GetOwnerID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, settings)
}
