package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/confecta/confecta/internal/production/service"
)

// OrderHandler exposes production order CRUD and the status workflow.
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List GET /api/v1/orders?status=&priority=&product_id=&faction_id=
func (h *OrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":     c.Query("status"),
		"priority":   c.Query("priority"),
		"product_id": c.Query("product_id"),
		"faction_id": c.Query("faction_id"),
	}
	orders, total, err := h.svc.List(c.Request.Context(), GetOwnerID(c), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: orders,
		Pagination: &Pagination{
			Page: page, PageSize: pageSize,
			Total: int(total), TotalPages: totalPages(total, pageSize),
		},
	})
}

// Get GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), GetOwnerID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, order)
}

// Create POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	order, err := h.svc.Create(c.Request.Context(), GetOwnerID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, order)
}

// Update PUT /api/v1/orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	order, err := h.svc.Update(c.Request.Context(), GetOwnerID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, order)
}

// UpdateStatus PUT /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	order, err := h.svc.UpdateStatus(c.Request.Context(), GetOwnerID(c), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, order)
}

// Delete DELETE /api/v1/orders/:id
//
// Deletion is two-phase: the first call returns a short-lived confirm
// token, the second call carries it in X-Confirm-Token and performs the
// delete.
func (h *OrderHandler) Delete(c *gin.Context) {
	token := c.GetHeader("X-Confirm-Token")
	result, err := h.svc.Delete(c.Request.Context(), GetOwnerID(c), c.Param("id"), token)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// ActivityLog GET /api/v1/orders/:id/activity
func (h *OrderHandler) ActivityLog(c *gin.Context) {
	page, pageSize := GetPagination(c)
	logs, total, err := h.svc.ActivityLog(c.Request.Context(), GetOwnerID(c), c.Param("id"), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: logs,
		Pagination: &Pagination{
			Page: page, PageSize: pageSize,
			Total: int(total), TotalPages: totalPages(total, pageSize),
		},
	})
}
