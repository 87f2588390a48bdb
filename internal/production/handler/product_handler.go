package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/confecta/confecta/internal/production/service"
)

type ProductHandler struct {
	svc *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// List GET /api/v1/products?search=xxx
func (h *ProductHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	products, total, err := h.svc.List(c.Request.Context(), GetOwnerID(c), page, pageSize, c.Query("search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: products,
		Pagination: &Pagination{
			Page: page, PageSize: pageSize,
			Total: int(total), TotalPages: totalPages(total, pageSize),
		},
	})
}

// Get GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.svc.Get(c.Request.Context(), GetOwnerID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, product)
}

// Create POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	product, err := h.svc.Create(c.Request.Context(), GetOwnerID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, product)
}

// Update PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	product, err := h.svc.Update(c.Request.Context(), GetOwnerID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, product)
}

// Delete DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetOwnerID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "product deleted"})
}
