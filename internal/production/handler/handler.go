package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/confecta/confecta/internal/production/service"
	"github.com/confecta/confecta/internal/shared/apperr"
)

// Handlers holds the production module's HTTP handlers.
type Handlers struct {
	Stage    *StageHandler
	Product  *ProductHandler
	Faction  *FactionHandler
	Order    *OrderHandler
	Progress *ProgressHandler
}

func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Stage:    NewStageHandler(svc.Stage),
		Product:  NewProductHandler(svc.Product),
		Faction:  NewFactionHandler(svc.Faction),
		Order:    NewOrderHandler(svc.Order),
		Progress: NewProgressHandler(svc.Progress, svc.Order),
	}
}

// Response is the API envelope. Code 0 means success; error codes are the
// HTTP status times 100 plus a discriminator.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{Code: 0, Message: "success", Data: data})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError maps domain errors onto the envelope. Invalid transitions
// and concurrent-write conflicts come back as 409 so clients can refetch
// and retry instead of treating them as bad input.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, apperr.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, apperr.ErrInvalidTransition),
		errors.Is(err, apperr.ErrConflictingActiveStage),
		errors.Is(err, apperr.ErrDuplicateProgress),
		errors.Is(err, apperr.ErrStalePendencyWrite):
		Conflict(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetOwnerID reads the authenticated owner from the request context.
func GetOwnerID(c *gin.Context) string {
	ownerID, _ := c.Get("owner_id")
	if id, ok := ownerID.(string); ok {
		return id
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
