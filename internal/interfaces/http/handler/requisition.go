package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appreq "github.com/opsboard/backend/internal/application/requisition"
	"github.com/opsboard/backend/internal/domain/requisition"
	"github.com/opsboard/backend/internal/domain/shared"
	"github.com/opsboard/backend/internal/infrastructure/logger"
	"github.com/opsboard/backend/internal/interfaces/http/middleware"
)

// IdempotencyKeyHeader carries a client chosen key for create retries
const IdempotencyKeyHeader = "Idempotency-Key"

// CreateRequisitionRequest is the create body. The requester and its
// location come from the authenticated user.
type CreateRequisitionRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// UpdateStatusRequest asks for one transition. The expected fields guard
// against acting on a stale view.
type UpdateStatusRequest struct {
	Status          string  `json:"status" binding:"required,requisition_status"`
	ExpectedStatus  *string `json:"expected_status,omitempty" binding:"omitempty,requisition_status"`
	ExpectedVersion *int    `json:"expected_version,omitempty" binding:"omitempty,min=1"`
}

// BulkStatusRequest applies one transition to several requisitions
type BulkStatusRequest struct {
	IDs    []string `json:"ids" binding:"required,min=1,max=200,dive,required"`
	Status string   `json:"status" binding:"required,requisition_status"`
}

// RequisitionHandler handles requisition endpoints
type RequisitionHandler struct {
	BaseHandler
	store       *appreq.Store
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
}

// NewRequisitionHandler creates a requisition handler. A nil idempotency
// store ignores Idempotency-Key headers.
func NewRequisitionHandler(store *appreq.Store, idem shared.IdempotencyStore, cfg shared.IdempotencyConfig) *RequisitionHandler {
	return &RequisitionHandler{store: store, idempotency: idem, idemConfig: cfg}
}

// RegisterRoutes mounts the requisition routes on rg
func (h *RequisitionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/requisitions")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/bulk-status", h.BulkUpdateStatus)
	g.POST("/approve-pending", h.ApprovePending)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/status", h.UpdateStatus)
}

// List handles GET /requisitions?status=&item_id=&page=&page_size=
func (h *RequisitionHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	filter := appreq.ListFilter{ItemID: c.Query("item_id")}
	if raw := c.Query("status"); raw != "" {
		status := requisition.Status(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown status "+raw)
			return
		}
		filter.Status = status
	}
	var err error
	if filter.Page, err = intQuery(c, "page", 1); err != nil {
		h.HandleError(c, err)
		return
	}
	if filter.PageSize, err = intQuery(c, "page_size", 20); err != nil {
		h.HandleError(c, err)
		return
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	page := h.store.ListFor(c.Request.Context(), actor, filter)
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// Get handles GET /requisitions/:id
func (h *RequisitionHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.store.Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create handles POST /requisitions
func (h *RequisitionHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	key, proceed := h.claimIdempotencyKey(c, actor.UserID)
	if !proceed {
		return
	}

	resp, err := h.store.Create(ctx, appreq.CreateRequest{
		ItemID:      req.ItemID,
		Quantity:    req.Quantity,
		RequesterID: actor.UserID,
	})
	if err != nil {
		if key != "" {
			if relErr := h.idempotency.Release(ctx, key); relErr != nil {
				logger.GetGinLogger(c).Warn("Failed to release idempotency key", zap.Error(relErr))
			}
		}
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// claimIdempotencyKey claims the request's key before the create runs, so of
// two concurrent requests with the same key only one proceeds. It returns the
// claimed key ("" when there is nothing to release later) and false after
// answering a duplicate with 409. Store failures let the request through.
func (h *RequisitionHandler) claimIdempotencyKey(c *gin.Context, userID string) (string, bool) {
	key := h.idempotencyKey(c, userID)
	if key == "" {
		return "", true
	}
	claimed, err := h.idempotency.MarkProcessed(c.Request.Context(), key, h.idemConfig.TTL)
	if err != nil {
		logger.GetGinLogger(c).Warn("Idempotency claim failed, continuing", zap.Error(err))
		return "", true
	}
	if !claimed {
		h.Error(c, http.StatusConflict, shared.CodeAlreadyExists, "A requisition was already created with this Idempotency-Key")
		return "", false
	}
	return key, true
}

func (h *RequisitionHandler) idempotencyKey(c *gin.Context, userID string) string {
	if h.idempotency == nil || !h.idemConfig.Enabled {
		return ""
	}
	raw := c.GetHeader(IdempotencyKeyHeader)
	if raw == "" {
		return ""
	}
	return "requisition:create:" + userID + ":" + raw
}

// UpdateStatus handles PATCH /requisitions/:id/status
func (h *RequisitionHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	cmd := appreq.UpdateStatusRequest{
		ID:              c.Param("id"),
		Status:          requisition.Status(req.Status),
		Actor:           actor,
		ExpectedVersion: req.ExpectedVersion,
	}
	if req.ExpectedStatus != nil {
		expected := requisition.Status(*req.ExpectedStatus)
		cmd.ExpectedStatus = &expected
	}

	resp, err := h.store.UpdateStatus(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// BulkUpdateStatus handles POST /requisitions/bulk-status. Always 200; per-id failures are listed.
func (h *RequisitionHandler) BulkUpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	result := h.store.BulkUpdateStatus(c.Request.Context(), appreq.BulkStatusRequest{
		IDs:    req.IDs,
		Status: requisition.Status(req.Status),
		Actor:  actor,
	})
	h.Success(c, result)
}

// ApprovePending handles POST /requisitions/approve-pending
func (h *RequisitionHandler) ApprovePending(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.Success(c, h.store.ApprovePending(c.Request.Context(), actor))
}
