package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appsync "github.com/opsboard/backend/internal/application/sync"
)

// SyncTrigger runs a manual sync
type SyncTrigger interface {
	Trigger(ctx context.Context) (*appsync.Result, error)
	FeedName() string
}

// RunHistory lists recent sync runs, newest first
type RunHistory interface {
	History(limit int) []appsync.Run
}

// SyncHandler exposes manual sync and its run history
type SyncHandler struct {
	BaseHandler
	coordinator SyncTrigger
	history     RunHistory
}

// NewSyncHandler creates a sync handler. history may be nil when no
// scheduler runs.
func NewSyncHandler(coordinator SyncTrigger, history RunHistory) *SyncHandler {
	return &SyncHandler{coordinator: coordinator, history: history}
}

// RegisterRoutes mounts the sync routes on rg
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.Trigger)
	rg.GET("/sync/history", h.History)
}

// Trigger handles POST /sync. A failed fetch surfaces as 502 SYNC_FAILURE;
// local state is untouched either way.
func (h *SyncHandler) Trigger(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}
	result, err := h.coordinator.Trigger(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// History handles GET /sync/history?limit=
func (h *SyncHandler) History(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}
	limit, err := intQuery(c, "limit", 20)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	runs := []appsync.Run{}
	if h.history != nil {
		runs = h.history.History(limit)
	}
	h.Success(c, gin.H{"feed": h.coordinator.FeedName(), "runs": runs})
}
