package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appreq "github.com/opsboard/backend/internal/application/requisition"
)

// InventoryHandler serves ledger balances
type InventoryHandler struct {
	BaseHandler
	store *appreq.Store
}

// NewInventoryHandler creates an inventory handler
func NewInventoryHandler(store *appreq.Store) *InventoryHandler {
	return &InventoryHandler{store: store}
}

// RegisterRoutes mounts the inventory routes on rg
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/inventory", h.List)
}

// List handles GET /inventory?location_id=&include_descendants=. The
// location defaults to the caller's own.
func (h *InventoryHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	locationID := c.DefaultQuery("location_id", actor.LocationID)

	includeDescendants := false
	if raw := c.Query("include_descendants"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "include_descendants must be true or false")
			return
		}
		includeDescendants = v
	}

	records, err := h.store.ListInventoryFor(c.Request.Context(), locationID, includeDescendants)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}
