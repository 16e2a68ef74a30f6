package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/opsboard/backend/internal/domain/catalog"
	"github.com/opsboard/backend/internal/domain/location"
	"github.com/opsboard/backend/internal/domain/shared"
)

// LocationResponse is the public view of a location
type LocationResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	ParentID string   `json:"parent_id,omitempty"`
	Children []string `json:"children"`
}

// SourceResponse tells which location supplies requests raised at a location
type SourceResponse struct {
	LocationID string `json:"location_id"`
	SourceID   string `json:"source_id"`
}

// ItemResponse is the public view of a catalog item
type ItemResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Category string `json:"category"`
}

// ReferenceHandler serves the location graph and the item catalog. Both are
// read-only at runtime.
type ReferenceHandler struct {
	BaseHandler
	graph   *location.Graph
	catalog *catalog.Catalog
}

// NewReferenceHandler creates a reference data handler
func NewReferenceHandler(graph *location.Graph, cat *catalog.Catalog) *ReferenceHandler {
	return &ReferenceHandler{graph: graph, catalog: cat}
}

// RegisterRoutes mounts the location and item routes on rg
func (h *ReferenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/locations", h.ListLocations)
	rg.GET("/locations/:id/descendants", h.Descendants)
	rg.GET("/locations/:id/source", h.Source)
	rg.GET("/items", h.ListItems)
}

// ListLocations handles GET /locations
func (h *ReferenceHandler) ListLocations(c *gin.Context) {
	all := h.graph.All()
	out := make([]LocationResponse, len(all))
	for i, loc := range all {
		out[i] = LocationResponse{
			ID:       loc.ID,
			Name:     loc.Name,
			Type:     loc.Type.String(),
			ParentID: loc.ParentID,
			Children: h.graph.ChildrenOf(loc.ID),
		}
	}
	h.Success(c, out)
}

// Descendants handles GET /locations/:id/descendants. The location itself is
// part of its subtree.
func (h *ReferenceHandler) Descendants(c *gin.Context) {
	id := c.Param("id")
	if !h.requireLocation(c, id) {
		return
	}
	set := h.graph.DescendantsOf(id)
	ids := make([]string, 0, len(set))
	for d := range set {
		ids = append(ids, d)
	}
	sort.Strings(ids)
	h.Success(c, ids)
}

// Source handles GET /locations/:id/source
func (h *ReferenceHandler) Source(c *gin.Context) {
	id := c.Param("id")
	if !h.requireLocation(c, id) {
		return
	}
	h.Success(c, SourceResponse{LocationID: id, SourceID: h.graph.ResolveSource(id)})
}

// ListItems handles GET /items
func (h *ReferenceHandler) ListItems(c *gin.Context) {
	items := h.catalog.All()
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = ItemResponse{ID: it.ID, Name: it.Name, SKU: it.SKU, Category: it.Category}
	}
	h.Success(c, out)
}

func (h *ReferenceHandler) requireLocation(c *gin.Context, id string) bool {
	if h.graph.Contains(id) {
		return true
	}
	h.Error(c, http.StatusNotFound, shared.CodeNotFound, "Location "+id+" not found")
	return false
}
