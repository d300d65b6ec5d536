package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minimapd/minimapd/internal/events"
	"github.com/minimapd/minimapd/internal/minimap"
	"github.com/minimapd/minimapd/internal/registry"
	"github.com/minimapd/minimapd/internal/service"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	svc *service.Service
}

// NewHandlers creates a new handler set.
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// Root handles health check.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "minimapd",
		"version": "1.0.0",
	})
}

// Health handles detailed health check.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"instances": h.svc.Registry().Len(),
	})
}

// CreateInstance parses or fetches a page and builds a minimap for it.
func (h *Handlers) CreateInstance(c *gin.Context) {
	var req service.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inst, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(createStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, instanceView(inst))
}

// ListInstances lists all live instances.
func (h *Handlers) ListInstances(c *gin.Context) {
	insts := h.svc.Registry().List()
	views := make([]gin.H, 0, len(insts))
	for _, inst := range insts {
		views = append(views, instanceView(inst))
	}
	c.JSON(http.StatusOK, gin.H{
		"instances": views,
		"count":     len(views),
	})
}

// GetInstance returns one instance's state.
func (h *Handlers) GetInstance(c *gin.Context) {
	inst, err := h.svc.Registry().Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, instanceView(inst))
}

// OpInstance applies a lifecycle operation named in the route.
func (h *Handlers) OpInstance(op string) gin.HandlerFunc {
	return func(c *gin.Context) {
		inst, err := h.svc.Registry().Get(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err := h.svc.Op(inst, op); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":      inst.ID,
			"shown":   inst.Controller.Shown(),
			"patches": inst.Document.Journal().Drain(),
		})
	}
}

// UpdateConfig applies one configuration field to an instance.
func (h *Handlers) UpdateConfig(c *gin.Context) {
	inst, err := h.svc.Registry().Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Field string      `json:"field"`
		Value interface{} `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Set(inst, req.Field, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      inst.ID,
		"config":  inst.Controller.Config(),
		"patches": inst.Document.Journal().Drain(),
	})
}

// Snapshot renders the instance's full document.
func (h *Handlers) Snapshot(c *gin.Context) {
	inst, err := h.svc.Registry().Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	markup, err := inst.Document.Render()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":    inst.ID,
		"html":  markup,
		"shown": inst.Controller.Shown(),
		"scale": inst.Controller.Scale(),
	})
}

// Patches drains pending DOM mutations for polling clients.
func (h *Handlers) Patches(c *gin.Context) {
	inst, err := h.svc.Registry().Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      inst.ID,
		"patches": inst.Document.Journal().Drain(),
	})
}

// Query runs an XPath expression against the instance's document.
func (h *Handlers) Query(c *gin.Context) {
	inst, err := h.svc.Registry().Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		XPath string `json:"xpath"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.XPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "xpath is required"})
		return
	}

	nodes, err := inst.Document.XPath(req.XPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	matches := make([]gin.H, 0, len(nodes))
	for _, n := range nodes {
		matches = append(matches, gin.H{
			"tag":   n.Tag(),
			"class": n.Attr("class"),
			"text":  n.Text(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      inst.ID,
		"matches": matches,
		"count":   len(matches),
	})
}

// DispatchEvent accepts a single host event over REST, for clients that do
// not hold a WebSocket session.
func (h *Handlers) DispatchEvent(c *gin.Context) {
	inst, err := h.svc.Registry().Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Event *events.Event `json:"event"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Event == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event is required"})
		return
	}

	h.svc.Dispatch(inst, req.Event)
	c.JSON(http.StatusOK, gin.H{
		"id":      inst.ID,
		"patches": inst.Document.Journal().Drain(),
	})
}

// DeleteInstance closes and removes an instance.
func (h *Handlers) DeleteInstance(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Close(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "closed": true})
}

func instanceView(inst *registry.Instance) gin.H {
	return gin.H{
		"id":         inst.ID,
		"source":     inst.Source,
		"created_at": inst.CreatedAt,
		"shown":      inst.Controller.Shown(),
		"scale":      inst.Controller.Scale(),
		"config":     inst.Controller.Config(),
	}
}

// createStatus maps creation failures to HTTP codes: rejected configuration
// values are client errors, everything else stays a generic 400.
func createStatus(err error) int {
	var cfgErr *minimap.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}
