package tools

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes the registry over HTTP.
type Handler struct {
	registry *Registry
}

// NewHandler creates a new tool handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// RegisterRoutes sets up the tool routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tools", h.ListTools)
	r.POST("/tools/:name", h.InvokeTool)
}

// ListTools handles GET /v1/tools
func (h *Handler) ListTools(c *gin.Context) {
	defs := h.registry.Definitions()
	c.JSON(http.StatusOK, gin.H{
		"tools": defs,
		"count": len(defs),
	})
}

// InvokeTool handles POST /v1/tools/:name. The body is the argument object.
// Tool failures are reported in the envelope with a 200; only a body that is
// not a JSON object is rejected.
func (h *Handler) InvokeTool(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "failed to read request body",
		})
		return
	}
	if len(body) > 0 {
		var args map[string]json.RawMessage
		if err := json.Unmarshal(body, &args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "arguments must be a JSON object",
			})
			return
		}
	}

	result := h.registry.Invoke(c.Request.Context(), c.Param("name"), body)
	c.JSON(http.StatusOK, result)
}
