package graph

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP endpoints for raw subgraph access
type Handler struct {
	service *Service
}

// NewHandler creates a new subgraph handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up subgraph routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/subgraphs", h.ListSubgraphs)
	r.GET("/subgraphs/:name/queries", h.ListQueries)
	r.POST("/subgraphs/:name/queries/:query", h.RunQuery)
}

// subgraphSummary is the listing shape; templates are not exposed.
type subgraphSummary struct {
	Name       string   `json:"name"`
	SubgraphID string   `json:"subgraphId"`
	Queries    []string `json:"queries"`
}

// ListSubgraphs handles GET /subgraphs
func (h *Handler) ListSubgraphs(c *gin.Context) {
	names := h.service.AvailableSubgraphs()
	out := make([]subgraphSummary, 0, len(names))
	for _, name := range names {
		sg, _ := h.service.Subgraph(name)
		out = append(out, subgraphSummary{
			Name:       name,
			SubgraphID: sg.SubgraphID,
			Queries:    h.service.AvailableQueries(name),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"subgraphs": out,
		"count":     len(out),
	})
}

// ListQueries handles GET /subgraphs/:name/queries
func (h *Handler) ListQueries(c *gin.Context) {
	name := c.Param("name")
	if _, ok := h.service.Subgraph(name); !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "subgraph_not_found",
			"message": "Subgraph " + name + " not found in configuration",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subgraph": name,
		"queries":  h.service.AvailableQueries(name),
	})
}

// RunQuery handles POST /subgraphs/:name/queries/:query. The optional JSON
// body is used as the GraphQL variables.
func (h *Handler) RunQuery(c *gin.Context) {
	var vars map[string]any
	if err := c.ShouldBindJSON(&vars); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must be a JSON object of query variables",
		})
		return
	}

	name, query := c.Param("name"), c.Param("query")
	data, err := h.service.QuerySubgraph(c.Request.Context(), name, query, vars)
	if err != nil {
		status, code := http.StatusBadGateway, "query_failed"
		switch {
		case errors.Is(err, ErrSubgraphNotFound):
			status, code = http.StatusNotFound, "subgraph_not_found"
		case errors.Is(err, ErrQueryNotFound):
			status, code = http.StatusNotFound, "query_not_found"
		}
		c.JSON(status, gin.H{
			"error":   code,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subgraph": name,
		"query":    query,
		"data":     json.RawMessage(data),
	})
}
