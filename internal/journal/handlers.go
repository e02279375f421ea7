package journal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler provides read-only HTTP endpoints over the journal.
type Handler struct {
	store Store
}

// NewHandler creates a new journal handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up the invocation history routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/invocations", h.List)
	r.GET("/invocations/:id", h.Get)
}

// List handles GET /v1/invocations?tool=&limit=
func (h *Handler) List(c *gin.Context) {
	f := Filter{Tool: c.Query("tool")}
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_limit",
				"message": "limit must be a positive integer",
			})
			return
		}
		f.Limit = parsed
	}

	entries, err := h.store.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invocations": entries,
		"count":       len(entries),
	})
}

// Get handles GET /v1/invocations/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_id",
			"message": "id must be a UUID",
		})
		return
	}

	entry, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Invocation not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"invocation": entry})
}
