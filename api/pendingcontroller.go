package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RegisterPendingRoutes registers the review queue endpoints.
func (s *Server) RegisterPendingRoutes(r *gin.Engine) {
	g := r.Group("/api/pending")
	g.GET("", s.handleListPending)
	g.DELETE("", s.handleDismissPending)
	g.DELETE("/:id", s.handleDismissPending)
	g.POST("/:id/promote", s.handlePromotePending)
}

// handleListPending returns the queue newest first.
// GET /api/pending?limit=N
func (s *Server) handleListPending(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	ctx, cancel := s.storeContext(c)
	defer cancel()

	entries := s.svc.Pending(ctx)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	c.JSON(http.StatusOK, entries)
}

// handleDismissPending deletes one entry. The id comes from the path or,
// for older clients, the ?id= query.
func (s *Server) handleDismissPending(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		id = c.Query("id")
	}
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing ID"})
		return
	}
	ctx, cancel := s.storeContext(c)
	defer cancel()

	if err := s.svc.Dismiss(ctx, id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handlePromotePending extracts an entry and publishes the result.
func (s *Server) handlePromotePending(c *gin.Context) {
	rec, err := s.svc.Promote(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
