package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CheckLinkRequest represents the request to check a link for duplicates
type CheckLinkRequest struct {
	Link string `json:"link" binding:"required"`
}

// RegisterDeduplicationRoutes registers deduplication endpoints.
func (s *Server) RegisterDeduplicationRoutes(r *gin.Engine) {
	g := r.Group("/api/deduplication")
	g.POST("/check", s.handleCheckLink)
}

// handleCheckLink reports whether a link is already pending or remembered.
func (s *Server) handleCheckLink(c *gin.Context) {
	var req CheckLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := s.storeContext(c)
	defer cancel()
	c.JSON(http.StatusOK, s.svc.CheckLink(ctx, req.Link))
}
