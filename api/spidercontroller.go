package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SpiderRequest is the body of POST /api/spider.
type SpiderRequest struct {
	URL string `json:"url" binding:"required"`
}

// RegisterSpiderRoutes registers the scrape-and-queue endpoint.
func (s *Server) RegisterSpiderRoutes(r *gin.Engine) {
	r.POST("/api/spider", s.handleSpider)
}

func (s *Server) handleSpider(c *gin.Context) {
	var req SpiderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}
	doc, err := s.svc.Scrape(c.Request.Context(), req.URL)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": doc})
}
