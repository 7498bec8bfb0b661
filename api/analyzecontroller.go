package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// RegisterAnalyzeRoutes registers the free-text extraction endpoint.
func (s *Server) RegisterAnalyzeRoutes(r *gin.Engine) {
	r.POST("/api/analyze", s.handleAnalyze)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	rec, err := s.svc.Extract(c.Request.Context(), req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
