package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterBrandRoutes registers brand vocabulary endpoints.
func (s *Server) RegisterBrandRoutes(r *gin.Engine) {
	g := r.Group("/api/brands")
	g.GET("", s.handleGetBrands)
	g.PUT("", s.handleSaveBrands)
	g.POST("", s.handleSaveBrands)
}

func (s *Server) handleGetBrands(c *gin.Context) {
	ctx, cancel := s.storeContext(c)
	defer cancel()
	c.JSON(http.StatusOK, s.brands.Load(ctx))
}

func (s *Server) handleSaveBrands(c *gin.Context) {
	var list []string
	if err := c.ShouldBindJSON(&list); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	ctx, cancel := s.storeContext(c)
	defer cancel()

	saved, err := s.brands.Save(ctx, list)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "brands": saved})
}
