package api

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type refreshState struct {
	running atomic.Bool
}

// RegisterRSSRoutes registers feed aggregation endpoints.
func (s *Server) RegisterRSSRoutes(r *gin.Engine) {
	g := r.Group("/api/rss")
	g.GET("", s.handleRSSPreview)
	g.POST("/ingest", s.handleRSSIngest)
	g.POST("/refresh", s.handleRSSRefresh)
}

// handleRSSPreview aggregates feeds without queueing anything.
// GET /api/rss?days=N
func (s *Server) handleRSSPreview(c *gin.Context) {
	days := 0
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = n
	}
	c.JSON(http.StatusOK, s.svc.Preview(c.Request.Context(), days))
}

// handleRSSIngest runs one ingestion cycle and reports what was queued.
func (s *Server) handleRSSIngest(c *gin.Context) {
	if !s.refresh.running.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "ingestion already running"})
		return
	}
	defer s.refresh.running.Store(false)

	rep, err := s.svc.RunOnce(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// handleRSSRefresh starts an ingestion cycle in the background and returns
// 202 Accepted immediately.
func (s *Server) handleRSSRefresh(c *gin.Context) {
	if !s.refresh.running.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "ingestion already running"})
		return
	}
	go func() {
		defer s.refresh.running.Store(false)
		if _, err := s.svc.RunOnce(context.Background()); err != nil {
			s.log.Error("background ingestion failed", zap.Error(err))
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}
