// Package api exposes the pipeline over HTTP with gin.
package api

import (
	"context"
	"net/http"
	"time"

	"newsdesk/apperr"
	"newsdesk/deduplication"
	"newsdesk/logging"
	"newsdesk/orchestrator"
	"newsdesk/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the pipeline surface the handlers call.
type Service interface {
	Preview(ctx context.Context, days int) []types.CandidateItem
	RunOnce(ctx context.Context) (orchestrator.Report, error)
	Scrape(ctx context.Context, rawURL string) (types.ScrapedDocument, error)
	Pending(ctx context.Context) []types.PendingEntry
	Dismiss(ctx context.Context, id string) error
	Promote(ctx context.Context, id string) (types.ExtractedNewsData, error)
	Extract(ctx context.Context, text string) (types.ExtractedNewsData, error)
	CheckLink(ctx context.Context, link string) deduplication.DeduplicationResult
}

// BrandStore loads and saves the brand vocabulary.
type BrandStore interface {
	Load(ctx context.Context) []string
	Save(ctx context.Context, list []string) ([]string, error)
}

// Server holds handler dependencies.
type Server struct {
	svc          Service
	brands       BrandStore
	log          *zap.Logger
	storeTimeout time.Duration
	refresh      refreshState
}

// NewServer builds a Server. storeTimeout bounds handlers that only touch the
// blob store; zero disables it.
func NewServer(svc Service, brands BrandStore, storeTimeout time.Duration, log *zap.Logger) *Server {
	return &Server{svc: svc, brands: brands, storeTimeout: storeTimeout, log: logging.OrNop(log)}
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log), allowCORS())

	RegisterHealthRoutes(r)
	s.RegisterRSSRoutes(r)
	s.RegisterSpiderRoutes(r)
	s.RegisterPendingRoutes(r)
	s.RegisterAnalyzeRoutes(r)
	s.RegisterBrandRoutes(r)
	s.RegisterDeduplicationRoutes(r)
	return r
}

// RegisterHealthRoutes registers the liveness check.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

func allowCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), s.storeTimeout)
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnparsableContent, apperr.KindModelOutputInvalid:
		return http.StatusUnprocessableEntity
	case apperr.KindSourceUnavailable, apperr.KindUpstreamModel:
		return http.StatusBadGateway
	case apperr.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		s.log.Warn("request rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": apperr.Message(err), "kind": string(apperr.KindOf(err))})
}
