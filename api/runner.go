package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner owns the HTTP listener and the ingestion schedule.
type Runner struct {
	server     *Server
	httpServer *http.Server
	cron       *cron.Cron
	cronID     cron.EntryID
	mu         sync.Mutex
}

// NewRunner binds s to addr.
func NewRunner(s *Server, addr string) *Runner {
	return &Runner{
		server: s,
		cron:   cron.New(),
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(s),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start listens in the background. Bind errors are returned immediately.
func (r *Runner) Start() error {
	ln, err := net.Listen("tcp", r.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.httpServer.Addr, err)
	}
	r.server.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := r.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.server.log.Error("http server stopped", zap.Error(err))
		}
	}()
	return nil
}

// StartCron schedules ingestion runs. Runs that would overlap a running
// ingestion are skipped.
func (r *Runner) StartCron(schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.cron.AddFunc(schedule, func() { r.server.scheduledIngest(context.Background()) })
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	r.cronID = id
	r.cron.Start()
	r.server.log.Info("ingestion scheduled", zap.String("schedule", schedule))
	return nil
}

// Shutdown stops the schedule, waits for a running job and drains HTTP.
func (r *Runner) Shutdown(ctx context.Context) error {
	stopped := r.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
	return r.httpServer.Shutdown(ctx)
}

func (s *Server) scheduledIngest(ctx context.Context) bool {
	if !s.refresh.running.CompareAndSwap(false, true) {
		s.log.Info("scheduled ingestion skipped; previous run still active")
		return false
	}
	defer s.refresh.running.Store(false)
	if _, err := s.svc.RunOnce(ctx); err != nil {
		s.log.Error("scheduled ingestion failed", zap.Error(err))
	}
	return true
}
