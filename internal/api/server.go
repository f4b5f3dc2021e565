// internal/api/server.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ethfi-report-bot/application/scheduler"
	"ethfi-report-bot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// StatusProvider - то, что сервер показывает о работающем боте
type StatusProvider interface {
	SubscriberCount() int
	Jobs() []scheduler.JobStatus
	Healthy(ctx context.Context) error
}

type jobView struct {
	Name      string `json:"name"`
	Interval  string `json:"interval"`
	Runs      int    `json:"runs"`
	LastRun   string `json:"last_run,omitempty"`
	NextRun   string `json:"next_run,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// SetupRouter создает маршруты служебного API
func SetupRouter(status StatusProvider, version string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := status.Healthy(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/status", func(c *gin.Context) {
		jobs := status.Jobs()
		views := make([]jobView, 0, len(jobs))
		for _, j := range jobs {
			v := jobView{Name: j.Name, Interval: j.Interval.String(), Runs: j.Runs}
			if !j.LastRun.IsZero() {
				v.LastRun = j.LastRun.UTC().Format(time.RFC3339)
			}
			if !j.NextRun.IsZero() {
				v.NextRun = j.NextRun.UTC().Format(time.RFC3339)
			}
			if j.LastErr != nil {
				v.LastError = j.LastErr.Error()
			}
			views = append(views, v)
		}
		c.JSON(http.StatusOK, gin.H{
			"version":     version,
			"subscribers": status.SubscriberCount(),
			"jobs":        views,
		})
	})

	return router
}

// Server - HTTP-сервер статуса
type Server struct {
	srv *http.Server
}

// NewServer создает сервер на указанном порту
func NewServer(port int, status StatusProvider, version string) *Server {
	return &Server{srv: &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           SetupRouter(status, version),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start запускает сервер в фоне
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("❌ [HTTP] Сервер статуса остановился: %v", err)
		}
	}()
	logger.Info("🌐 [HTTP] Сервер статуса слушает %s", s.srv.Addr)
}

// Stop корректно завершает сервер
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
