package rest

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/relief-ops/supply-allocator/internal/logger"
)

// Base REST server
type BaseServer struct {
	router *gin.Engine
}

func NewBaseServer() *BaseServer {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	return &BaseServer{
		router: router,
	}
}

// Handler serving the REST API
func (server *BaseServer) Handler() http.Handler {
	return server.router
}

// Address from the environment, falling back to the defaults
func Address() string {
	var host, port string
	if host = os.Getenv(RestHostEnvName); host == "" {
		host = DefaultRestHost
	}
	if port = os.Getenv(RestPortEnvName); port == "" {
		port = DefaultRestPort
	}
	return host + ":" + port
}

// start server; returns when ctx is done or the server fails
func (server *BaseServer) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Log.Infow("REST server started", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Log.Infow("REST server stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Log.Debugw("REST request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "latency", time.Since(start))
	}
}
