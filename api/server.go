// Package api serves task metadata and stored benchmark results over HTTP.
// Scoring runs stay in the CLI; the API is read-only.
package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stellarlinkco/bias-bench/internal/config"
	"github.com/stellarlinkco/bias-bench/internal/history"
	"github.com/stellarlinkco/bias-bench/internal/task"
)

type Server struct {
	router  *gin.Engine
	config  *config.Config
	history *history.Store
	loader  *task.Loader
}

func NewServer(cfg *config.Config, hs *history.Store) (*Server, error) {
	r := gin.New()
	s := &Server{
		router:  r,
		config:  cfg,
		history: hs,
		loader:  &task.Loader{},
	}
	if cfg != nil {
		s.loader.CrowsPairsPath = cfg.Datasets.CrowsPairsPath
		s.loader.StereoSetPath = cfg.Datasets.StereoSetPath
	}
	s.registerMiddleware()
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}
