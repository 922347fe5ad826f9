package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/scythe504/bingo-backend/internal/config"
)

type Server struct {
	cfg *config.Config
}

func NewServer(cfg *config.Config) *http.Server {
	s := &Server{cfg: cfg}

	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
