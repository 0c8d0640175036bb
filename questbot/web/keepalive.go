// Package web runs the keep-alive HTTP listener that hosting platforms
// ping to keep the process alive.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server is the liveness endpoint. It reports nothing about internal
// state beyond the process being up.
type Server struct {
	srv *http.Server
}

func NewServer(addr, version string) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "QuestBot %s is alive!\n", version)
	})

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// ListenAndServe blocks serving liveness pings until Shutdown is called.
func (s *Server) ListenAndServe() error {
	slog.Info("Keep-alive server listening",
		slog.String("type", "sys"),
		slog.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
