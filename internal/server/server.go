package server

import (
	"fmt"
	"log"
	"net/http"
)

// Server ties together HTTP serving and WebSocket handling.
type Server struct {
	handlers *Handlers
	port     int
}

func New(cfg Config) (*Server, error) {
	handlers, err := NewHandlers(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{handlers: handlers, port: cfg.Port}, nil
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/create", s.handlers.HandleCreateMatch)
	mux.HandleFunc("/api/qr", s.handlers.HandleQR)
	mux.HandleFunc("/api/player-id", s.handlers.HandlePlayerID)
	mux.HandleFunc("/api/stats", s.handlers.HandleStats)
	mux.HandleFunc("/ws", s.handlers.HandleWS)

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("hive server starting on http://localhost%s", addr)
	log.Printf("POST http://localhost%s/api/create to open a match", addr)
	return http.ListenAndServe(addr, mux)
}
