// Package admin serves the operator HTTP API next to the game transport.
package admin

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	modelpkg "realcoins/internal/sim/world/kernel/model"
)

// World is the part of the world host the admin API reads.
type World interface {
	ID() string
	CurrentTick() uint64
	Balance(ctx context.Context, id modelpkg.PlayerID) (int, error)
	RequestSnapshot(ctx context.Context) (uint64, error)
}

type Server struct {
	world   World
	log     *zap.Logger
	timeout time.Duration
	// Secret enables bearer token auth on the admin routes.
	Secret []byte
}

func NewServer(w World, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{world: w, log: log, timeout: 5 * time.Second}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, s.requestLog, middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/admin/v1", func(a chi.Router) {
		a.Use(s.requireAdmin)
		a.Get("/balance/{player}", s.handleBalance)
		a.Post("/snapshot", s.handleSnapshot)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"world":  s.world.ID(),
		"tick":   s.world.CurrentTick(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	id, err := modelpkg.ParsePlayerID(chi.URLParam(r, "player"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad player id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	bal, err := s.world.Balance(ctx, id)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"player": id.String(), "balance": bal})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	tick, err := s.world.RequestSnapshot(ctx)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.log.Info("snapshot requested",
		zap.Uint64("tick", tick),
		zap.String("by", subjectFrom(r.Context())),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)
	writeJSON(w, http.StatusOK, map[string]any{"tick": tick})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("admin request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
