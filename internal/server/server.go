// Package server exposes cast evaluation over WebSocket. Each text message is a
// casts YAML document; the reply is a JSON array of report entries, or an
// object with an "error" field.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/geniusisme/falldice/internal/cast"
	"github.com/geniusisme/falldice/internal/config"
	"github.com/geniusisme/falldice/internal/database"
	"github.com/geniusisme/falldice/internal/dice"
	"github.com/geniusisme/falldice/internal/logger"
	"github.com/geniusisme/falldice/internal/report"
)

// ReportStore persists evaluated entries.
type ReportStore interface {
	SaveReport(entry report.Entry) (*database.Record, error)
}

// ErrorResponse is sent when a message cannot be evaluated.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server evaluates casts sent by WebSocket clients.
type Server struct {
	cfg       config.ServerConfig
	catalogue *dice.Catalogue
	store     ReportStore
	limiter   *ConnLimiter
	upgrader  websocket.Upgrader
}

// NewServer creates a server. A nil store disables persistence.
func NewServer(cfg config.ServerConfig, catalogue *dice.Catalogue, store ReportStore) *Server {
	s := &Server{
		cfg:       cfg,
		catalogue: catalogue,
		store:     store,
		limiter:   NewConnLimiter(cfg.Connections),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the HTTP handler serving /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Evaluation server listening", "address", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
	if !allowed {
		logger.Warning("WebSocket connection rejected - origin not allowed",
			"origin", origin,
			"host", r.Host,
			"remote_addr", r.RemoteAddr)
	}
	return allowed
}

func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	release, ok := s.limiter.Acquire(ip)
	if !ok {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", ip)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Debug("WebSocket upgrade failed", "error", err, "client_ip", ip)
		release()
		return
	}

	go func() {
		defer release()
		s.serve(newWSClient(conn, ip, s.cfg.WebSocket.MaxMessageSize))
	}()
}

func (s *Server) serve(c *wsClient) {
	defer c.close()
	logger.Info("Client connected", "client_ip", c.ip)

	for {
		doc, err := c.readDocument()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warning("Client read failed", "client_ip", c.ip, "error", err)
			}
			logger.Info("Client disconnected", "client_ip", c.ip)
			return
		}

		var reply any
		entries, err := s.evaluate(doc)
		if err != nil {
			logger.Warning("Evaluation failed", "client_ip", c.ip, "error", err)
			reply = ErrorResponse{Error: err.Error()}
		} else {
			reply = entries
		}

		if err := c.writeJSON(reply); err != nil {
			logger.Warning("Client write failed", "client_ip", c.ip, "error", err)
			return
		}
	}
}

// evaluate runs every cast in doc. An effect that breaks the branching
// contract panics; the panic is reported to the client as an error.
func (s *Server) evaluate(doc []byte) (entries []report.Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entries = nil
			err = fmt.Errorf("evaluation aborted: %v", r)
		}
	}()

	defs, err := cast.Parse(doc)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, errors.New("document contains no casts")
	}

	entries = make([]report.Entry, 0, len(defs))
	for _, def := range defs {
		start := time.Now()
		entry, err := report.EvaluateWithLimit(def, s.catalogue, s.cfg.MaxCombinations)
		if err != nil {
			return nil, err
		}
		logger.Debug("Cast evaluated",
			"cast", entry.Name,
			"combinations", entry.Combinations,
			"elapsed", time.Since(start))

		if s.store != nil {
			if _, err := s.store.SaveReport(entry); err != nil {
				logger.Error("Failed to save report", "cast", entry.Name, "error", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
