package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Server accepts detector results over a websocket. The detector page posts
// one JSON results message per processed camera frame.
type Server struct {
	addr     string
	path     string
	sink     Sink
	upgrader websocket.Upgrader
}

// NewServer creates a websocket ingest server that forwards results to sink.
func NewServer(addr, path string, sink Sink) *Server {
	if path == "" {
		path = "/landmarks"
	}
	return &Server{
		addr: addr,
		path: path,
		sink: sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 1024,
			// The detector page is served from wherever the kiosk runs it.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler serving the websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.serveWS)
	return mux
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("detector feed listening", "addr", s.addr, "path", s.path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down detector feed: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("detector feed: %w", err)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("detector feed upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("detector connected", "remote", r.RemoteAddr)
	var frames, dropped int
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("detector feed read error", "error", err)
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		hands, err := ParseResults(msg)
		if err != nil {
			dropped++
			slog.Debug("dropping detector message", "error", err)
			continue
		}
		frames++
		s.sink.OnDetectionResult(hands)
	}
	slog.Info("detector disconnected", "remote", r.RemoteAddr, "frames", frames, "dropped", dropped)
}
