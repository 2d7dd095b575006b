// Package audioserve is the clip hand-off point between speech synthesis and
// the speaker box. Synthesized clips land here, the speaker streams them back
// by URL. Clips get random names so a slow speaker never streams a clip that
// was overwritten mid-fetch.
package audioserve

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultPort is where the clip server listens.
const DefaultPort = 8080

type Server struct {
	dir  string
	port int

	mu     sync.Mutex
	latest string
}

type ServerOption func(*Server)

func WithPort(port int) ServerOption {
	return func(s *Server) { s.port = port }
}

// NewServer stores clips under dir, creating it if needed.
func NewServer(dir string, opts ...ServerOption) (*Server, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create clip directory: %w", err)
	}

	server := &Server{dir: dir, port: DefaultPort}
	for _, opt := range opts {
		opt(server)
	}
	return server, nil
}

// Store writes a clip to disk under a fresh random name and returns that
// name. ext is the file extension without the dot, normally "mp3".
func (s *Server) Store(ctx context.Context, data []byte, ext string) (string, error) {
	_, span := tracer.Start(ctx, "store audio clip")
	defer span.End()
	span.SetAttributes(attribute.Int("clip.bytes", len(data)))

	name := fmt.Sprintf("%s.%s", uuid.NewString(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to write clip: %w", err)
	}

	s.mu.Lock()
	s.latest = name
	s.mu.Unlock()

	logger.Debug("stored audio clip", "name", name, "bytes", len(data))
	return name, nil
}

// Latest returns the name of the most recently stored clip, or "".
func (s *Server) Latest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// URL builds the address the speaker should stream name from, using this
// host's LAN-reachable IP.
func (s *Server) URL(name string) (string, error) {
	ip, err := lanIP()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%d/audio/%s", ip, s.port, name), nil
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.port)
}

// Handler serves the clip routes. Mount it on any mux or hand it straight to
// http.Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /audio/latest", s.handleLatest)
	mux.HandleFunc("GET /audio/{name}", s.handleClip)
	mux.HandleFunc("GET /status", s.handleStatus)
	return otelhttp.NewHandler(mux, "audioserve")
}

// ListenAndServe runs the clip server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{Addr: s.Addr(), Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	logger.Info("clip server listening", "addr", s.Addr(), "dir", s.dir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleClip(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name != filepath.Base(name) {
		http.Error(w, "invalid clip name", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.dir, name))
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	latest := s.Latest()
	if latest == "" {
		http.Error(w, "no audio available", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.dir, latest))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"latest": s.Latest(),
		"files":  names,
	})
}

// lanIP finds the address a device on the local network can reach us at. The
// dial never sends a packet; it only makes the kernel pick a route.
func lanIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("failed to determine LAN address: %w", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
