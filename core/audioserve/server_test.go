package audioserve

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	server, err := NewServer(t.TempDir())
	if err != nil {
		t.Fatalf("expected server to initialize, got error: %v", err)
	}
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)
	return server, httpServer
}

func TestStoredClipIsServedBack(t *testing.T) {
	server, httpServer := newTestServer(t)
	clip := []byte("fake mp3 bytes")

	name, err := server.Store(context.Background(), clip, "mp3")
	if err != nil {
		t.Fatalf("expected store to succeed, got error: %v", err)
	}
	if !strings.HasSuffix(name, ".mp3") {
		t.Fatalf("expected the extension preserved, got %q", name)
	}

	resp, err := http.Get(httpServer.URL + "/audio/" + name)
	if err != nil {
		t.Fatalf("expected the clip fetchable, got error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for a stored clip, got %d", resp.StatusCode)
	}
	served, _ := io.ReadAll(resp.Body)
	if string(served) != string(clip) {
		t.Fatalf("served bytes diverged from stored bytes")
	}
}

func TestEachStoreGetsAFreshName(t *testing.T) {
	server, _ := newTestServer(t)

	first, err := server.Store(context.Background(), []byte("one"), "mp3")
	if err != nil {
		t.Fatalf("expected store to succeed, got error: %v", err)
	}
	second, err := server.Store(context.Background(), []byte("two"), "mp3")
	if err != nil {
		t.Fatalf("expected store to succeed, got error: %v", err)
	}
	if first == second {
		t.Fatalf("expected unique clip names, both were %q", first)
	}
	if server.Latest() != second {
		t.Fatalf("expected latest to track the newest clip, got %q", server.Latest())
	}
}

func TestLatestRouteServesNewestClip(t *testing.T) {
	server, httpServer := newTestServer(t)

	resp, err := http.Get(httpServer.URL + "/audio/latest")
	if err != nil {
		t.Fatalf("expected the request to complete, got error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before any clip exists, got %d", resp.StatusCode)
	}

	if _, err := server.Store(context.Background(), []byte("newest"), "mp3"); err != nil {
		t.Fatalf("expected store to succeed, got error: %v", err)
	}

	resp, err = http.Get(httpServer.URL + "/audio/latest")
	if err != nil {
		t.Fatalf("expected the request to complete, got error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "newest" {
		t.Fatalf("expected the newest clip served, got %q", body)
	}
}

func TestStatusListsStoredClips(t *testing.T) {
	server, httpServer := newTestServer(t)

	name, err := server.Store(context.Background(), []byte("clip"), "mp3")
	if err != nil {
		t.Fatalf("expected store to succeed, got error: %v", err)
	}

	resp, err := http.Get(httpServer.URL + "/status")
	if err != nil {
		t.Fatalf("expected status to respond, got error: %v", err)
	}
	defer resp.Body.Close()

	var status struct {
		Latest string   `json:"latest"`
		Files  []string `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("expected a JSON status body, got error: %v", err)
	}
	if status.Latest != name {
		t.Fatalf("expected latest %q, got %q", name, status.Latest)
	}
	if len(status.Files) != 1 || status.Files[0] != name {
		t.Fatalf("expected the stored clip listed, got %v", status.Files)
	}
}

func TestClipNameCannotEscapeDirectory(t *testing.T) {
	_, httpServer := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, httpServer.URL+"/audio/..%2Fsecret", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("expected the request to complete, got error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatal("expected a traversal attempt rejected")
	}
}
