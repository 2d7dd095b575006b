package playback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordedRequest struct {
	path string
	body map[string]any
}

func newSpeakerStub(t *testing.T, status int) (*httptest.Server, *[]recordedRequest, *sync.Mutex) {
	t.Helper()

	var mu sync.Mutex
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&body)
		}
		mu.Lock()
		requests = append(requests, recordedRequest{path: r.URL.Path, body: body})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &requests, &mu
}

func TestPlaySendsURLAndFormat(t *testing.T) {
	server, requests, mu := newSpeakerStub(t, http.StatusOK)
	client := NewClientURL(server.URL)

	err := client.Play(context.Background(), "http://host:8081/audio/clip.mp3", "mp3")
	if err != nil {
		t.Fatalf("expected play to succeed, got error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(*requests) != 1 {
		t.Fatalf("expected one request, got %d", len(*requests))
	}
	got := (*requests)[0]
	if got.path != "/play" {
		t.Fatalf("expected the /play endpoint, got %q", got.path)
	}
	if got.body["url"] != "http://host:8081/audio/clip.mp3" || got.body["format"] != "mp3" {
		t.Fatalf("unexpected play body: %v", got.body)
	}
}

func TestStopPostsWithoutBody(t *testing.T) {
	server, requests, mu := newSpeakerStub(t, http.StatusOK)
	client := NewClientURL(server.URL)

	if err := client.Stop(context.Background()); err != nil {
		t.Fatalf("expected stop to succeed, got error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(*requests) != 1 || (*requests)[0].path != "/stop" {
		t.Fatalf("expected one request to /stop, got %v", *requests)
	}
}

func TestSetVolumeSendsLevel(t *testing.T) {
	server, requests, mu := newSpeakerStub(t, http.StatusOK)
	client := NewClientURL(server.URL)

	if err := client.SetVolume(context.Background(), 70); err != nil {
		t.Fatalf("expected volume change to succeed, got error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(*requests) != 1 || (*requests)[0].path != "/volume" {
		t.Fatalf("expected one request to /volume, got %v", *requests)
	}
	if level, ok := (*requests)[0].body["level"].(float64); !ok || level != 70 {
		t.Fatalf("unexpected volume body: %v", (*requests)[0].body)
	}
}

func TestErrorStatusSurfacesAsError(t *testing.T) {
	server, _, _ := newSpeakerStub(t, http.StatusServiceUnavailable)
	client := NewClientURL(server.URL)

	if err := client.Play(context.Background(), "http://host/audio/clip.mp3", "mp3"); err == nil {
		t.Fatal("expected a rejected request to surface as an error")
	}
}
