// Package deepgram streams push-to-talk audio to Deepgram's /v1/listen
// websocket and hands finalized transcripts back through callbacks.
package deepgram

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type TranscriptionClient struct {
	apiKey string

	conn   *websocket.Conn
	connMu sync.Mutex

	transcriptMu          sync.Mutex
	accumulatedTranscript string
	unendedSegment        bool

	lastMsgTs time.Time
}

type ClientOption func(*TranscriptionClient)

// WithAPIKey overrides the DEEPGRAM_API_KEY environment variable.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *TranscriptionClient) { c.apiKey = apiKey }
}

func NewTranscriptionClient(opts ...ClientOption) (*TranscriptionClient, error) {
	client := &TranscriptionClient{}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
		if !ok {
			return nil, fmt.Errorf("deepgram api key not found")
		}
		client.apiKey = apiKey
	}
	return client, nil
}
