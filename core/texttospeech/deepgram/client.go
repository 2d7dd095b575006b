// Package deepgram synthesizes speech clips through Deepgram's /v1/speak
// websocket. One Synthesize call opens a socket, streams the text through,
// and collects the binary audio frames until Deepgram confirms the flush.
package deepgram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/amielabs/amie-core/core/texttospeech"
)

type TextToSpeechClient struct {
	voice  deepgramVoice
	apiKey string
}

type ClientOption func(*TextToSpeechClient)

// WithAPIKey overrides the DEEPGRAM_API_KEY environment variable.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *TextToSpeechClient) { c.apiKey = apiKey }
}

func NewTextToSpeechClient(voice deepgramVoice, opts ...ClientOption) (*TextToSpeechClient, error) {
	if voice == "" {
		voice = defaultVoice
	}
	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice %q", voice)
	}

	client := &TextToSpeechClient{voice: voice}
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

func (c *TextToSpeechClient) SetVoice(voice deepgramVoice) error {
	if !slices.Contains(GetAvailableVoices(), voice) {
		return fmt.Errorf("invalid voice %q", voice)
	}
	c.voice = voice
	return nil
}

// Synthesize produces one MP3 clip for text. It blocks until Deepgram has
// flushed all audio for the utterance or ctx is cancelled.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) ([]byte, error) {
	options := texttospeech.SynthesisOptions{
		AudioCallback: func([]byte) {},
		ErrorCallback: func(error) {},
	}
	for _, opt := range opts {
		opt(&options)
	}

	conn, err := c.connectWebsocket(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open websocket: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(speakMsg(text)); err != nil {
		return nil, fmt.Errorf("failed to send text to deepgram: %w", err)
	}
	if err := conn.WriteJSON(flushMsg); err != nil {
		return nil, fmt.Errorf("failed to flush deepgram buffer: %w", err)
	}

	clip, err := collectUntilFlushed(ctx, conn, options.AudioCallback)
	if err != nil {
		options.ErrorCallback(err)
		return nil, err
	}

	// Best effort goodbye; the deferred close tears the socket down anyway.
	_ = conn.WriteJSON(closeMsg)
	return clip, nil
}

func (c *TextToSpeechClient) connectWebsocket(ctx context.Context) (*websocket.Conn, error) {
	urlValues := url.Values{}
	urlValues.Set("model", string(c.voice))
	urlValues.Set("encoding", "mp3")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx,
		(&url.URL{
			Scheme: "wss",
			Host:   "api.deepgram.com", Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}
