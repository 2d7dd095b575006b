package devicelink

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSendImageThreePhaseHandshake(t *testing.T) {
	transport := &fakeTransport{reads: [][]byte{
		[]byte("{\"status\":\"ready\"}\n"),
		[]byte("{\"status\":\"ok\"}\n"),
	}}
	session := NewSession(transport)
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}

	resp, err := session.SendImage(context.Background(), jpeg)
	if err != nil {
		t.Fatalf("expected transfer to succeed, got error: %v", err)
	}
	if resp.Status() != StatusOK {
		t.Fatalf("expected ok verdict, got %q", resp.Status())
	}

	transport.mu.Lock()
	writes := transport.writes
	transport.mu.Unlock()
	if len(writes) != 2 {
		t.Fatalf("expected announcement plus payload, got %d writes", len(writes))
	}
	announce := string(writes[0])
	if !strings.Contains(announce, "\"cmd\":\"image\"") || !strings.Contains(announce, "\"len\":6") {
		t.Fatalf("unexpected announcement line: %q", announce)
	}
	if !bytes.Equal(writes[1], jpeg) {
		t.Fatalf("payload must be streamed raw and unframed, got %v", writes[1])
	}
}

func TestSendImageShortCircuitsWhenDeviceNotReady(t *testing.T) {
	transport := &fakeTransport{reads: [][]byte{
		[]byte("{\"status\":\"error\",\"detail\":\"busy\"}\n"),
	}}
	session := NewSession(transport)

	resp, err := session.SendImage(context.Background(), []byte{0xff, 0xd8})
	if err != nil {
		t.Fatalf("a busy device is a response, not an error, got: %v", err)
	}
	if resp.Status() != StatusError {
		t.Fatalf("expected the busy reply surfaced, got %v", resp)
	}

	transport.mu.Lock()
	writes := len(transport.writes)
	transport.mu.Unlock()
	if writes != 1 {
		t.Fatalf("not a single payload byte may follow a refusal, got %d writes", writes)
	}
}

func TestSendImageZeroLengthSkipsPayloadPhase(t *testing.T) {
	transport := &fakeTransport{reads: [][]byte{
		[]byte("{\"status\":\"ready\"}\n"),
		[]byte("{\"status\":\"ok\"}\n"),
	}}
	session := NewSession(transport)

	resp, err := session.SendImage(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected an empty transfer to succeed, got error: %v", err)
	}
	if resp.Status() != StatusOK {
		t.Fatalf("expected ok verdict, got %v", resp)
	}

	transport.mu.Lock()
	writes := len(transport.writes)
	transport.mu.Unlock()
	if writes != 1 {
		t.Fatalf("expected only the announcement written for len 0, got %d writes", writes)
	}
}

func TestSendImageReadyTimeoutSurfacesSentinel(t *testing.T) {
	session := NewSession(&fakeTransport{}, WithReadyTimeout(20*time.Millisecond))

	resp, err := session.SendImage(context.Background(), []byte{0xff})
	if err != nil {
		t.Fatalf("a silent device is a timeout, not an error, got: %v", err)
	}
	if !resp.IsTimeout() {
		t.Fatalf("expected the timeout sentinel, got %v", resp)
	}
}

func TestDeviceRoundsMouthOpenness(t *testing.T) {
	transport := &fakeTransport{}
	device := NewDevice(NewSession(transport))

	if err := device.NotifyMouth(0.23456); err != nil {
		t.Fatalf("expected notify to succeed, got error: %v", err)
	}
	if err := device.NotifyMouth(1.7); err != nil {
		t.Fatalf("expected notify to succeed, got error: %v", err)
	}
	if err := device.NotifyMouth(-0.4); err != nil {
		t.Fatalf("expected notify to succeed, got error: %v", err)
	}

	writes := transport.writtenLines(t)
	if len(writes) != 3 {
		t.Fatalf("expected three writes, got %d", len(writes))
	}
	if !strings.Contains(writes[0], "\"open\":0.23") {
		t.Fatalf("expected openness rounded to two decimals, got %q", writes[0])
	}
	if !strings.Contains(writes[1], "\"open\":1") {
		t.Fatalf("expected openness clamped to 1, got %q", writes[1])
	}
	if !strings.Contains(writes[2], "\"open\":0") {
		t.Fatalf("expected openness clamped to 0, got %q", writes[2])
	}
}
