package deepgram

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type websocketMessage struct {
	Type string `json:"type"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	closeMsg = websocketMessage{Type: "Close"}

	speakMsg = func(text string) struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} {
		return struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "Speak", Text: text}
	}
)

// collectUntilFlushed accumulates binary frames until the Flushed
// confirmation, which marks the audio for everything sent before the flush as
// complete. Control frames other than Flushed are ignored.
func collectUntilFlushed(ctx context.Context, conn *websocket.Conn, onAudio func([]byte)) ([]byte, error) {
	var clip []byte
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("websocket read failed before flush confirmation: %w", err)
		}

		switch msgType {
		case websocket.BinaryMessage:
			if len(msg) > 0 {
				clip = append(clip, msg...)
				onAudio(msg)
			}
		case websocket.TextMessage:
			var parsedMsg websocketMessage
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				continue
			}
			switch parsedMsg.Type {
			case "Flushed":
				return clip, nil
			case "Warning":
				logger.Warn("deepgram warning during synthesis", "message", string(msg))
			}
		}
	}
}
