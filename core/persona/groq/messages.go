package groq

import (
	"encoding/base64"

	"github.com/jinzhu/copier"

	"github.com/amielabs/amie-core/core/persona"
)

type message struct {
	Role messageRole `json:"role"`
	// Content is a plain string for text messages or a list of content parts
	// for vision messages.
	Content any `json:"content"`
}

type messageRole string

const (
	messageRoleSystem    messageRole = "system"
	messageRoleUser      messageRole = "user"
	messageRoleAssistant messageRole = "assistant"
)

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// historyTurn is the wire-side copy of a conversation turn, kept separate so
// the public persona types never grow transport concerns.
type historyTurn struct {
	User      string
	Assistant string
}

func toMessages(instructions string, history []persona.Turn) []message {
	messages := []message{}
	if instructions != "" {
		messages = append(messages, message{
			Role:    messageRoleSystem,
			Content: instructions,
		})
	}

	var turns []historyTurn
	if err := copier.Copy(&turns, history); err != nil {
		logger.Warn("failed to copy conversation history", "error", err)
	}

	for _, turn := range turns {
		if turn.User != "" {
			messages = append(messages, message{
				Role:    messageRoleUser,
				Content: turn.User,
			})
		}
		if turn.Assistant != "" {
			messages = append(messages, message{
				Role:    messageRoleAssistant,
				Content: turn.Assistant,
			})
		}
	}
	return messages
}

func imageMessage(prompt string, jpeg []byte) message {
	return message{
		Role: messageRoleUser,
		Content: []contentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &imageURL{
				URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg),
			}},
		},
	}
}
