// Package persona models who the robot is on a given date. A personality is
// generated once from the first camera frame and then stays fixed for the
// conversation; its interest score drives the physical affection signals.
package persona

import (
	"context"
	"fmt"
	"strings"
)

// Personality is the structured output the vision model must produce. The
// jsonschema tags become the response schema sent with the request, so the
// model is constrained to exactly this shape.
type Personality struct {
	Name string `json:"name" jsonschema:"description=First name this character goes by"`
	Vibe string `json:"vibe" jsonschema:"description=One or two sentences describing personality and mood"`
	// Interest is how taken the character is with the person in frame.
	Interest int    `json:"interest" jsonschema:"minimum=0,maximum=10,description=Romantic interest from 0 (none) to 10 (smitten)"`
	Starter  string `json:"starter" jsonschema:"description=The opening line this character says first"`
}

// Love maps the 0-10 interest score onto the 0-1 range the device's heart
// animation expects.
func (p Personality) Love() float64 {
	interest := p.Interest
	if interest < 0 {
		interest = 0
	}
	if interest > 10 {
		interest = 10
	}
	return float64(interest) / 10
}

// SystemPrompt renders the personality as conversation instructions.
func (p Personality) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, on a first date with the person you are talking to. ", p.Name)
	fmt.Fprintf(&b, "Your personality: %s ", p.Vibe)
	fmt.Fprintf(&b, "Your romantic interest in them is %d out of 10; let it color your tone without stating it. ", p.Interest)
	b.WriteString("Keep replies short and conversational, one to three sentences, no stage directions.")
	return b.String()
}

// Turn is one completed exchange of the date conversation.
type Turn struct {
	User      string
	Assistant string
}

// Generator produces a personality from a camera frame.
type Generator interface {
	GeneratePersonality(ctx context.Context, jpeg []byte) (*Personality, error)
}

// Responder continues the conversation in character.
type Responder interface {
	Respond(ctx context.Context, personality Personality, history []Turn, userText string) (string, error)
}
