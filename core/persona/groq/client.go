// Package groq generates date personalities and in-character replies through
// Groq's OpenAI-compatible chat completions API. Personality generation is a
// vision request constrained by a JSON schema reflected from the Personality
// type; replies are plain chat completions.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/amielabs/amie-core/core/persona"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

const (
	defaultVisionModel = "meta-llama/llama-4-scout-17b-16e-instruct"
	defaultChatModel   = "llama-3.3-70b-versatile"
)

const personalityPrompt = "Look at the person in this photo and invent the character " +
	"you would be on a blind date with them. Decide your name, your vibe, how " +
	"interested you are in them, and your opening line."

type Client struct {
	apiKey      string
	baseURL     string
	visionModel string
	chatModel   string
	httpClient  *http.Client
}

type ClientOption func(*Client)

// WithAPIKey overrides the GROQ_API_KEY environment variable.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) { c.apiKey = apiKey }
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

func WithVisionModel(model string) ClientOption {
	return func(c *Client) { c.visionModel = model }
}

func WithChatModel(model string) ClientOption {
	return func(c *Client) { c.chatModel = model }
}

func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		baseURL:     defaultBaseURL,
		visionModel: defaultVisionModel,
		chatModel:   defaultChatModel,
		httpClient:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		apiKey, ok := os.LookupEnv("GROQ_API_KEY")
		if !ok {
			return nil, fmt.Errorf("groq api key not found")
		}
		client.apiKey = apiKey
	}
	return client, nil
}

// GeneratePersonality asks the vision model who it wants to be for the person
// in the frame. The response is schema-constrained to the Personality shape.
func (c *Client) GeneratePersonality(ctx context.Context, jpeg []byte) (*persona.Personality, error) {
	ctx, span := tracer.Start(ctx, "generate personality")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", c.visionModel))

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(persona.Personality{})

	reqBody := requestBody{
		Model:    c.visionModel,
		Messages: []message{imageMessage(personalityPrompt, jpeg)},
		ResponseFormat: &chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   "Personality",
				Schema: *schema,
				Strict: true,
			},
		},
	}

	content, err := c.complete(ctx, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Some models wrap the JSON in a code fence despite the schema.
	if split := strings.Split(content, "```"); len(split) > 1 {
		content = split[1]
	}

	var personality persona.Personality
	if err := json.Unmarshal([]byte(content), &personality); err != nil {
		err = fmt.Errorf("error unmarshalling personality: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("personality.interest", personality.Interest))
	return &personality, nil
}

// Respond continues the date in character.
func (c *Client) Respond(ctx context.Context, personality persona.Personality, history []persona.Turn, userText string) (string, error) {
	ctx, span := tracer.Start(ctx, "generate reply")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", c.chatModel))

	messages := toMessages(personality.SystemPrompt(), history)
	messages = append(messages, message{
		Role:    messageRoleUser,
		Content: userText,
	})

	content, err := c.complete(ctx, requestBody{Model: c.chatModel, Messages: messages})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (c *Client) complete(ctx context.Context, reqBody requestBody) (string, error) {
	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if errorBody, readErr := io.ReadAll(resp.Body); readErr == nil {
			logger.Warn("groq returned an error", "status", resp.Status, "body", string(errorBody))
		}
		return "", fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var responseBody responseBodyT
	if err := json.Unmarshal(respBodyBytes, &responseBody); err != nil {
		return "", fmt.Errorf("error unmarshalling response: %w", err)
	}
	if len(responseBody.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}
	return responseBody.Choices[0].Message.Content, nil
}

type requestBody struct {
	Model          string              `json:"model"`
	Messages       []message           `json:"messages"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type jsonSchemaFormat struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Schema      jsonschema.Schema `json:"schema"`
	Strict      bool              `json:"strict"`
}

type responseBodyT struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
