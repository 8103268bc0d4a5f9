// Package lookup provides the translation and phonetic transcription
// services used to fill in new word records.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultChatURL = "https://api.openai.com/v1/chat/completions"

// Translator translates short texts with the OpenAI chat completion API
type Translator struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewTranslator creates a translator. An empty apiURL selects the public endpoint.
func NewTranslator(apiKey, model, apiURL string, timeout time.Duration) (*Translator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if apiURL == "" {
		apiURL = defaultChatURL
	}
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &Translator{
		apiKey:      apiKey,
		apiURL:      apiURL,
		model:       model,
		maxTokens:   60,
		temperature: 0.2,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

// Message is one message of a chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body sent to the chat completion endpoint
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse is the subset of the chat completion response we read
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Translate returns text rendered in the target language (e.g. "zh-TW")
func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to translate")
	}

	request := ChatRequest{
		Model: t.model,
		Messages: []Message{
			{Role: "system", Content: "You are a dictionary. Reply with the shortest common translation of the given English word or phrase, nothing else."},
			{Role: "user", Content: fmt.Sprintf("Translate into %s: %s", languageName(targetLanguage), text)},
		},
		MaxTokens:   t.maxTokens,
		Temperature: t.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(requestData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	translation := strings.Trim(strings.TrimSpace(response.Choices[0].Message.Content), "\"“”")
	if translation == "" {
		return "", fmt.Errorf("empty translation for %q", text)
	}
	return translation, nil
}

func languageName(code string) string {
	switch strings.ToLower(code) {
	case "zh-tw", "zh-hant":
		return "Traditional Chinese"
	case "zh-cn", "zh-hans", "zh":
		return "Simplified Chinese"
	case "":
		return "Traditional Chinese"
	default:
		return code
	}
}
