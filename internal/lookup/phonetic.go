package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/wordbook/pkg/models"
)

const defaultDictionaryURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// PhoneticClient looks up IPA transcriptions in a free dictionary API
type PhoneticClient struct {
	baseURL string
	client  *http.Client
}

// NewPhoneticClient creates a client. An empty baseURL selects dictionaryapi.dev.
func NewPhoneticClient(baseURL string, timeout time.Duration) *PhoneticClient {
	if baseURL == "" {
		baseURL = defaultDictionaryURL
	}
	return &PhoneticClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type dictionaryEntry struct {
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text string `json:"text"`
	} `json:"phonetics"`
}

// Transcribe returns the bracketed transcription of word, e.g. "[ˈæp.əl]"
func (p *PhoneticClient) Transcribe(ctx context.Context, word string) (string, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return "", fmt.Errorf("nothing to transcribe")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+url.PathEscape(strings.ToLower(word)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dictionary returned status %d for %q", resp.StatusCode, word)
	}

	var entries []dictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	for _, e := range entries {
		if t := models.BracketPhonetic(e.Phonetic); t != "" {
			return t, nil
		}
		for _, ph := range e.Phonetics {
			if t := models.BracketPhonetic(ph.Text); t != "" {
				return t, nil
			}
		}
	}
	return "", fmt.Errorf("no transcription found for %q", word)
}
