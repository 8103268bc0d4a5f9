package speech

import (
	"context"
	"errors"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// maxInputBytes stays under the 5000 byte input limit of the API. Each request
// carries a single headword, translation or pause.
const maxInputBytes = 4500

// GoogleSynthesizer uses Google Cloud Text-to-Speech
type GoogleSynthesizer struct {
	client *texttospeech.Client
	voices map[string]string
	speed  float64
}

// NewGoogleSynthesizer creates a client authenticated with the credentials file at credPath.
// voices maps language codes to voice names.
func NewGoogleSynthesizer(ctx context.Context, credPath string, voices map[string]string, speed float64) (*GoogleSynthesizer, error) {
	if credPath == "" {
		return nil, errors.New("GOOGLE_CREDENTIALS_JSON environment variable is not set")
	}
	client, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(credPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %v", err)
	}
	return &GoogleSynthesizer{client: client, voices: voices, speed: speed}, nil
}

// Close releases the underlying client
func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}

// Synthesize returns MP3 audio for req in a single API call
func (g *GoogleSynthesizer) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if req.Text == "" && req.Pause <= 0 {
		return nil, errors.New("text is empty")
	}
	if len(req.Text) > maxInputBytes {
		return nil, fmt.Errorf("text is %d bytes, the limit is %d", len(req.Text), maxInputBytes)
	}

	resp, err := g.client.SynthesizeSpeech(ctx, g.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %v", err)
	}
	return resp.AudioContent, nil
}

func (g *GoogleSynthesizer) buildRequest(req Request) *texttospeechpb.SynthesizeSpeechRequest {
	voice := req.Voice
	if voice == "" {
		voice = g.voices[req.Language]
	}
	speed := req.Speed
	if speed <= 0 {
		speed = g.speed
	}
	if speed <= 0 {
		speed = 1.0
	}

	input := &texttospeechpb.SynthesisInput{
		InputSource: &texttospeechpb.SynthesisInput_Text{Text: req.Text},
	}
	if req.Text == "" {
		input = &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Ssml{Ssml: pauseSSML(req)},
		}
	}

	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: input,
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: req.Language,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  speed,
		},
	}
}

func pauseSSML(req Request) string {
	return fmt.Sprintf(`<speak><break time="%dms"/></speak>`, req.Pause.Milliseconds())
}
