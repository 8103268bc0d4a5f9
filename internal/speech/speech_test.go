package speech

import (
	"context"
	"strings"
	"testing"
	"time"

	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

func TestSynthesizeRejectsOversizedText(t *testing.T) {
	g := &GoogleSynthesizer{}
	_, err := g.Synthesize(context.Background(), Request{Text: strings.Repeat("a", maxInputBytes+1), Language: "en-US"})
	if err == nil || !strings.Contains(err.Error(), "limit") {
		t.Fatalf("expected a size error, got %v", err)
	}
	if _, err := g.Synthesize(context.Background(), Request{Language: "en-US"}); err == nil {
		t.Fatalf("expected an error for empty text")
	}
}

func TestBuildRequestPicksVoiceAndSpeed(t *testing.T) {
	g := &GoogleSynthesizer{
		voices: map[string]string{"en-US": "en-US-Neural2-C", "zh-TW": "cmn-TW-Wavenet-A"},
		speed:  0.8,
	}

	req := g.buildRequest(Request{Text: "apple", Language: "en-US"})
	if req.Voice.Name != "en-US-Neural2-C" || req.Voice.LanguageCode != "en-US" {
		t.Fatalf("unexpected voice %+v", req.Voice)
	}
	if req.AudioConfig.SpeakingRate != 0.8 {
		t.Fatalf("expected the configured speed, got %v", req.AudioConfig.SpeakingRate)
	}
	if req.AudioConfig.AudioEncoding != texttospeechpb.AudioEncoding_MP3 {
		t.Fatalf("expected MP3 output")
	}

	req = g.buildRequest(Request{Text: "蘋果", Language: "zh-TW", Voice: "custom", Speed: 1.2})
	if req.Voice.Name != "custom" || req.AudioConfig.SpeakingRate != 1.2 {
		t.Fatalf("request overrides ignored: %+v %+v", req.Voice, req.AudioConfig)
	}
}

func TestBuildRequestPauseUsesSSML(t *testing.T) {
	g := &GoogleSynthesizer{}
	req := g.buildRequest(Request{Language: "en-US", Pause: 1500 * time.Millisecond})
	ssml, ok := req.Input.InputSource.(*texttospeechpb.SynthesisInput_Ssml)
	if !ok {
		t.Fatalf("expected SSML input, got %T", req.Input.InputSource)
	}
	if ssml.Ssml != `<speak><break time="1500ms"/></speak>` {
		t.Fatalf("unexpected SSML %q", ssml.Ssml)
	}
}

func TestObjectName(t *testing.T) {
	at := time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)
	if got := ObjectName("Travel Words", at); got != "audio/travel-words-20240309-083000.mp3" {
		t.Fatalf("unexpected object name %q", got)
	}
	if got := ObjectName("!!!", at); got != "audio/notebook-20240309-083000.mp3" {
		t.Fatalf("unexpected object name %q", got)
	}
}

func TestDurationOfEmptyAudio(t *testing.T) {
	d, err := Duration(nil)
	if err != nil || d != 0 {
		t.Fatalf("expected zero duration, got %v, %v", d, err)
	}
}

func TestMuteProducesNoAudio(t *testing.T) {
	audio, err := Mute{}.Synthesize(context.Background(), Request{Text: "apple"})
	if err != nil || len(audio) != 0 {
		t.Fatalf("expected silence, got %d bytes, %v", len(audio), err)
	}
}
