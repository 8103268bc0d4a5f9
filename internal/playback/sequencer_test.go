package playback

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/wordbook/internal/speech"
	"github.com/example/wordbook/pkg/models"
)

type recordingSpeaker struct {
	mu   sync.Mutex
	reqs []speech.Request
	fail bool
}

func (r *recordingSpeaker) Synthesize(ctx context.Context, req speech.Request) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	if r.fail {
		return nil, errors.New("tts down")
	}
	return nil, nil
}

func (r *recordingSpeaker) requests() []speech.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]speech.Request(nil), r.reqs...)
}

type recordingOutput struct {
	steps  []Step
	onShow func(Step)
}

func (o *recordingOutput) Show(step Step) {
	o.steps = append(o.steps, step)
	if o.onShow != nil {
		o.onShow(step)
	}
}

func (o *recordingOutput) Speak(Step, []byte) {}

func sampleSet() []models.WordRecord {
	return []models.WordRecord{
		{Owner: "amy", Notebook: "Default", Headword: "apple", Translation: "蘋果"},
		{Owner: "amy", Notebook: "Default", Headword: "banana", Translation: "香蕉"},
		{Owner: "amy", Notebook: "Default", Headword: "cherry", Translation: "櫻桃"},
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Dwell = time.Millisecond
	return opts
}

func TestStartPlaysEveryTokenInOrder(t *testing.T) {
	speaker := &recordingSpeaker{}
	out := &recordingOutput{}
	seq := NewSequencer(speaker, out, testOptions(), rand.New(rand.NewSource(3)))

	order := []models.PlaybackToken{models.TokenHeadword, models.TokenTranslation}
	rep, err := seq.Start(context.Background(), sampleSet(), order)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rep.Steps != 6 || rep.Words != 3 || rep.Interrupted {
		t.Fatalf("unexpected report %+v", rep)
	}

	reqs := speaker.requests()
	if len(reqs) != 6 {
		t.Fatalf("expected 6 speech requests, got %d", len(reqs))
	}
	translations := map[string]string{}
	for _, w := range sampleSet() {
		translations[w.Headword] = w.Translation
	}
	seen := map[string]bool{}
	for i := 0; i < len(reqs); i += 2 {
		head, trans := reqs[i], reqs[i+1]
		if head.Language != "en-US" || trans.Language != "zh-TW" {
			t.Fatalf("pair %d languages %q/%q", i/2, head.Language, trans.Language)
		}
		if translations[head.Text] != trans.Text {
			t.Fatalf("pair %d: %q followed by %q", i/2, head.Text, trans.Text)
		}
		seen[head.Text] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected every word once, saw %v", seen)
	}
	for i, step := range out.steps {
		if step.Index != i+1 {
			t.Fatalf("step %d has index %d", i, step.Index)
		}
	}
}

func TestStepWithoutTextIsSpokenAsSilence(t *testing.T) {
	speaker := &recordingSpeaker{}
	out := &recordingOutput{}
	seq := NewSequencer(speaker, out, testOptions(), rand.New(rand.NewSource(5)))

	set := sampleSet()
	set[1].Translation = ""
	order := []models.PlaybackToken{models.TokenHeadword, models.TokenTranslation}
	rep, err := seq.Start(context.Background(), set, order)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rep.Steps != 6 || len(out.steps) != 6 {
		t.Fatalf("unexpected report %+v (shown %d)", rep, len(out.steps))
	}

	reqs := speaker.requests()
	if len(reqs) != 6 {
		t.Fatalf("expected one speech request per step, got %d", len(reqs))
	}
	silent := 0
	for i, r := range reqs {
		if r.Text != "" {
			continue
		}
		silent++
		if r.Pause <= 0 {
			t.Fatalf("request %d has neither text nor pause", i)
		}
		if out.steps[i].Word.Headword != "banana" || out.steps[i].Token != models.TokenTranslation {
			t.Fatalf("silence issued for the wrong step %+v", out.steps[i])
		}
	}
	if silent != 1 {
		t.Fatalf("expected 1 silent request, got %d", silent)
	}
}

func TestStopAfterThirdStep(t *testing.T) {
	speaker := &recordingSpeaker{}
	out := &recordingOutput{}
	seq := NewSequencer(speaker, out, testOptions(), rand.New(rand.NewSource(1)))
	out.onShow = func(step Step) {
		if step.Index == 3 {
			seq.Stop()
		}
	}

	order := []models.PlaybackToken{models.TokenHeadword, models.TokenTranslation}
	rep, err := seq.Start(context.Background(), sampleSet(), order)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !rep.Interrupted || rep.Steps != 3 {
		t.Fatalf("expected interruption after 3 steps, got %+v", rep)
	}
	if len(out.steps) != 3 {
		t.Fatalf("step 4 was emitted: %d steps shown", len(out.steps))
	}
	if seq.Running() {
		t.Fatal("sequencer still running after stop")
	}
}

func TestStopDuringDwell(t *testing.T) {
	opts := testOptions()
	opts.Dwell = time.Hour
	seq := NewSequencer(speech.Mute{}, &recordingOutput{}, opts, rand.New(rand.NewSource(1)))

	done := make(chan Report, 1)
	go func() {
		rep, _ := seq.Start(context.Background(), sampleSet(), []models.PlaybackToken{models.TokenHeadword})
		done <- rep
	}()

	deadline := time.Now().Add(time.Second)
	for !seq.Running() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	seq.Stop()

	select {
	case rep := <-done:
		if !rep.Interrupted || rep.Steps != 1 {
			t.Fatalf("unexpected report %+v", rep)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not cut the dwell short")
	}
}

func TestStartRejectsEmptyInput(t *testing.T) {
	seq := NewSequencer(speech.Mute{}, &recordingOutput{}, testOptions(), rand.New(rand.NewSource(1)))

	if _, err := seq.Start(context.Background(), sampleSet(), nil); !errors.Is(err, ErrNoPlaybackOrder) {
		t.Fatalf("expected ErrNoPlaybackOrder, got %v", err)
	}
	if _, err := seq.Start(context.Background(), nil, []models.PlaybackToken{models.TokenHeadword}); !errors.Is(err, models.ErrNoMaterial) {
		t.Fatalf("expected ErrNoMaterial, got %v", err)
	}
}

func TestSpeechFailureDoesNotStopRun(t *testing.T) {
	speaker := &recordingSpeaker{fail: true}
	seq := NewSequencer(speaker, &recordingOutput{}, testOptions(), rand.New(rand.NewSource(1)))

	rep, err := seq.Start(context.Background(), sampleSet(), []models.PlaybackToken{models.TokenHeadword})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rep.Steps != 3 || rep.Interrupted {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestSecondStartWhileRunning(t *testing.T) {
	opts := testOptions()
	opts.Dwell = time.Hour
	seq := NewSequencer(speech.Mute{}, &recordingOutput{}, opts, rand.New(rand.NewSource(1)))

	go seq.Start(context.Background(), sampleSet(), []models.PlaybackToken{models.TokenHeadword})
	deadline := time.Now().Add(time.Second)
	for !seq.Running() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	defer seq.Stop()

	if _, err := seq.Start(context.Background(), sampleSet(), []models.PlaybackToken{models.TokenHeadword}); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestCompileScript(t *testing.T) {
	speaker := &recordingSpeaker{}
	seq := NewSequencer(speaker, &recordingOutput{}, testOptions(), rand.New(rand.NewSource(1)))

	order := []models.PlaybackToken{models.TokenHeadword, models.TokenTranslation}
	asset, err := seq.Compile(context.Background(), sampleSet()[:1], order)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if asset.Items != 1 {
		t.Fatalf("expected 1 item, got %d", asset.Items)
	}

	var script []string
	for _, r := range speaker.requests() {
		if r.Text == "" {
			script = append(script, fmt.Sprintf("pause:%s", r.Pause))
			continue
		}
		script = append(script, r.Text)
	}
	want := "Item 1|pause:800ms|apple|pause:800ms|蘋果|pause:1.5s"
	if got := strings.Join(script, "|"); got != want {
		t.Fatalf("script = %s, want %s", got, want)
	}
}

func TestCompileCapsItemsAndDefaultsOrder(t *testing.T) {
	speaker := &recordingSpeaker{}
	opts := testOptions()
	opts.MaxCompileItems = 2
	seq := NewSequencer(speaker, &recordingOutput{}, opts, rand.New(rand.NewSource(1)))

	asset, err := seq.Compile(context.Background(), sampleSet(), nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if asset.Items != 2 {
		t.Fatalf("expected cap of 2 items, got %d", asset.Items)
	}
	var words []string
	for _, r := range speaker.requests() {
		if r.Text != "" && !strings.HasPrefix(r.Text, "Item ") {
			words = append(words, r.Text)
		}
	}
	if strings.Join(words, ",") != "apple,banana" {
		t.Fatalf("expected headwords in set order, got %v", words)
	}
}

func TestCompileFailsOnSynthesisError(t *testing.T) {
	seq := NewSequencer(&recordingSpeaker{fail: true}, &recordingOutput{}, testOptions(), rand.New(rand.NewSource(1)))
	if _, err := seq.Compile(context.Background(), sampleSet(), nil); err == nil {
		t.Fatal("expected compile error")
	}
	if _, err := seq.Compile(context.Background(), nil, nil); !errors.Is(err, models.ErrNoMaterial) {
		t.Fatalf("expected ErrNoMaterial, got %v", err)
	}
}
