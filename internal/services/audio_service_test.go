// internal/services/audio_service_test.go
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/scriptecho/scriptreader/internal/errors"
	"github.com/scriptecho/scriptreader/internal/models"
	ttscanned "github.com/scriptecho/scriptreader/internal/tts/providers/canned"
)

func audioTestDoc() *models.ScriptDocument {
	return &models.ScriptDocument{
		Name: "sample",
		Dialogues: []models.DialogueLine{
			{Character: "JOHN", Text: "Line one.", SceneID: 1, Emotion: models.EmotionNeutral},
			{Character: "SARAH", Text: "Line two.", SceneID: 1, Emotion: models.EmotionHappy},
			{Character: "JOHN", Text: "Line three.", SceneID: 2, Emotion: models.EmotionSad},
			{Character: "MILLER", Text: "Line four.", SceneID: 2, Emotion: models.EmotionNeutral},
			{Character: "SARAH", Text: "Line five.", SceneID: 2, Emotion: models.EmotionAngry},
		},
	}
}

func TestGenerateLineCachesClip(t *testing.T) {
	synth := ttscanned.New()
	voices := NewVoiceStore()
	audio := NewAudioService(synth, voices)
	doc := audioTestDoc()

	clip, err := audio.GenerateLine(context.Background(), doc, 0)
	if err != nil {
		t.Fatalf("GenerateLine failed: %v", err)
	}
	if clip.Key != "JOHN_0" {
		t.Errorf("unexpected clip key: %q", clip.Key)
	}
	if clip.URL == "" {
		t.Error("clip locator missing")
	}

	// Second request for the same line must come from the cache.
	again, err := audio.GenerateLine(context.Background(), doc, 0)
	if err != nil {
		t.Fatalf("cached GenerateLine failed: %v", err)
	}
	if synth.CallCount() != 1 {
		t.Errorf("expected 1 synthesis call, got %d", synth.CallCount())
	}
	if again.URL != clip.URL {
		t.Errorf("cache returned different clip: %q vs %q", again.URL, clip.URL)
	}
}

func TestGenerateLineValidation(t *testing.T) {
	audio := NewAudioService(ttscanned.New(), NewVoiceStore())

	if _, err := audio.GenerateLine(context.Background(), nil, 0); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Errorf("nil document should be invalid state, got %v", err)
	}

	doc := audioTestDoc()
	if _, err := audio.GenerateLine(context.Background(), doc, 99); err == nil {
		t.Error("out-of-range index should fail")
	}
}

func TestGenerateAllSkipsCachedClips(t *testing.T) {
	synth := ttscanned.New()
	voices := NewVoiceStore()
	audio := NewAudioService(synth, voices)
	doc := audioTestDoc()

	// Two lines already have clips from an earlier run.
	audio.ReplaceClips(map[string]models.AudioClip{
		ClipKey("JOHN", 0):  {Key: ClipKey("JOHN", 0), URL: "cached-0", CreatedAt: time.Now()},
		ClipKey("SARAH", 1): {Key: ClipKey("SARAH", 1), URL: "cached-1", CreatedAt: time.Now()},
	})

	summary, err := audio.GenerateAll(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}

	if synth.CallCount() != 3 {
		t.Errorf("expected exactly 3 synthesis calls, got %d", synth.CallCount())
	}
	if summary.Skipped != 2 || summary.Generated != 3 || summary.Failed != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.Cancelled {
		t.Error("summary should not report cancellation")
	}
}

func TestGenerateAllContinuesPastFailures(t *testing.T) {
	synth := ttscanned.New()
	synth.FailFor["SARAH"] = true

	audio := NewAudioService(synth, NewVoiceStore())
	doc := audioTestDoc()

	summary, err := audio.GenerateAll(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}

	if summary.Generated != 3 {
		t.Errorf("expected 3 generated lines, got %d", summary.Generated)
	}
	if summary.Failed != 2 {
		t.Errorf("expected 2 failed lines, got %d", summary.Failed)
	}
	if len(summary.Failures) != 2 {
		t.Fatalf("expected 2 failure records, got %d", len(summary.Failures))
	}
	if summary.Failures[0].Key != ClipKey("SARAH", 1) {
		t.Errorf("unexpected first failure key: %q", summary.Failures[0].Key)
	}
}

func TestGenerateAllObservesCancellation(t *testing.T) {
	synth := ttscanned.New()
	audio := NewAudioService(synth, NewVoiceStore())
	doc := audioTestDoc()

	progress := NewProgressService()
	tracker := progress.CreateTracker("batch-1")
	tracker.Cancel()

	summary, err := audio.GenerateAll(context.Background(), doc, tracker)
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}

	if !summary.Cancelled {
		t.Error("summary should report cancellation")
	}
	if synth.CallCount() != 0 {
		t.Errorf("cancelled batch should not synthesize, got %d calls", synth.CallCount())
	}
}

func TestGenerateAllProgressMessagesMatchOutcome(t *testing.T) {
	synth := ttscanned.New()
	synth.FailFor["SARAH"] = true

	audio := NewAudioService(synth, NewVoiceStore())
	doc := audioTestDoc()

	// Line 0 is served from the cache; SARAH's lines fail; the rest generate.
	audio.ReplaceClips(map[string]models.AudioClip{
		ClipKey("JOHN", 0): {Key: ClipKey("JOHN", 0), URL: "cached-0", CreatedAt: time.Now()},
	})

	progress := NewProgressService()
	tracker := progress.CreateTracker("batch-msg")
	updates := tracker.Subscribe()
	defer tracker.Unsubscribe(updates)
	<-updates // initial state push

	if _, err := audio.GenerateAll(context.Background(), doc, tracker); err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}

	messages := make([]string, 0, len(doc.Dialogues))
	for i := 0; i < len(doc.Dialogues); i++ {
		messages = append(messages, (<-updates).Message)
	}

	if !strings.HasPrefix(messages[0], "skipped cached audio for JOHN") {
		t.Errorf("cached line should report a skip, got %q", messages[0])
	}
	if !strings.HasPrefix(messages[1], "failed to generate audio for SARAH") {
		t.Errorf("failed line should report the failure, got %q", messages[1])
	}
	if !strings.HasPrefix(messages[2], "generated audio for JOHN") {
		t.Errorf("generated line should report generation, got %q", messages[2])
	}
}

func TestSynthesizerSwapDuringGeneration(t *testing.T) {
	audio := NewAudioService(ttscanned.New(), NewVoiceStore())
	doc := audioTestDoc()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			audio.SetSynthesizer(ttscanned.New())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if _, err := audio.GenerateLine(context.Background(), doc, i%len(doc.Dialogues)); err != nil {
				t.Errorf("GenerateLine failed: %v", err)
				return
			}
			audio.ClearClips()
		}
	}()
	wg.Wait()

	if audio.Synthesizer() == nil {
		t.Error("synthesizer lost after swaps")
	}
}

func TestGenerateAllWithoutSynthesizer(t *testing.T) {
	audio := NewAudioService(nil, NewVoiceStore())

	_, err := audio.GenerateAll(context.Background(), audioTestDoc(), nil)
	if !errors.Is(err, apperrors.ErrSynthesisFailed) {
		t.Errorf("expected ErrSynthesisFailed without synthesizer, got %v", err)
	}
}

func TestClipsSortedBySceneThenKey(t *testing.T) {
	audio := NewAudioService(ttscanned.New(), NewVoiceStore())
	doc := audioTestDoc()

	if _, err := audio.GenerateAll(context.Background(), doc, nil); err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}

	clips := audio.Clips()
	if len(clips) != 5 {
		t.Fatalf("expected 5 clips, got %d", len(clips))
	}
	for i := 1; i < len(clips); i++ {
		if clips[i-1].SceneID > clips[i].SceneID {
			t.Errorf("clips not ordered by scene: %d before %d", clips[i-1].SceneID, clips[i].SceneID)
		}
	}
}

func TestClearClipsForcesRegeneration(t *testing.T) {
	synth := ttscanned.New()
	audio := NewAudioService(synth, NewVoiceStore())
	doc := audioTestDoc()

	if _, err := audio.GenerateLine(context.Background(), doc, 0); err != nil {
		t.Fatalf("GenerateLine failed: %v", err)
	}

	audio.ClearClips()

	if _, err := audio.GenerateLine(context.Background(), doc, 0); err != nil {
		t.Fatalf("GenerateLine after clear failed: %v", err)
	}
	if synth.CallCount() != 2 {
		t.Errorf("expected regeneration after clear, got %d calls", synth.CallCount())
	}
}
