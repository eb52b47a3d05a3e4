// internal/services/analyzer_service_test.go
package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "github.com/scriptecho/scriptreader/internal/errors"
	"github.com/scriptecho/scriptreader/internal/models"
	"github.com/scriptecho/scriptreader/internal/nlp"
	nlpcanned "github.com/scriptecho/scriptreader/internal/nlp/providers/canned"
	"github.com/scriptecho/scriptreader/internal/parser"
)

const analyzerSample = `INT. COFFEE SHOP - DAY

JOHN
I wasn't sure you'd come.

SARAH
Neither was I.

EXT. CITY STREET - NIGHT

DETECTIVE MILLER
You two know each other?

JOHN
We used to.
`

func parseSample(t *testing.T) *models.ScriptDocument {
	t.Helper()

	doc, err := parser.NewParser().Parse("sample", analyzerSample)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func TestAnalyzeMergesCapabilityResponses(t *testing.T) {
	doc := parseSample(t)

	capability := nlpcanned.New()
	analyzer := NewAnalyzerService(capability)

	result, err := analyzer.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Characters) != 3 {
		t.Fatalf("expected 3 characters, got %d", len(result.Characters))
	}
	if result.Characters[0].Name != "JOHN" {
		t.Errorf("characters should keep first-appearance order, got %q first", result.Characters[0].Name)
	}
	if result.Characters[0].EmotionBaseline != "anxious" {
		t.Errorf("unexpected baseline for JOHN: %q", result.Characters[0].EmotionBaseline)
	}

	if len(result.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(result.Scenes))
	}
	if result.Scenes[0].Tone != "calm" || result.Scenes[1].Tone != "tense" {
		t.Errorf("scene tones wrong: %q, %q", result.Scenes[0].Tone, result.Scenes[1].Tone)
	}

	if result.ToneAnalysis == "" {
		t.Error("overall tone analysis missing")
	}
	if result.TextLength == 0 {
		t.Error("text length not recorded")
	}
}

func TestAnalyzeProposesOnlyCoOccurringPairs(t *testing.T) {
	doc := parseSample(t)

	analyzer := NewAnalyzerService(nlpcanned.New())

	result, err := analyzer.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// JOHN and SARAH share scene 1; JOHN and MILLER share scene 2.
	// SARAH and MILLER never co-occur and must not be proposed.
	if len(result.Relationships) != 2 {
		t.Fatalf("expected 2 relationships, got %d: %v", len(result.Relationships), result.Relationships)
	}
	for _, rel := range result.Relationships {
		a, b := rel.Characters[0], rel.Characters[1]
		if (a == "SARAH" && b == "DETECTIVE MILLER") || (a == "DETECTIVE MILLER" && b == "SARAH") {
			t.Errorf("non-co-occurring pair proposed: %v", rel.Characters)
		}
	}
	if result.Relationships[0].Label != "romantic tension" {
		t.Errorf("unexpected first relationship label: %q", result.Relationships[0].Label)
	}
}

func TestAnalyzeCachesByNameAndText(t *testing.T) {
	doc := parseSample(t)

	capability := nlpcanned.New()
	analyzer := NewAnalyzerService(capability)

	first, err := analyzer.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatalf("first Analyze failed: %v", err)
	}
	toneCalls := capability.Calls("tone")

	second, err := analyzer.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatalf("second Analyze failed: %v", err)
	}

	if capability.Calls("tone") != toneCalls {
		t.Error("cached analysis should not call the capability again")
	}
	if first != second {
		t.Error("cached analysis should return the stored result")
	}
}

func TestCapabilitySwapDuringAnalyze(t *testing.T) {
	doc := parseSample(t)

	analyzer := NewAnalyzerService(nlpcanned.New())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			analyzer.SetCapability(nlpcanned.New())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			if _, err := analyzer.Analyze(context.Background(), doc); err != nil {
				t.Errorf("Analyze failed: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	if analyzer.Capability() == nil {
		t.Error("capability lost after swaps")
	}
}

// failingCapability errors on scene description to exercise abort semantics.
type failingCapability struct {
	nlp.Capability
}

func (f *failingCapability) DescribeScene(ctx context.Context, heading, evidence string) (nlp.SceneDetail, error) {
	return nlp.SceneDetail{}, errors.New("capability offline")
}

func TestAnalyzeAbortsOnCapabilityFailure(t *testing.T) {
	doc := parseSample(t)

	analyzer := NewAnalyzerService(&failingCapability{Capability: nlpcanned.New()})

	_, err := analyzer.Analyze(context.Background(), doc)
	if err == nil {
		t.Fatal("expected analysis failure")
	}
	if !errors.Is(err, apperrors.ErrAnalysisFailed) {
		t.Errorf("expected ErrAnalysisFailed in chain, got %v", err)
	}
}

func TestAnalyzeWithoutCapability(t *testing.T) {
	doc := parseSample(t)

	analyzer := NewAnalyzerService(nil)

	_, err := analyzer.Analyze(context.Background(), doc)
	if !errors.Is(err, apperrors.ErrAnalysisFailed) {
		t.Errorf("expected ErrAnalysisFailed without capability, got %v", err)
	}
}
