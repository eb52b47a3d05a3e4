// internal/services/analyzer_service.go
package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	apperrors "github.com/scriptecho/scriptreader/internal/errors"
	"github.com/scriptecho/scriptreader/internal/models"
	"github.com/scriptecho/scriptreader/internal/nlp"
)

// AnalyzerService derives characters, scene metadata and relationships from
// a parsed script by delegating language understanding to the configured
// NLP capability and merging the responses.
//
// The merge itself is a pure function: identical parser output plus
// identical capability responses always produce the same AnalysisResult.
type AnalyzerService struct {
	mu          sync.RWMutex
	capability  nlp.Capability
	semaphore   chan struct{}
	resultCache *gocache.Cache
}

// NewAnalyzerService creates an analyzer bound to the given capability.
func NewAnalyzerService(capability nlp.Capability) *AnalyzerService {
	return &AnalyzerService{
		capability:  capability,
		semaphore:   make(chan struct{}, 3),
		resultCache: gocache.New(30*time.Minute, 10*time.Minute),
	}
}

// SetCapability swaps the NLP capability (runtime provider reconfiguration).
// Analyses already in flight keep the capability they started with.
func (s *AnalyzerService) SetCapability(capability nlp.Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.capability = capability
	s.resultCache.Flush()
}

// Capability returns the current NLP capability.
func (s *AnalyzerService) Capability() nlp.Capability {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capability
}

// Analyze runs the full analysis over one parsed document.
// Capability failures abort the analysis and surface as an
// analysis-failed error; an empty result is never substituted.
func (s *AnalyzerService) Analyze(ctx context.Context, doc *models.ScriptDocument) (*models.AnalysisResult, error) {
	if doc == nil {
		return nil, apperrors.NewInvalidStateError("no script to analyze")
	}

	// One capability instance serves the whole analysis, even if a provider
	// swap lands mid-flight.
	capability := s.Capability()
	if capability == nil {
		return nil, apperrors.NewAnalysisFailedError("no NLP capability configured", nil)
	}

	cacheKey := s.cacheKey(doc)
	if cached, found := s.resultCache.Get(cacheKey); found {
		return cached.(*models.AnalysisResult), nil
	}

	names := doc.CueNames()
	evidence := characterEvidence(doc)
	pairs := coOccurringPairs(doc)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	details := make([]nlp.CharacterDetail, len(names))
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			s.semaphore <- struct{}{}
			defer func() { <-s.semaphore }()

			detail, err := capability.DescribeCharacter(ctx, name, evidence[name])
			if err != nil {
				setErr(err)
				return
			}
			details[i] = detail
		}(i, name)
	}

	sceneDetails := make([]nlp.SceneDetail, len(doc.Scenes))
	for i := range doc.Scenes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.semaphore <- struct{}{}
			defer func() { <-s.semaphore }()

			detail, err := capability.DescribeScene(ctx, doc.Scenes[i].Heading, sceneEvidence(doc, doc.Scenes[i].ID))
			if err != nil {
				setErr(err)
				return
			}
			sceneDetails[i] = detail
		}(i)
	}

	labels := make([]string, len(pairs))
	for i, pair := range pairs {
		wg.Add(1)
		go func(i int, pair [2]string) {
			defer wg.Done()
			s.semaphore <- struct{}{}
			defer func() { <-s.semaphore }()

			label, err := capability.LabelRelationship(ctx, pair[0], pair[1], evidence[pair[0]]+"\n"+evidence[pair[1]])
			if err != nil {
				setErr(err)
				return
			}
			labels[i] = label
		}(i, pair)
	}

	var tone string
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.semaphore <- struct{}{}
		defer func() { <-s.semaphore }()

		t, err := capability.AnalyzeTone(ctx, doc.RawText)
		if err != nil {
			setErr(err)
			return
		}
		tone = t
	}()

	wg.Wait()

	if firstErr != nil {
		return nil, apperrors.NewAnalysisFailedError("script analysis failed", firstErr)
	}

	result := mergeAnalysis(doc, names, details, sceneDetails, pairs, labels, tone)

	s.resultCache.SetDefault(cacheKey, result)

	return result, nil
}

// mergeAnalysis assembles the final result from the capability responses.
// Pure: no clock, no randomness, no shared state.
func mergeAnalysis(doc *models.ScriptDocument, names []string, details []nlp.CharacterDetail,
	sceneDetails []nlp.SceneDetail, pairs [][2]string, labels []string, tone string) *models.AnalysisResult {

	characters := make([]models.Character, len(names))
	for i, name := range names {
		characters[i] = models.Character{
			Name:            name,
			Description:     details[i].Description,
			EmotionBaseline: details[i].EmotionBaseline,
		}
	}

	scenes := make([]models.Scene, len(doc.Scenes))
	copy(scenes, doc.Scenes)
	for i := range scenes {
		scenes[i].Tone = sceneDetails[i].Tone
		scenes[i].Props = sceneDetails[i].Props
	}

	relationships := make([]models.Relationship, len(pairs))
	for i, pair := range pairs {
		relationships[i] = models.Relationship{
			Characters: pair,
			Label:      labels[i],
		}
	}

	return &models.AnalysisResult{
		ScriptName:    doc.Name,
		Characters:    characters,
		Scenes:        scenes,
		Relationships: relationships,
		ToneAnalysis:  tone,
		TextLength:    len([]rune(doc.RawText)),
	}
}

// characterEvidence aggregates each character's dialogue, in script order.
func characterEvidence(doc *models.ScriptDocument) map[string]string {
	parts := make(map[string][]string)
	for _, dl := range doc.Dialogues {
		if dl.Text == "" {
			continue
		}
		parts[dl.Character] = append(parts[dl.Character], dl.Text)
	}

	evidence := make(map[string]string, len(parts))
	for name, lines := range parts {
		evidence[name] = strings.Join(lines, "\n")
	}
	return evidence
}

// sceneEvidence aggregates the dialogue spoken in one scene.
func sceneEvidence(doc *models.ScriptDocument, sceneID int) string {
	var lines []string
	for _, dl := range doc.Dialogues {
		if dl.SceneID == sceneID && dl.Text != "" {
			lines = append(lines, dl.Character+": "+dl.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// coOccurringPairs returns every unordered character pair that shares at
// least one scene, in scene-then-cue order. Pairs that never co-occur are
// never proposed.
func coOccurringPairs(doc *models.ScriptDocument) [][2]string {
	seen := make(map[string]bool)
	var pairs [][2]string

	for _, scene := range doc.Scenes {
		for i := 0; i < len(scene.Characters); i++ {
			for j := i + 1; j < len(scene.Characters); j++ {
				a, b := scene.Characters[i], scene.Characters[j]
				key := a + "\x00" + b
				if a > b {
					key = b + "\x00" + a
				}
				if seen[key] {
					continue
				}
				seen[key] = true
				pairs = append(pairs, [2]string{a, b})
			}
		}
	}

	return pairs
}

func (s *AnalyzerService) cacheKey(doc *models.ScriptDocument) string {
	hash := md5.Sum([]byte(doc.Name + "\x00" + doc.RawText))
	return hex.EncodeToString(hash[:])
}
