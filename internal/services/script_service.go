// internal/services/script_service.go
package services

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	apperrors "github.com/scriptecho/scriptreader/internal/errors"
	"github.com/scriptecho/scriptreader/internal/extract"
	"github.com/scriptecho/scriptreader/internal/models"
	"github.com/scriptecho/scriptreader/internal/parser"
)

// ScriptService owns the session's working set: the current script document,
// its analysis, and the stores hanging off them. One working set exists per
// session; it is created by an upload, replaced by a project load, and
// dropped by Clear. All mutations run under one mutex so user actions are
// processed strictly one at a time.
type ScriptService struct {
	mu sync.Mutex

	parser   *parser.Parser
	analyzer *AnalyzerService
	voices   *VoiceStore
	audio    *AudioService

	script   *models.ScriptDocument
	analysis *models.AnalysisResult
}

// NewScriptService wires the pipeline services together.
func NewScriptService(p *parser.Parser, analyzer *AnalyzerService, voices *VoiceStore, audio *AudioService) *ScriptService {
	return &ScriptService{
		parser:   p,
		analyzer: analyzer,
		voices:   voices,
		audio:    audio,
	}
}

// ProcessUpload runs the full pipeline for an uploaded file:
// extract → parse → analyze, then replaces the working set.
// Any stage error aborts the upload and leaves the previous working set
// untouched.
func (s *ScriptService) ProcessUpload(ctx context.Context, filename string, data []byte) (*models.ScriptDocument, *models.AnalysisResult, error) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")

	text, err := extract.Extract(data, ext)
	if err != nil {
		return nil, nil, err
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	doc, err := s.parser.Parse(name, text)
	if err != nil {
		return nil, nil, err
	}

	analysis, err := s.analyzer.Analyze(ctx, doc)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.script = doc
	s.analysis = analysis
	s.voices.Reset()
	s.voices.InitCharacters(analysis.CharacterNames())
	s.audio.ClearClips()

	return doc, analysis, nil
}

// Clear drops the working set (explicit "new script").
func (s *ScriptService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.script = nil
	s.analysis = nil
	s.voices.Reset()
	s.audio.ClearClips()
}

// Current returns the live script and analysis.
func (s *ScriptService) Current() (*models.ScriptDocument, *models.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.script == nil {
		return nil, nil, apperrors.NewInvalidStateError("no script loaded")
	}
	return s.script, s.analysis, nil
}

// Script returns just the live document (nil when nothing is loaded).
func (s *ScriptService) Script() *models.ScriptDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.script
}

// Overview summarizes the working set for the sidebar.
func (s *ScriptService) Overview() (*models.Overview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.script == nil {
		return nil, apperrors.NewInvalidStateError("no script loaded")
	}

	overview := &models.Overview{
		ScriptName:    s.script.Name,
		SceneCount:    len(s.script.Scenes),
		DialogueCount: len(s.script.Dialogues),
	}
	if s.analysis != nil {
		overview.CharacterCount = len(s.analysis.Characters)
		overview.ToneAnalysis = s.analysis.ToneAnalysis
	}

	return overview, nil
}

// Dialogues returns the live dialogue lines.
func (s *ScriptService) Dialogues() ([]models.DialogueLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.script == nil {
		return nil, apperrors.NewInvalidStateError("no script loaded")
	}
	return s.script.Dialogues, nil
}

// SetEmotion applies a validated emotion to one dialogue line.
func (s *ScriptService) SetEmotion(index int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.script == nil {
		return apperrors.NewInvalidStateError("no script loaded")
	}
	if index < 0 || index >= len(s.script.Dialogues) {
		return apperrors.NewValidationError("dialogue index out of range", nil)
	}

	return s.voices.SetEmotion(&s.script.Dialogues[index], value)
}

// Restore atomically replaces the working set from a snapshot (project load).
func (s *ScriptService) Restore(doc *models.ScriptDocument, analysis *models.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.script = doc
	s.analysis = analysis
}
