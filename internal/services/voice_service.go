// internal/services/voice_service.go
package services

import (
	"sync"

	apperrors "github.com/scriptecho/scriptreader/internal/errors"
	"github.com/scriptecho/scriptreader/internal/models"
	"github.com/scriptecho/scriptreader/internal/tts"
)

// DefaultVoiceID is assigned to every discovered character until the user
// picks something else.
const DefaultVoiceID = "voice1"

// VoiceStore maps characters to voices and applies emotion assignments to
// dialogue lines. Pure in-memory state; no I/O.
//
// The assignment map is explicit so "never assigned" stays distinguishable
// from "deliberately set to the default voice".
type VoiceStore struct {
	mu          sync.RWMutex
	assignments map[string]string
	defaultID   string
}

// NewVoiceStore creates a store with the standard default voice.
func NewVoiceStore() *VoiceStore {
	return &VoiceStore{
		assignments: make(map[string]string),
		defaultID:   DefaultVoiceID,
	}
}

// InitCharacters registers newly discovered characters with the default
// voice. Characters already assigned keep their assignment; a character is
// never removed once present.
func (s *VoiceStore) InitCharacters(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		if _, exists := s.assignments[name]; !exists {
			s.assignments[name] = s.defaultID
		}
	}
}

// SetVoice assigns a voice to a character.
func (s *VoiceStore) SetVoice(character, voiceID string) error {
	if character == "" {
		return apperrors.NewValidationError("character name is required", nil)
	}
	if voiceID == "" {
		voiceID = s.defaultID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments[character] = voiceID
	return nil
}

// Voice returns the character's voice and whether it was ever assigned.
// Unassigned characters fall back to the default voice id.
func (s *VoiceStore) Voice(character string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if voiceID, exists := s.assignments[character]; exists {
		return voiceID, true
	}
	return s.defaultID, false
}

// Assignments returns a copy of the full assignment map.
func (s *VoiceStore) Assignments() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.assignments))
	for k, v := range s.assignments {
		out[k] = v
	}
	return out
}

// Replace swaps the entire assignment map (project load).
func (s *VoiceStore) Replace(assignments map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments = make(map[string]string, len(assignments))
	for k, v := range assignments {
		s.assignments[k] = v
	}
}

// Reset drops all assignments (new script).
func (s *VoiceStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments = make(map[string]string)
}

// SetEmotion validates and applies an emotion to a dialogue line.
// A value outside the enumerated set is rejected and the line keeps its
// previous emotion.
func (s *VoiceStore) SetEmotion(line *models.DialogueLine, value string) error {
	if line == nil {
		return apperrors.NewInvalidStateError("no dialogue line selected")
	}

	emotion, ok := models.ParseEmotion(value)
	if !ok {
		return apperrors.NewInvalidEmotionError(value)
	}

	line.Emotion = emotion
	return nil
}

// Catalogue lists the voices offered by the given synthesizer, falling back
// to the shared default catalogue.
func (s *VoiceStore) Catalogue(synth tts.Synthesizer) []tts.Voice {
	if synth != nil {
		if voices := synth.AvailableVoices(); len(voices) > 0 {
			return voices
		}
	}
	return tts.DefaultVoices
}
