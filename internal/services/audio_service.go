// internal/services/audio_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	apperrors "github.com/scriptecho/scriptreader/internal/errors"
	"github.com/scriptecho/scriptreader/internal/models"
	"github.com/scriptecho/scriptreader/internal/tts"
)

// BatchFailure records one dialogue line that failed to synthesize.
type BatchFailure struct {
	Key    string `json:"key"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// BatchSummary is the final report of a batch generation run.
type BatchSummary struct {
	Total     int            `json:"total"`
	Generated int            `json:"generated"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Failures  []BatchFailure `json:"failures,omitempty"`
	Cancelled bool           `json:"cancelled"`
}

// AudioService turns dialogue lines into audio clips through the configured
// speech synthesizer, caching results per dialogue key so repeated requests
// are no-ops until the cache is cleared.
type AudioService struct {
	mu     sync.RWMutex
	synth  tts.Synthesizer
	voices *VoiceStore
	clips  *gocache.Cache
}

// NewAudioService creates an audio service bound to a synthesizer.
func NewAudioService(synth tts.Synthesizer, voices *VoiceStore) *AudioService {
	return &AudioService{
		synth:  synth,
		voices: voices,
		// Clips live until the user clears them or loads another project.
		clips: gocache.New(gocache.NoExpiration, 0),
	}
}

// SetSynthesizer swaps the speech capability (runtime reconfiguration).
// Lines already being synthesized keep the capability they started with.
func (s *AudioService) SetSynthesizer(synth tts.Synthesizer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synth = synth
}

// Synthesizer returns the current speech capability.
func (s *AudioService) Synthesizer() tts.Synthesizer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.synth
}

// ClipKey builds the cache key for one dialogue line.
func ClipKey(character string, index int) string {
	return fmt.Sprintf("%s_%d", character, index)
}

// GenerateLine synthesizes one dialogue line, serving from the clip cache
// when the key is already present.
func (s *AudioService) GenerateLine(ctx context.Context, doc *models.ScriptDocument, index int) (models.AudioClip, error) {
	if doc == nil {
		return models.AudioClip{}, apperrors.NewInvalidStateError("no script loaded; upload a script before generating audio")
	}
	if index < 0 || index >= len(doc.Dialogues) {
		return models.AudioClip{}, apperrors.NewValidationError(fmt.Sprintf("dialogue index %d out of range", index), nil)
	}
	synth := s.Synthesizer()
	if synth == nil {
		return models.AudioClip{}, apperrors.NewSynthesisFailedError("no speech capability configured", nil)
	}

	line := doc.Dialogues[index]
	key := ClipKey(line.Character, index)

	if cached, found := s.clips.Get(key); found {
		return cached.(models.AudioClip), nil
	}

	voiceID, _ := s.voices.Voice(line.Character)
	url, err := synth.Synthesize(ctx, tts.Request{
		Text:      line.Text,
		Character: line.Character,
		VoiceID:   voiceID,
		Emotion:   line.Emotion,
	})
	if err != nil {
		return models.AudioClip{}, apperrors.NewSynthesisFailedError(
			fmt.Sprintf("failed to synthesize line %d (%s)", index, line.Character), err)
	}

	clip := models.AudioClip{
		Key:       key,
		URL:       url,
		Character: line.Character,
		Text:      line.Text,
		Emotion:   line.Emotion,
		SceneID:   line.SceneID,
		CreatedAt: time.Now(),
	}
	s.clips.Set(key, clip, gocache.NoExpiration)

	return clip, nil
}

// GenerateAll synthesizes every dialogue line sequentially, one call at a
// time. Keys already in the clip cache are skipped. A per-line failure is
// collected and the batch continues; the summary reports how many lines
// succeeded and which failed. The tracker's cancel flag is checked between
// iterations.
func (s *AudioService) GenerateAll(ctx context.Context, doc *models.ScriptDocument, tracker *ProgressTracker) (*BatchSummary, error) {
	if doc == nil {
		return nil, apperrors.NewInvalidStateError("no script loaded; upload a script before generating audio")
	}
	if s.Synthesizer() == nil {
		return nil, apperrors.NewSynthesisFailedError("no speech capability configured", nil)
	}

	summary := &BatchSummary{Total: len(doc.Dialogues)}

	for i, line := range doc.Dialogues {
		if tracker != nil && tracker.IsCancelled() {
			summary.Cancelled = true
			break
		}
		if err := ctx.Err(); err != nil {
			summary.Cancelled = true
			break
		}

		var verb string
		key := ClipKey(line.Character, i)
		if _, found := s.clips.Get(key); found {
			summary.Skipped++
			verb = "skipped cached audio for"
		} else {
			if _, err := s.GenerateLine(ctx, doc, i); err != nil {
				summary.Failed++
				summary.Failures = append(summary.Failures, BatchFailure{
					Key:    key,
					Index:  i,
					Reason: err.Error(),
				})
				verb = "failed to generate audio for"
			} else {
				summary.Generated++
				verb = "generated audio for"
			}
		}

		if tracker != nil {
			tracker.UpdateProgress((i+1)*100/len(doc.Dialogues),
				fmt.Sprintf("%s %s (%d/%d)", verb, line.Character, i+1, len(doc.Dialogues)))
		}
	}

	return summary, nil
}

// Clips returns a copy of the generated clips, ordered by dialogue index
// via scene id then key.
func (s *AudioService) Clips() []models.AudioClip {
	items := s.clips.Items()

	clips := make([]models.AudioClip, 0, len(items))
	for _, item := range items {
		clips = append(clips, item.Object.(models.AudioClip))
	}

	sort.Slice(clips, func(i, j int) bool {
		if clips[i].SceneID != clips[j].SceneID {
			return clips[i].SceneID < clips[j].SceneID
		}
		return clips[i].Key < clips[j].Key
	})

	return clips
}

// ClipMap returns the clips keyed by dialogue key (for snapshots).
func (s *AudioService) ClipMap() map[string]models.AudioClip {
	items := s.clips.Items()

	out := make(map[string]models.AudioClip, len(items))
	for key, item := range items {
		out[key] = item.Object.(models.AudioClip)
	}
	return out
}

// ReplaceClips swaps the whole clip cache (project load).
func (s *AudioService) ReplaceClips(clips map[string]models.AudioClip) {
	s.clips.Flush()
	for key, clip := range clips {
		s.clips.Set(key, clip, gocache.NoExpiration)
	}
}

// ClearClips empties the clip cache so the next batch regenerates all audio.
func (s *AudioService) ClearClips() {
	s.clips.Flush()
}
