// internal/tts/providers/canned/canned.go
package canned

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/scriptecho/scriptreader/internal/tts"
)

func init() {
	tts.Register("canned", func() tts.Synthesizer {
		return New()
	})
}

// Provider is a deterministic offline stand-in for speech synthesis.
// The returned URL is derived from the request, so identical requests
// produce identical locators.
type Provider struct {
	mu        sync.Mutex
	callCount int

	// FailFor marks characters whose synthesis should fail, for exercising
	// batch error collection.
	FailFor map[string]bool
}

// New creates a canned synthesizer.
func New() *Provider {
	return &Provider{FailFor: make(map[string]bool)}
}

func (p *Provider) Initialize(config map[string]string) error {
	return nil
}

func (p *Provider) GetName() string {
	return "Canned"
}

func (p *Provider) AvailableVoices() []tts.Voice {
	return tts.DefaultVoices
}

func (p *Provider) Synthesize(ctx context.Context, req tts.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	p.callCount++
	p.mu.Unlock()

	if p.FailFor[req.Character] {
		return "", fmt.Errorf("synthesis rejected for %s", req.Character)
	}

	sum := sha1.Sum([]byte(req.Character + "|" + req.Text + "|" + string(req.Emotion) + "|" + req.VoiceID))
	return "https://example.com/audio/audio_" + hex.EncodeToString(sum[:4]) + ".mp3", nil
}

// CallCount returns how many synthesis calls ran.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callCount
}
