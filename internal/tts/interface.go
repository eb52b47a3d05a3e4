// internal/tts/interface.go
package tts

import (
	"context"
	"errors"

	"github.com/scriptecho/scriptreader/internal/models"
)

var ErrUnknownProvider = errors.New("unknown TTS provider")

// Voice is one synthetic voice offered by a provider.
type Voice struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Age    string `json:"age"`
}

// Request describes one line to synthesize.
type Request struct {
	Text      string         `json:"text"`
	Character string         `json:"character"`
	VoiceID   string         `json:"voice_id"`
	Emotion   models.Emotion `json:"emotion"`
}

// Synthesizer is the speech capability consumed by audio generation.
// Implementations return a locator (URL or file path) for the produced clip.
type Synthesizer interface {
	// Initialize configures the synthesizer from a string map.
	Initialize(config map[string]string) error

	// GetName returns the provider's display name.
	GetName() string

	// Synthesize produces audio for one dialogue line.
	Synthesize(ctx context.Context, req Request) (string, error)

	// AvailableVoices lists the voices this provider offers.
	AvailableVoices() []Voice
}

// SynthesizerFactory builds an unconfigured Synthesizer.
type SynthesizerFactory func() Synthesizer

var providers = make(map[string]SynthesizerFactory)

// Register adds a provider factory under the given name.
func Register(name string, factory SynthesizerFactory) {
	providers[name] = factory
}

// GetProvider creates and initializes the named provider.
func GetProvider(name string, config map[string]string) (Synthesizer, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, ErrUnknownProvider
	}

	provider := factory()
	if err := provider.Initialize(config); err != nil {
		return nil, err
	}

	return provider, nil
}

// ListProviders returns all registered provider names.
func ListProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}

// DefaultVoices is the catalogue shared by providers that do not expose a
// voice listing endpoint.
var DefaultVoices = []Voice{
	{ID: "voice1", Name: "Male Deep", Gender: "male", Age: "adult"},
	{ID: "voice2", Name: "Female Warm", Gender: "female", Age: "adult"},
	{ID: "voice3", Name: "Male Raspy", Gender: "male", Age: "older"},
	{ID: "voice4", Name: "Female Young", Gender: "female", Age: "young"},
	{ID: "voice5", Name: "Neutral", Gender: "neutral", Age: "adult"},
}
