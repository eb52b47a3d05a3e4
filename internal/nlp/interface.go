// internal/nlp/interface.go
package nlp

import (
	"context"
	"errors"
)

var ErrUnknownProvider = errors.New("unknown NLP provider")

// CharacterDetail is the capability's description of one character.
type CharacterDetail struct {
	Description     string `json:"description"`
	EmotionBaseline string `json:"emotion_baseline"`
}

// SceneDetail is the capability's reading of one scene.
type SceneDetail struct {
	Tone  string   `json:"tone"`
	Props []string `json:"props"`
}

// Capability is the language-understanding collaborator the analyzer
// delegates to. It is treated as a remote, possibly slow, possibly failing
// service; implementations must honor ctx cancellation.
type Capability interface {
	// Initialize configures the capability from a string map.
	Initialize(config map[string]string) error

	// GetName returns the provider's display name.
	GetName() string

	// DescribeCharacter produces a description and emotion baseline for one
	// character, given their aggregated dialogue evidence.
	DescribeCharacter(ctx context.Context, name, evidence string) (CharacterDetail, error)

	// DescribeScene infers tone and props for one scene from its heading and
	// the dialogue spoken in it.
	DescribeScene(ctx context.Context, heading, evidence string) (SceneDetail, error)

	// LabelRelationship labels the connection between two characters that
	// co-occur in at least one scene.
	LabelRelationship(ctx context.Context, a, b, evidence string) (string, error)

	// AnalyzeTone produces the overall tone description of the script.
	AnalyzeTone(ctx context.Context, text string) (string, error)
}

// CapabilityFactory builds an unconfigured Capability.
type CapabilityFactory func() Capability

var providers = make(map[string]CapabilityFactory)

// Register adds a provider factory under the given name.
// Provider packages call this from init.
func Register(name string, factory CapabilityFactory) {
	providers[name] = factory
}

// GetProvider creates and initializes the named provider.
func GetProvider(name string, config map[string]string) (Capability, error) {
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
