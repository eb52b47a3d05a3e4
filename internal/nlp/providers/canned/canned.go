// internal/nlp/providers/canned/canned.go
package canned

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/scriptecho/scriptreader/internal/nlp"
)

func init() {
	nlp.Register("canned", func() nlp.Capability {
		return New()
	})
}

// Canned character sketches for the demo script.
var knownCharacters = map[string]nlp.CharacterDetail{
	"JOHN":             {Description: "Protagonist, mid-30s, troubled past", EmotionBaseline: "anxious"},
	"SARAH":            {Description: "Love interest, smart and independent", EmotionBaseline: "confident"},
	"DETECTIVE MILLER": {Description: "Grizzled cop, seen too much", EmotionBaseline: "stern"},
	"BARTENDER":        {Description: "Background character", EmotionBaseline: "neutral"},
}

// Provider is a deterministic offline stand-in for the NLP capability.
// Identical inputs always yield identical outputs, which makes analyzer
// results reproducible in tests and demos.
type Provider struct {
	mu    sync.Mutex
	calls map[string]int
}

// New creates an unconfigured canned provider.
func New() *Provider {
	return &Provider{calls: make(map[string]int)}
}

func (p *Provider) Initialize(config map[string]string) error {
	return nil
}

func (p *Provider) GetName() string {
	return "Canned"
}

func (p *Provider) DescribeCharacter(ctx context.Context, name, evidence string) (nlp.CharacterDetail, error) {
	if err := ctx.Err(); err != nil {
		return nlp.CharacterDetail{}, err
	}
	p.count("character")

	if detail, ok := knownCharacters[name]; ok {
		return detail, nil
	}
	return nlp.CharacterDetail{
		Description:     fmt.Sprintf("Speaking character %s", name),
		EmotionBaseline: "neutral",
	}, nil
}

func (p *Provider) DescribeScene(ctx context.Context, heading, evidence string) (nlp.SceneDetail, error) {
	if err := ctx.Err(); err != nil {
		return nlp.SceneDetail{}, err
	}
	p.count("scene")

	tone := "neutral"
	upper := strings.ToUpper(heading)
	switch {
	case strings.Contains(upper, "NIGHT"):
		tone = "tense"
	case strings.Contains(upper, "DAY"):
		tone = "calm"
	}

	return nlp.SceneDetail{
		Tone:  tone,
		Props: []string{"table", "chair"},
	}, nil
}

func (p *Provider) LabelRelationship(ctx context.Context, a, b, evidence string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.count("relationship")

	if (a == "JOHN" && b == "SARAH") || (a == "SARAH" && b == "JOHN") {
		return "romantic tension", nil
	}
	if (a == "JOHN" && b == "DETECTIVE MILLER") || (a == "DETECTIVE MILLER" && b == "JOHN") {
		return "uneasy alliance", nil
	}
	return "acquaintances", nil
}

func (p *Provider) AnalyzeTone(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.count("tone")

	return "The script has a dark, noir feel with elements of psychological thriller", nil
}

// Calls returns how many times the given capability method ran.
func (p *Provider) Calls(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[method]
}

func (p *Provider) count(method string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[method]++
}
