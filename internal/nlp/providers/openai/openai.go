// internal/nlp/providers/openai/openai.go
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/scriptecho/scriptreader/internal/nlp"
)

func init() {
	nlp.Register("openai", func() nlp.Capability {
		return &Provider{
			baseURL: "https://api.openai.com/v1",
		}
	})
}

// Provider implements the NLP capability over the OpenAI chat completions
// API, with structured JSON output and a client-side rate limiter.
type Provider struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
	limiter      *rate.Limiter
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("openai api key not provided")
	}

	p.apiKey = apiKey
	p.client = &http.Client{Timeout: 90 * time.Second}

	if model, exists := config["default_model"]; exists && model != "" {
		p.defaultModel = model
	} else {
		p.defaultModel = "gpt-4o"
	}

	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}

	// 2 requests/second sustained, small burst for the analysis fan-out.
	p.limiter = rate.NewLimiter(rate.Limit(2), 4)

	return nil
}

func (p *Provider) GetName() string {
	return "OpenAI"
}

func (p *Provider) DescribeCharacter(ctx context.Context, name, evidence string) (nlp.CharacterDetail, error) {
	prompt := fmt.Sprintf(`Describe the screenplay character %q based on their dialogue below.
Return a JSON object: {"description": string, "emotion_baseline": string}.
"emotion_baseline" is one or two words for their default emotional register.

Dialogue:
%s`, name, truncate(evidence, 4000))

	var detail nlp.CharacterDetail
	if err := p.completeJSON(ctx, prompt, &detail); err != nil {
		return nlp.CharacterDetail{}, err
	}
	return detail, nil
}

func (p *Provider) DescribeScene(ctx context.Context, heading, evidence string) (nlp.SceneDetail, error) {
	prompt := fmt.Sprintf(`Analyze the screenplay scene %q using the dialogue below.
Return a JSON object: {"tone": string, "props": [string]}.
"props" lists physical objects likely present or mentioned, in order of importance.

Dialogue:
%s`, heading, truncate(evidence, 4000))

	var detail nlp.SceneDetail
	if err := p.completeJSON(ctx, prompt, &detail); err != nil {
		return nlp.SceneDetail{}, err
	}
	return detail, nil
}

func (p *Provider) LabelRelationship(ctx context.Context, a, b, evidence string) (string, error) {
	prompt := fmt.Sprintf(`Characters %q and %q share scenes in a screenplay. Based on the dialogue below,
label their relationship in at most five words (e.g. "romantic tension", "uneasy alliance").
Return a JSON object: {"relationship": string}.

Dialogue:
%s`, a, b, truncate(evidence, 4000))

	var out struct {
		Relationship string `json:"relationship"`
	}
	if err := p.completeJSON(ctx, prompt, &out); err != nil {
		return "", err
	}
	return out.Relationship, nil
}

func (p *Provider) AnalyzeTone(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Describe the overall tone of this screenplay in one or two sentences.
Return a JSON object: {"tone_analysis": string}.

Script:
%s`, truncate(text, 6000))

	var out struct {
		ToneAnalysis string `json:"tone_analysis"`
	}
	if err := p.completeJSON(ctx, prompt, &out); err != nil {
		return "", err
	}
	return out.ToneAnalysis, nil
}

const structuredSystemPrompt = `You are a structured data extraction specialist. You must output only valid JSON that matches the requested schema. No explanations, no markdown, no extra keys.`

// completeJSON runs one chat completion and unmarshals the JSON reply.
func (p *Provider) completeJSON(ctx context.Context, prompt string, out interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	requestBody := map[string]interface{}{
		"model": p.defaultModel,
		"messages": []map[string]string{
			{"role": "system", "content": structuredSystemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature":     0.2,
		"response_format": map[string]string{"type": "json_object"},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		"POST",
		p.baseURL+"/chat/completions",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return fmt.Errorf("openai request failed (%d): %s", httpResp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return err
	}

	if len(response.Choices) == 0 {
		return errors.New("openai returned no choices")
	}

	content := stripCodeFence(response.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("malformed structured response: %w", err)
	}

	return nil
}

// stripCodeFence removes a surrounding ```json fence if the model added one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
