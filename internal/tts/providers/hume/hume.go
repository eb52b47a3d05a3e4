// internal/tts/providers/hume/hume.go
package hume

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

	"github.com/scriptecho/scriptreader/internal/tts"
)

func init() {
	tts.Register("hume", func() tts.Synthesizer {
		return &Provider{
			baseURL: "https://api.hume.ai/v0",
		}
	})
}

// Provider synthesizes speech through the Hume TTS API.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	voices  []tts.Voice
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("hume api key not provided")
	}

	p.apiKey = apiKey
	p.client = &http.Client{Timeout: 60 * time.Second}

	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}

	p.voices = tts.DefaultVoices

	return nil
}

func (p *Provider) GetName() string {
	return "Hume AI"
}

func (p *Provider) AvailableVoices() []tts.Voice {
	return p.voices
}

// Synthesize posts one utterance and returns the audio URL from the reply.
func (p *Provider) Synthesize(ctx context.Context, req tts.Request) (string, error) {
	requestBody := map[string]interface{}{
		"utterances": []map[string]interface{}{
			{
				"text":        req.Text,
				"voice":       map[string]string{"id": req.VoiceID},
				"description": fmt.Sprintf("%s, spoken with a %s delivery", req.Character, req.Emotion),
			},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		"POST",
		p.baseURL+"/tts",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return "", err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Hume-Api-Key", p.apiKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return "", fmt.Errorf("hume request failed (%d): %s", httpResp.StatusCode, string(body))
	}

	var response struct {
		Generations []struct {
			AudioURL string `json:"audio_url"`
			Audio    string `json:"audio"`
		} `json:"generations"`
	}

	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return "", err
	}

	if len(response.Generations) == 0 {
		return "", errors.New("hume returned no generations")
	}

	gen := response.Generations[0]
	if gen.AudioURL != "" {
		return gen.AudioURL, nil
	}
	if gen.Audio != "" {
		// Base64 payloads are returned inline as a data URL.
		return "data:audio/mp3;base64," + gen.Audio, nil
	}

	return "", errors.New("hume generation carried no audio")
}
