// internal/models/script.go
package models

import "time"

// Emotion is the delivery emotion attached to a dialogue line.
type Emotion string

const (
	EmotionNeutral   Emotion = "neutral"
	EmotionHappy     Emotion = "happy"
	EmotionSad       Emotion = "sad"
	EmotionAngry     Emotion = "angry"
	EmotionFearful   Emotion = "fearful"
	EmotionSurprised Emotion = "surprised"
)

// Emotions lists every valid emotion value, in catalogue order.
var Emotions = []Emotion{
	EmotionNeutral,
	EmotionHappy,
	EmotionSad,
	EmotionAngry,
	EmotionFearful,
	EmotionSurprised,
}

// ParseEmotion validates a raw emotion string.
func ParseEmotion(value string) (Emotion, bool) {
	for _, e := range Emotions {
		if string(e) == value {
			return e, true
		}
	}
	return "", false
}

// Scene is one parsed scene of the screenplay.
// IDs are sequential and 1-based within a document; 0 is reserved for
// dialogue that appears before the first scene heading.
type Scene struct {
	ID         int      `json:"id"`
	Heading    string   `json:"heading"`
	Characters []string `json:"characters"`
	Tone       string   `json:"tone,omitempty"`
	Props      []string `json:"props,omitempty"`
}

// DialogueLine is one cue block attributed to a character.
type DialogueLine struct {
	Character string  `json:"character"`
	Text      string  `json:"text"`
	SceneID   int     `json:"scene_id"`
	Emotion   Emotion `json:"emotion"`
	// Hint is the parenthetical stage direction that followed the cue,
	// stripped from Text and kept for the analyzer.
	Hint string `json:"hint,omitempty"`
}

// ScriptDocument is the structured result of parsing one uploaded script.
// It is immutable after parsing; only DialogueLine.Emotion is mutated later,
// and only through the voice/emotion store.
type ScriptDocument struct {
	Name      string         `json:"name"`
	Scenes    []Scene        `json:"scenes"`
	Dialogues []DialogueLine `json:"dialogues"`
	RawText   string         `json:"raw_text,omitempty"`
	ParsedAt  time.Time      `json:"parsed_at"`
}

// SceneByID returns the scene with the given id, if present.
func (d *ScriptDocument) SceneByID(id int) (*Scene, bool) {
	for i := range d.Scenes {
		if d.Scenes[i].ID == id {
			return &d.Scenes[i], true
		}
	}
	return nil, false
}

// CueNames returns the distinct character names in first-appearance order.
func (d *ScriptDocument) CueNames() []string {
	seen := make(map[string]bool, len(d.Dialogues))
	names := make([]string, 0, len(d.Dialogues))
	for _, dl := range d.Dialogues {
		if !seen[dl.Character] {
			seen[dl.Character] = true
			names = append(names, dl.Character)
		}
	}
	return names
}
