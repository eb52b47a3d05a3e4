// internal/models/analysis.go
package models

// Character is a character derived from the parsed script plus the
// analysis capability's description of it.
type Character struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	EmotionBaseline string `json:"emotion_baseline"`
}

// Relationship labels the connection between exactly two characters.
// Pairs are only proposed when the characters co-occur in a scene.
type Relationship struct {
	Characters [2]string `json:"characters"`
	Label      string    `json:"relationship"`
}

// AnalysisResult is the merged output of analyzing one ScriptDocument.
type AnalysisResult struct {
	ScriptName    string         `json:"script_name"`
	Characters    []Character    `json:"characters"`
	Scenes        []Scene        `json:"scenes"`
	Relationships []Relationship `json:"relationships"`
	ToneAnalysis  string         `json:"tone_analysis,omitempty"`
	TextLength    int            `json:"text_length"`
}

// CharacterNames returns the analyzed character names in order.
func (r *AnalysisResult) CharacterNames() []string {
	names := make([]string, 0, len(r.Characters))
	for _, c := range r.Characters {
		names = append(names, c.Name)
	}
	return names
}

// Overview is the summary block shown alongside a working set.
type Overview struct {
	ScriptName     string `json:"script_name"`
	CharacterCount int    `json:"character_count"`
	SceneCount     int    `json:"scene_count"`
	DialogueCount  int    `json:"dialogue_count"`
	ToneAnalysis   string `json:"tone_analysis,omitempty"`
}
