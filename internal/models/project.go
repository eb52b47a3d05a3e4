// internal/models/project.go
package models

import "time"

// AudioClip is the cached result of synthesizing one dialogue line.
// Key format is "CHARACTER_index", matching the dialogue slice position.
type AudioClip struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Character string    `json:"character"`
	Text      string    `json:"text"`
	Emotion   Emotion   `json:"emotion"`
	SceneID   int       `json:"scene_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectSnapshot is an immutable point-in-time copy of the working set.
type ProjectSnapshot struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	CreatedAt  time.Time            `json:"created_at"`
	ScriptName string               `json:"script_name"`
	Script     *ScriptDocument      `json:"script"`
	Analysis   *AnalysisResult      `json:"analysis"`
	Voices     map[string]string    `json:"character_voices"`
	AudioClips map[string]AudioClip `json:"audio_clips"`
}

// ProjectInfo is the listing view of a snapshot.
type ProjectInfo struct {
	Index      int       `json:"index"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	ScriptName string    `json:"script_name"`
	ClipCount  int       `json:"clip_count"`
}

// ProjectExport is the durable JSON document for export/import.
type ProjectExport struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Snapshot   ProjectSnapshot `json:"snapshot"`
}

// ExportVersion is bumped when ProjectExport changes incompatibly.
const ExportVersion = 1
