// internal/models/script_test.go
package models

import "testing"

func TestParseEmotion(t *testing.T) {
	for _, e := range Emotions {
		got, ok := ParseEmotion(string(e))
		if !ok || got != e {
			t.Errorf("ParseEmotion(%q) = %q, %v", e, got, ok)
		}
	}

	for _, bad := range []string{"furious", "Neutral", "HAPPY", ""} {
		if _, ok := ParseEmotion(bad); ok {
			t.Errorf("ParseEmotion(%q) should fail", bad)
		}
	}
}

func TestSceneByID(t *testing.T) {
	doc := &ScriptDocument{
		Scenes: []Scene{
			{ID: 1, Heading: "INT. ROOM - DAY"},
			{ID: 2, Heading: "EXT. STREET - NIGHT"},
		},
	}

	scene, ok := doc.SceneByID(2)
	if !ok || scene.Heading != "EXT. STREET - NIGHT" {
		t.Errorf("SceneByID(2) = %+v, %v", scene, ok)
	}
	if _, ok := doc.SceneByID(3); ok {
		t.Error("SceneByID(3) should miss")
	}
}

func TestCueNamesDeduplicates(t *testing.T) {
	doc := &ScriptDocument{
		Dialogues: []DialogueLine{
			{Character: "SARAH"},
			{Character: "JOHN"},
			{Character: "SARAH"},
		},
	}

	names := doc.CueNames()
	if len(names) != 2 || names[0] != "SARAH" || names[1] != "JOHN" {
		t.Errorf("CueNames() = %v", names)
	}
}
