// internal/services/project_service_test.go
package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/scriptecho/scriptreader/internal/models"
	nlpcanned "github.com/scriptecho/scriptreader/internal/nlp/providers/canned"
	"github.com/scriptecho/scriptreader/internal/parser"
	"github.com/scriptecho/scriptreader/internal/storage"
	ttscanned "github.com/scriptecho/scriptreader/internal/tts/providers/canned"
)

// newWorkingSet builds a fully wired service graph with a loaded script.
func newWorkingSet(t *testing.T) (*ScriptService, *VoiceStore, *AudioService, *ProjectService) {
	t.Helper()

	store, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage failed: %v", err)
	}

	voices := NewVoiceStore()
	analyzer := NewAnalyzerService(nlpcanned.New())
	audio := NewAudioService(ttscanned.New(), voices)
	script := NewScriptService(parser.NewParser(), analyzer, voices, audio)
	projects := NewProjectService(script, voices, audio, store)

	if _, _, err := script.ProcessUpload(context.Background(), "sample.txt", []byte(analyzerSample)); err != nil {
		t.Fatalf("ProcessUpload failed: %v", err)
	}

	return script, voices, audio, projects
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	script, voices, audio, projects := newWorkingSet(t)

	if err := voices.SetVoice("JOHN", "voice3"); err != nil {
		t.Fatalf("SetVoice failed: %v", err)
	}
	if _, err := audio.GenerateLine(context.Background(), script.Script(), 0); err != nil {
		t.Fatalf("GenerateLine failed: %v", err)
	}

	snapshot, err := projects.Save("checkpoint")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if snapshot.ID == "" {
		t.Error("snapshot should get an id")
	}

	// Mutate the live set after saving.
	if err := script.SetEmotion(0, "angry"); err != nil {
		t.Fatalf("SetEmotion failed: %v", err)
	}
	if err := voices.SetVoice("JOHN", "voice5"); err != nil {
		t.Fatalf("SetVoice failed: %v", err)
	}
	audio.ClearClips()

	if err := projects.Load(0); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	dialogues, err := script.Dialogues()
	if err != nil {
		t.Fatalf("Dialogues failed: %v", err)
	}
	if dialogues[0].Emotion != models.EmotionNeutral {
		t.Errorf("load should restore the saved emotion, got %q", dialogues[0].Emotion)
	}
	if voiceID, _ := voices.Voice("JOHN"); voiceID != "voice3" {
		t.Errorf("load should restore the saved voice, got %q", voiceID)
	}
	if len(audio.Clips()) != 1 {
		t.Errorf("load should restore the saved clips, got %d", len(audio.Clips()))
	}
}

func TestSavedSnapshotIsIndependentOfLiveEdits(t *testing.T) {
	script, _, _, projects := newWorkingSet(t)

	if _, err := projects.Save("before"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := script.SetEmotion(0, "fearful"); err != nil {
		t.Fatalf("SetEmotion failed: %v", err)
	}

	infos := projects.List()
	if len(infos) != 1 {
		t.Fatalf("expected 1 project, got %d", len(infos))
	}

	if err := projects.Load(0); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	dialogues, _ := script.Dialogues()
	if dialogues[0].Emotion != models.EmotionNeutral {
		t.Errorf("snapshot absorbed a live edit: %q", dialogues[0].Emotion)
	}
}

func TestSaveDefaultName(t *testing.T) {
	_, _, _, projects := newWorkingSet(t)

	snapshot, err := projects.Save("")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(snapshot.Name, "Script Project ") {
		t.Errorf("expected dated default name, got %q", snapshot.Name)
	}
}

func TestDeleteShiftsIndices(t *testing.T) {
	_, _, _, projects := newWorkingSet(t)

	for _, name := range []string{"first", "second", "third"} {
		if _, err := projects.Save(name); err != nil {
			t.Fatalf("Save %q failed: %v", name, err)
		}
	}

	if err := projects.Delete(0); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	infos := projects.List()
	if len(infos) != 2 {
		t.Fatalf("expected 2 projects after delete, got %d", len(infos))
	}
	if infos[0].Name != "second" || infos[1].Name != "third" {
		t.Errorf("projects did not shift down: %q, %q", infos[0].Name, infos[1].Name)
	}
	if infos[0].Index != 0 || infos[1].Index != 1 {
		t.Errorf("listing indices not positional: %d, %d", infos[0].Index, infos[1].Index)
	}
}

func TestLoadAndDeleteOutOfRange(t *testing.T) {
	_, _, _, projects := newWorkingSet(t)

	if err := projects.Load(0); err == nil {
		t.Error("loading from an empty list should fail")
	}
	if err := projects.Delete(5); err == nil {
		t.Error("deleting out of range should fail")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	script, voices, _, projects := newWorkingSet(t)

	if err := voices.SetVoice("SARAH", "voice4"); err != nil {
		t.Fatalf("SetVoice failed: %v", err)
	}
	original, err := projects.Save("exported")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, filename, err := projects.Export(0)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.HasSuffix(filename, ".json") {
		t.Errorf("unexpected export filename: %q", filename)
	}

	imported, err := projects.Import(data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if imported.Name != original.Name {
		t.Errorf("import lost the project name: %q", imported.Name)
	}
	if imported.Voices["SARAH"] != "voice4" {
		t.Errorf("import lost the voice assignments: %v", imported.Voices)
	}

	// The imported snapshot must be loadable like any other.
	if err := projects.Load(1); err != nil {
		t.Fatalf("loading imported project failed: %v", err)
	}
	if voiceID, _ := voices.Voice("SARAH"); voiceID != "voice4" {
		t.Errorf("imported project restored wrong voice: %q", voiceID)
	}
	if script.Script() == nil {
		t.Error("imported project restored no script")
	}
}

func TestConcurrentSaveAndList(t *testing.T) {
	_, _, _, projects := newWorkingSet(t)

	const savers = 4
	var wg sync.WaitGroup
	for i := 0; i < savers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := projects.Save("concurrent"); err != nil {
				t.Errorf("Save failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			projects.List()
		}()
	}
	wg.Wait()

	if got := len(projects.List()); got != savers {
		t.Errorf("expected %d saved projects, got %d", savers, got)
	}
}

func TestImportRejectsMalformedDocuments(t *testing.T) {
	_, _, _, projects := newWorkingSet(t)

	if _, err := projects.Import([]byte("{not json")); err == nil {
		t.Error("malformed JSON should be rejected")
	}
	if _, err := projects.Import([]byte(`{"version": 99}`)); err == nil {
		t.Error("unknown version should be rejected")
	}
	if _, err := projects.Import([]byte(`{"version": 1, "snapshot": {}}`)); err == nil {
		t.Error("snapshot without script should be rejected")
	}
}
