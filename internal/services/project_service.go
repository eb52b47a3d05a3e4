// internal/services/project_service.go
package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/scriptecho/scriptreader/internal/errors"
	"github.com/scriptecho/scriptreader/internal/models"
	"github.com/scriptecho/scriptreader/internal/storage"
)

// projectsDir is the storage subdirectory for exported projects.
const projectsDir = "projects"

// ProjectService manages the session's snapshot list: save, load, delete by
// position, and JSON export/import through file storage.
type ProjectService struct {
	script  *ScriptService
	voices  *VoiceStore
	audio   *AudioService
	storage *storage.FileStorage

	mu       sync.Mutex
	projects []models.ProjectSnapshot
}

// NewProjectService creates a project service over the given working set.
func NewProjectService(script *ScriptService, voices *VoiceStore, audio *AudioService, store *storage.FileStorage) *ProjectService {
	return &ProjectService{
		script:  script,
		voices:  voices,
		audio:   audio,
		storage: store,
	}
}

// Save captures a deep, independent copy of the working set. Later edits to
// the live script never alter a saved snapshot.
func (s *ProjectService) Save(name string) (*models.ProjectSnapshot, error) {
	doc, analysis, err := s.script.Current()
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = fmt.Sprintf("Script Project %s", time.Now().Format("2006-01-02"))
	}

	snapshot := models.ProjectSnapshot{
		ID:         uuid.NewString(),
		Name:       name,
		CreatedAt:  time.Now(),
		ScriptName: doc.Name,
		Script:     doc,
		Analysis:   analysis,
		Voices:     s.voices.Assignments(),
		AudioClips: s.audio.ClipMap(),
	}

	copied, err := deepCopySnapshot(&snapshot)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to copy working set", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = append(s.projects, *copied)
	return copied, nil
}

// List returns the snapshot listing in positional order.
func (s *ProjectService) List() []models.ProjectInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]models.ProjectInfo, len(s.projects))
	for i, p := range s.projects {
		infos[i] = models.ProjectInfo{
			Index:      i,
			ID:         p.ID,
			Name:       p.Name,
			CreatedAt:  p.CreatedAt,
			ScriptName: p.ScriptName,
			ClipCount:  len(p.AudioClips),
		}
	}
	return infos
}

// Load replaces the entire working set from the snapshot at index.
// The replacement is all-or-nothing: the snapshot is validated and copied
// before any live state is touched.
func (s *ProjectService) Load(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.projects) {
		return apperrors.NewInvalidStateError(fmt.Sprintf("project index %d out of range", index))
	}

	snapshot := s.projects[index]
	if snapshot.Script == nil {
		return apperrors.NewInvalidStateError("snapshot carries no script")
	}

	// Copy first so the live set never aliases the stored snapshot.
	copied, err := deepCopySnapshot(&snapshot)
	if err != nil {
		return apperrors.NewProcessingError("failed to copy snapshot", err)
	}

	s.script.Restore(copied.Script, copied.Analysis)
	s.voices.Replace(copied.Voices)
	s.audio.ReplaceClips(copied.AudioClips)

	return nil
}

// Delete removes the snapshot at index; snapshots above it shift down.
func (s *ProjectService) Delete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.projects) {
		return apperrors.NewInvalidStateError(fmt.Sprintf("project index %d out of range", index))
	}

	s.projects = append(s.projects[:index], s.projects[index+1:]...)
	return nil
}

// Export serializes the snapshot at index to a durable JSON document and
// writes it under the projects directory. The document bytes are returned
// for download.
func (s *ProjectService) Export(index int) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.projects) {
		return nil, "", apperrors.NewInvalidStateError(fmt.Sprintf("project index %d out of range", index))
	}

	export := models.ProjectExport{
		Version:    models.ExportVersion,
		ExportedAt: time.Now(),
		Snapshot:   s.projects[index],
	}

	filename := fmt.Sprintf("project_%s.json", export.Snapshot.ID)
	if err := s.storage.SaveJSONFile(projectsDir, filename, export); err != nil {
		return nil, "", apperrors.NewProcessingError("failed to write project export", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, "", apperrors.NewProcessingError("failed to serialize project export", err)
	}

	return data, filename, nil
}

// Import parses an exported project document and appends its snapshot to
// the project list. The live working set is not touched; load it explicitly.
func (s *ProjectService) Import(data []byte) (*models.ProjectSnapshot, error) {
	var export models.ProjectExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, apperrors.NewValidationError("malformed project document", err)
	}

	if export.Version != models.ExportVersion {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("unsupported project document version %d", export.Version), nil)
	}
	if export.Snapshot.Script == nil {
		return nil, apperrors.NewValidationError("project document carries no script", nil)
	}

	if export.Snapshot.ID == "" {
		export.Snapshot.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = append(s.projects, export.Snapshot)
	snapshot := export.Snapshot
	return &snapshot, nil
}

// deepCopySnapshot copies a snapshot through its JSON form so the result
// shares no pointers with the source.
func deepCopySnapshot(src *models.ProjectSnapshot) (*models.ProjectSnapshot, error) {
	data, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}

	var dst models.ProjectSnapshot
	if err := json.Unmarshal(data, &dst); err != nil {
		return nil, err
	}

	return &dst, nil
}
