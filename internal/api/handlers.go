// internal/api/handlers.go
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scriptecho/scriptreader/internal/config"
	"github.com/scriptecho/scriptreader/internal/nlp"
	"github.com/scriptecho/scriptreader/internal/services"
	"github.com/scriptecho/scriptreader/internal/tts"
	"github.com/scriptecho/scriptreader/internal/utils"
)

// maxUploadBytes caps uploaded script files at 10 MB.
const maxUploadBytes = 10 << 20

// Handler exposes the script reader services over HTTP.
type Handler struct {
	script   *services.ScriptService
	analyzer *services.AnalyzerService
	voices   *services.VoiceStore
	audio    *services.AudioService
	projects *services.ProjectService
	progress *services.ProgressService

	response *ResponseHelper
}

// NewHandler wires the handler over the service layer.
func NewHandler(
	script *services.ScriptService,
	analyzer *services.AnalyzerService,
	voices *services.VoiceStore,
	audio *services.AudioService,
	projects *services.ProjectService,
	progress *services.ProgressService,
) *Handler {
	return &Handler{
		script:   script,
		analyzer: analyzer,
		voices:   voices,
		audio:    audio,
		projects: projects,
		progress: progress,
		response: NewResponseHelper(),
	}
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	h.response.Success(c, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// UploadScript accepts a script file and runs the full pipeline:
// extract, parse, analyze, then replace the working set.
func (h *Handler) UploadScript(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.response.Error(c, http.StatusBadRequest, ErrorFileUploadFailed, "missing file field")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		h.response.Error(c, http.StatusBadRequest, ErrorFileUploadFailed,
			fmt.Sprintf("file too large: %d bytes (limit %d)", fileHeader.Size, maxUploadBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.response.Error(c, http.StatusBadRequest, ErrorFileUploadFailed, "failed to open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.response.Error(c, http.StatusBadRequest, ErrorFileUploadFailed, "failed to read uploaded file")
		return
	}

	doc, analysis, err := h.script.ProcessUpload(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		utils.GetLogger().Warnf("upload of %s rejected: %v", fileHeader.Filename, err)
		h.response.AppError(c, err)
		return
	}

	utils.GetLogger().Infof("script %s loaded: %d scenes, %d dialogue lines",
		doc.Name, len(doc.Scenes), len(doc.Dialogues))

	h.response.Created(c, gin.H{
		"script":   doc,
		"analysis": analysis,
	}, "script processed")
}

// ClearScript drops the working set.
func (h *Handler) ClearScript(c *gin.Context) {
	h.script.Clear()
	h.response.Success(c, nil, "working set cleared")
}

// GetScriptOverview summarizes the working set.
func (h *Handler) GetScriptOverview(c *gin.Context) {
	overview, err := h.script.Overview()
	if err != nil {
		h.response.AppError(c, err)
		return
	}
	h.response.Success(c, overview)
}

// GetAnalysis returns the full analysis result.
func (h *Handler) GetAnalysis(c *gin.Context) {
	_, analysis, err := h.script.Current()
	if err != nil {
		h.response.AppError(c, err)
		return
	}
	h.response.Success(c, analysis)
}

// GetDialogues returns the dialogue lines of the current script.
func (h *Handler) GetDialogues(c *gin.Context) {
	dialogues, err := h.script.Dialogues()
	if err != nil {
		h.response.AppError(c, err)
		return
	}
	h.response.Success(c, dialogues)
}

// GetVoices returns the voice catalogue plus the current assignments.
func (h *Handler) GetVoices(c *gin.Context) {
	h.response.Success(c, gin.H{
		"voices":      h.voices.Catalogue(h.audio.Synthesizer()),
		"assignments": h.voices.Assignments(),
	})
}

// AssignVoice maps one character to a voice.
func (h *Handler) AssignVoice(c *gin.Context) {
	character := c.Param("character")

	var req struct {
		VoiceID string `json:"voice_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.voices.SetVoice(character, req.VoiceID); err != nil {
		h.response.AppError(c, err)
		return
	}

	h.response.Success(c, gin.H{
		"character": character,
		"voice_id":  req.VoiceID,
	}, "voice assigned")
}

// SetEmotion applies an emotion to one dialogue line.
func (h *Handler) SetEmotion(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.response.BadRequest(c, "dialogue index must be an integer")
		return
	}

	var req struct {
		Emotion string `json:"emotion"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.script.SetEmotion(index, req.Emotion); err != nil {
		h.response.AppError(c, err)
		return
	}

	h.response.Success(c, gin.H{
		"index":   index,
		"emotion": req.Emotion,
	}, "emotion updated")
}

// GenerateAudio synthesizes a single dialogue line.
func (h *Handler) GenerateAudio(c *gin.Context) {
	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.BadRequest(c, "invalid request body")
		return
	}

	clip, err := h.audio.GenerateLine(c.Request.Context(), h.script.Script(), req.Index)
	if err != nil {
		h.response.AppError(c, err)
		return
	}

	h.response.Success(c, clip, "audio generated")
}

// GenerateAllAudio starts a batch generation task and returns its id.
// Progress streams over /ws/progress/:taskID; the task can be cancelled
// through /api/cancel/:taskID.
func (h *Handler) GenerateAllAudio(c *gin.Context) {
	doc := h.script.Script()
	if doc == nil {
		h.response.Error(c, http.StatusConflict, ErrorInvalidState, "no script loaded")
		return
	}
	if len(doc.Dialogues) == 0 {
		h.response.Error(c, http.StatusConflict, ErrorInvalidState, "script has no dialogue lines")
		return
	}

	taskID := uuid.NewString()
	tracker := h.progress.CreateTracker(taskID)

	go func() {
		summary, err := h.audio.GenerateAll(context.Background(), doc, tracker)
		if err != nil {
			utils.GetLogger().Errorf("batch generation %s failed: %v", taskID, err)
			tracker.Fail(err.Error())
			return
		}

		if summary.Cancelled {
			tracker.MarkCancelled(fmt.Sprintf("cancelled after %d of %d lines",
				summary.Generated+summary.Skipped+summary.Failed, summary.Total))
			return
		}

		tracker.Complete(fmt.Sprintf("generated %d, skipped %d, failed %d",
			summary.Generated, summary.Skipped, summary.Failed))
	}()

	h.response.Success(c, gin.H{
		"task_id": taskID,
		"total":   len(doc.Dialogues),
	}, "batch generation started")
}

// ClearAudio empties the clip cache.
func (h *Handler) ClearAudio(c *gin.Context) {
	h.audio.ClearClips()
	h.response.Success(c, nil, "audio clips cleared")
}

// GetAudioClips lists the generated clips in playback order.
func (h *Handler) GetAudioClips(c *gin.Context) {
	h.response.Success(c, h.audio.Clips())
}

// CancelTask requests cooperative cancellation of a running task.
func (h *Handler) CancelTask(c *gin.Context) {
	taskID := c.Param("taskID")

	tracker, exists := h.progress.GetTracker(taskID)
	if !exists {
		h.response.Error(c, http.StatusNotFound, ErrorTaskNotFound, "unknown task: "+taskID)
		return
	}

	tracker.Cancel()
	h.response.Success(c, gin.H{"task_id": taskID}, "cancellation requested")
}

// ListProjects returns the saved snapshots in positional order.
func (h *Handler) ListProjects(c *gin.Context) {
	h.response.Success(c, h.projects.List())
}

// SaveProject snapshots the current working set.
func (h *Handler) SaveProject(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	// An empty body is fine; the service picks a dated default name.
	c.ShouldBindJSON(&req)

	snapshot, err := h.projects.Save(req.Name)
	if err != nil {
		h.response.AppError(c, err)
		return
	}

	h.response.Created(c, gin.H{
		"id":   snapshot.ID,
		"name": snapshot.Name,
	}, "project saved")
}

// LoadProject restores the working set from the snapshot at index.
func (h *Handler) LoadProject(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.response.BadRequest(c, "project index must be an integer")
		return
	}

	if err := h.projects.Load(index); err != nil {
		h.response.AppError(c, err)
		return
	}

	h.response.Success(c, gin.H{"index": index}, "project loaded")
}

// DeleteProject removes the snapshot at index.
func (h *Handler) DeleteProject(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.response.BadRequest(c, "project index must be an integer")
		return
	}

	if err := h.projects.Delete(index); err != nil {
		h.response.AppError(c, err)
		return
	}

	h.response.Success(c, gin.H{"index": index}, "project deleted")
}

// ExportProject serializes the snapshot at index as a JSON download.
func (h *Handler) ExportProject(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.response.BadRequest(c, "project index must be an integer")
		return
	}

	data, filename, err := h.projects.Export(index)
	if err != nil {
		h.response.AppError(c, err)
		return
	}

	h.response.DownloadResponse(c, data, filename, "application/json")
}

// ImportProject parses an exported project document and appends it to the
// project list.
func (h *Handler) ImportProject(c *gin.Context) {
	data, err := h.readImportPayload(c)
	if err != nil {
		h.response.Error(c, http.StatusBadRequest, ErrorProjectImportFailed, err.Error())
		return
	}

	snapshot, err := h.projects.Import(data)
	if err != nil {
		h.response.AppError(c, err)
		return
	}

	h.response.Created(c, gin.H{
		"id":   snapshot.ID,
		"name": snapshot.Name,
	}, "project imported")
}

// readImportPayload accepts either a multipart "file" field or a raw JSON body.
func (h *Handler) readImportPayload(c *gin.Context) ([]byte, error) {
	if fileHeader, err := c.FormFile("file"); err == nil {
		if fileHeader.Size > maxUploadBytes {
			return nil, fmt.Errorf("file too large: %d bytes", fileHeader.Size)
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file")
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes))
	if err != nil || len(data) == 0 {
		return nil, fmt.Errorf("empty import payload")
	}
	return data, nil
}

// GetProviderStatus reports which capability providers are configured.
func (h *Handler) GetProviderStatus(c *gin.Context) {
	cfg := config.GetCurrentConfig()

	nlpReady := h.analyzer.Capability() != nil
	ttsReady := h.audio.Synthesizer() != nil

	h.response.Success(c, gin.H{
		"nlp": gin.H{
			"provider":  cfg.NLPProvider,
			"ready":     nlpReady,
			"available": nlp.ListProviders(),
		},
		"tts": gin.H{
			"provider":  cfg.TTSProvider,
			"ready":     ttsReady,
			"available": tts.ListProviders(),
		},
	})
}

// UpdateNLPProvider swaps the analysis capability at runtime.
func (h *Handler) UpdateNLPProvider(c *gin.Context) {
	var req struct {
		Provider string            `json:"provider"`
		Config   map[string]string `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Provider == "" {
		h.response.BadRequest(c, "provider name is required")
		return
	}

	capability, err := nlp.GetProvider(req.Provider, req.Config)
	if err != nil {
		h.response.Error(c, http.StatusBadRequest, ErrorProviderInvalid, err.Error())
		return
	}

	if err := config.UpdateNLPConfig(req.Provider, req.Config); err != nil {
		h.response.InternalError(c, "failed to persist provider settings")
		return
	}

	h.analyzer.SetCapability(capability)
	h.response.Success(c, gin.H{"provider": req.Provider}, "analysis provider updated")
}

// UpdateTTSProvider swaps the speech capability at runtime.
func (h *Handler) UpdateTTSProvider(c *gin.Context) {
	var req struct {
		Provider string            `json:"provider"`
		Config   map[string]string `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Provider == "" {
		h.response.BadRequest(c, "provider name is required")
		return
	}

	synth, err := tts.GetProvider(req.Provider, req.Config)
	if err != nil {
		h.response.Error(c, http.StatusBadRequest, ErrorProviderInvalid, err.Error())
		return
	}

	if err := config.UpdateTTSConfig(req.Provider, req.Config); err != nil {
		h.response.InternalError(c, "failed to persist provider settings")
		return
	}

	h.audio.SetSynthesizer(synth)
	h.response.Success(c, gin.H{"provider": req.Provider}, "speech provider updated")
}
