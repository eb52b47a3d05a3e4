// internal/api/router.go
package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SetupRouter builds the gin engine with all routes and middleware.
func SetupRouter(handler *Handler) *gin.Engine {
	r := gin.Default()

	r.Use(requestIDMiddleware())
	r.Use(corsMiddleware())
	r.Use(rateLimitMiddleware(rate.Limit(20), 40))

	// Progress stream (websocket, outside the /api group)
	r.GET("/ws/progress/:taskID", handler.handleProgressWS)

	api := r.Group("/api")
	{
		api.GET("/health", handler.HealthCheck)

		scripts := api.Group("/scripts")
		{
			scripts.POST("/upload", handler.UploadScript)
			scripts.POST("/clear", handler.ClearScript)
			scripts.GET("/current", handler.GetScriptOverview)
			scripts.GET("/analysis", handler.GetAnalysis)
			scripts.GET("/dialogues", handler.GetDialogues)
		}

		api.GET("/voices", handler.GetVoices)
		api.PUT("/voices/:character", handler.AssignVoice)

		api.PUT("/dialogues/:index/emotion", handler.SetEmotion)

		audio := api.Group("/audio")
		{
			audio.POST("/generate", handler.GenerateAudio)
			audio.POST("/generate-all", handler.GenerateAllAudio)
			audio.POST("/clear", handler.ClearAudio)
			audio.GET("/clips", handler.GetAudioClips)
		}

		api.POST("/cancel/:taskID", handler.CancelTask)

		projects := api.Group("/projects")
		{
			projects.GET("", handler.ListProjects)
			projects.POST("", handler.SaveProject)
			projects.POST("/import", handler.ImportProject)
			projects.POST("/:index/load", handler.LoadProject)
			projects.DELETE("/:index", handler.DeleteProject)
			projects.GET("/:index/export", handler.ExportProject)
		}

		providers := api.Group("/providers")
		{
			providers.GET("/status", handler.GetProviderStatus)
			providers.PUT("/nlp", handler.UpdateNLPProvider)
			providers.PUT("/tts", handler.UpdateTTSProvider)
		}
	}

	return r
}
