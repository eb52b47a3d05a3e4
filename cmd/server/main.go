// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scriptecho/scriptreader/internal/api"
	"github.com/scriptecho/scriptreader/internal/config"
	"github.com/scriptecho/scriptreader/internal/di"
	"github.com/scriptecho/scriptreader/internal/nlp"
	"github.com/scriptecho/scriptreader/internal/parser"
	"github.com/scriptecho/scriptreader/internal/services"
	"github.com/scriptecho/scriptreader/internal/storage"
	"github.com/scriptecho/scriptreader/internal/tts"
	"github.com/scriptecho/scriptreader/internal/utils"

	// Capability providers register themselves on import.
	_ "github.com/scriptecho/scriptreader/internal/nlp/providers/canned"
	_ "github.com/scriptecho/scriptreader/internal/nlp/providers/openai"
	_ "github.com/scriptecho/scriptreader/internal/tts/providers/canned"
	_ "github.com/scriptecho/scriptreader/internal/tts/providers/hume"
)

func main() {
	log.Println("starting script reader server...")

	// 1. Load the base configuration
	baseConfig, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// 2. Create the required directories
	createDirectories(baseConfig)

	// 3. Initialize the persisted configuration
	if err := config.InitConfig(baseConfig.DataDir); err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}

	// 4. Initialize logging
	if err := utils.InitLogger(filepath.Join(baseConfig.LogDir, "server.log")); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	if baseConfig.DebugMode {
		utils.GetLogger().SetLogLevel(utils.DEBUG)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. Build services in dependency order
	handler, err := initServices()
	if err != nil {
		log.Fatalf("failed to initialize services: %v", err)
	}

	if err := performHealthCheck(); err != nil {
		log.Printf("warning: service health check: %v", err)
	}

	// 6. Set up routes and serve
	router := api.SetupRouter(handler)

	log.Printf("server listening on port %s", baseConfig.Port)
	setupGracefulShutdown(router, baseConfig.Port)
}

// initServices constructs the service graph and registers it in the
// dependency container.
func initServices() (*api.Handler, error) {
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()

	store, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	capability, err := nlp.GetProvider(cfg.NLPProvider, cfg.NLPConfig)
	if err != nil {
		utils.GetLogger().Warnf("NLP provider %q unavailable: %v; analysis disabled until configured", cfg.NLPProvider, err)
		capability = nil
	}

	synth, err := tts.GetProvider(cfg.TTSProvider, cfg.TTSConfig)
	if err != nil {
		utils.GetLogger().Warnf("TTS provider %q unavailable: %v; audio generation disabled until configured", cfg.TTSProvider, err)
		synth = nil
	}

	voices := services.NewVoiceStore()
	analyzer := services.NewAnalyzerService(capability)
	audio := services.NewAudioService(synth, voices)
	script := services.NewScriptService(parser.NewParser(), analyzer, voices, audio)
	projects := services.NewProjectService(script, voices, audio, store)
	progress := services.NewProgressService()

	container.Register("storage", store)
	container.Register("voices", voices)
	container.Register("analyzer", analyzer)
	container.Register("audio", audio)
	container.Register("script", script)
	container.Register("projects", projects)
	container.Register("progress", progress)

	// Finished trackers are swept every ten minutes.
	go func() {
		for range time.Tick(10 * time.Minute) {
			progress.CleanupCompletedTasks(30 * time.Minute)
		}
	}()

	return api.NewHandler(script, analyzer, voices, audio, projects, progress), nil
}

// performHealthCheck verifies the critical services are registered.
func performHealthCheck() error {
	container := di.GetContainer()

	criticalServices := []string{"script", "analyzer", "audio", "projects", "progress"}

	for _, serviceName := range criticalServices {
		if service := container.Get(serviceName); service == nil {
			return fmt.Errorf("critical service not registered: %s", serviceName)
		}
	}

	return nil
}

// setupGracefulShutdown serves until SIGINT/SIGTERM, then drains.
func setupGracefulShutdown(router *gin.Engine, port string) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced server shutdown: %v", err)
	}

	log.Println("server stopped")
}

// createDirectories creates the directory layout the server expects.
func createDirectories(cfg *config.Config) {
	dirs := []string{
		cfg.DataDir,
		filepath.Join(cfg.DataDir, "projects"),
		cfg.LogDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}
}
