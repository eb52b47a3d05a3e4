// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// Singleton runtime configuration.
var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// AppConfig holds the full application configuration, including the
// runtime-editable provider settings persisted to data/config.json.
type AppConfig struct {
	Port      string `json:"port"`
	DataDir   string `json:"data_dir"`
	LogDir    string `json:"log_dir"`
	DebugMode bool   `json:"debug_mode"`

	// Capability provider configuration
	NLPProvider string            `json:"nlp_provider"`
	NLPConfig   map[string]string `json:"nlp_config"`
	TTSProvider string            `json:"tts_provider"`
	TTSConfig   map[string]string `json:"tts_config"`
}

// Config is the base configuration read from the environment.
type Config struct {
	Port         string
	DataDir      string
	LogDir       string
	DebugMode    bool
	OpenAIAPIKey string
	HumeAPIKey   string
	NLPProvider  string
	TTSProvider  string
}

// Load reads configuration from the environment (with optional .env file).
func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Port:         getEnv("PORT", "8080"),
		DataDir:      getEnvPath("DATA_DIR", "data"),
		LogDir:       getEnvPath("LOG_DIR", "logs"),
		DebugMode:    getEnvBool("DEBUG_MODE", true),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		HumeAPIKey:   getEnv("HUME_API_KEY", ""),
		NLPProvider:  getEnv("NLP_PROVIDER", "openai"),
		TTSProvider:  getEnv("TTS_PROVIDER", "hume"),
	}

	if config.OpenAIAPIKey == "" {
		log.Println("warning: OPENAI_API_KEY not set; script analysis requires a configured provider")
	}
	if config.HumeAPIKey == "" {
		log.Println("warning: HUME_API_KEY not set; audio generation requires a configured provider")
	}

	return config, nil
}

// getEnv returns an environment variable or a default.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath returns a path from the environment, creating the directory.
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Printf("warning: failed to create directory %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool reads a boolean environment variable.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// InitConfig initializes the persisted configuration under dataDir.
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	baseConfig, err := Load()
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	currentConfig = &AppConfig{
		Port:        baseConfig.Port,
		DataDir:     baseConfig.DataDir,
		LogDir:      baseConfig.LogDir,
		DebugMode:   baseConfig.DebugMode,
		NLPProvider: baseConfig.NLPProvider,
		NLPConfig: map[string]string{
			"api_key":       baseConfig.OpenAIAPIKey,
			"default_model": "gpt-4o",
		},
		TTSProvider: baseConfig.TTSProvider,
		TTSConfig: map[string]string{
			"api_key":       baseConfig.HumeAPIKey,
			"default_voice": "voice1",
		},
	}

	// Merge any previously saved provider settings; the base (env) values
	// always win for paths and the port.
	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		data, err := os.ReadFile(configFile)
		if err == nil {
			var savedConfig AppConfig
			if json.Unmarshal(data, &savedConfig) == nil {
				savedConfig.Port = baseConfig.Port
				savedConfig.DataDir = baseConfig.DataDir
				savedConfig.LogDir = baseConfig.LogDir
				savedConfig.DebugMode = baseConfig.DebugMode

				if savedConfig.NLPConfig != nil && savedConfig.NLPConfig["api_key"] == "" {
					savedConfig.NLPConfig["api_key"] = baseConfig.OpenAIAPIKey
				}
				if savedConfig.TTSConfig != nil && savedConfig.TTSConfig["api_key"] == "" {
					savedConfig.TTSConfig["api_key"] = baseConfig.HumeAPIKey
				}

				currentConfig = &savedConfig
			}
		}
	}

	return saveConfigLocked()
}

// GetCurrentConfig returns a copy of the current configuration.
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		baseConfig, _ := Load()
		return &AppConfig{
			Port:        baseConfig.Port,
			DataDir:     baseConfig.DataDir,
			LogDir:      baseConfig.LogDir,
			DebugMode:   baseConfig.DebugMode,
			NLPProvider: baseConfig.NLPProvider,
			NLPConfig:   map[string]string{"api_key": baseConfig.OpenAIAPIKey},
			TTSProvider: baseConfig.TTSProvider,
			TTSConfig:   map[string]string{"api_key": baseConfig.HumeAPIKey},
		}
	}

	configCopy := *currentConfig
	return &configCopy
}

// UpdateNLPConfig replaces the NLP provider settings and persists them.
func UpdateNLPConfig(provider string, config map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	currentConfig.NLPProvider = provider
	currentConfig.NLPConfig = config

	return saveConfigLocked()
}

// UpdateTTSConfig replaces the TTS provider settings and persists them.
func UpdateTTSConfig(provider string, config map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	currentConfig.TTSProvider = provider
	currentConfig.TTSConfig = config

	return saveConfigLocked()
}

// saveConfigLocked writes the current configuration to disk.
// Callers must hold configMutex.
func saveConfigLocked() error {
	if currentConfig == nil {
		return fmt.Errorf("no configuration to save")
	}

	dir := filepath.Dir(configFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(currentConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	return os.WriteFile(configFile, data, 0644)
}
