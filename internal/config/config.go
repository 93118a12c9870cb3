package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates every tunable of the concierge backend.
type Config struct {
	Server     ServerConfig
	Gemini     GeminiConfig
	Credential CredentialConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	gemini, err := loadGeminiConfig()
	if err != nil {
		return nil, err
	}

	credential, err := loadCredentialConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Gemini: gemini, Credential: credential}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// GeminiConfig describes the generation, transcription and speech models
// plus the geographic retrieval bias for the maps tool.
type GeminiConfig struct {
	APIKey          string
	ChatModel       string
	TranscribeModel string
	TTSModel        string
	TTSVoice        string
	Temperature     float64
	Latitude        float64
	Longitude       float64
	TimeoutSeconds  int
}

// Enabled reports whether a key is configured at all. The gateway still
// re-checks per call so a key acquired after startup is picked up.
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadGeminiConfig() (GeminiConfig, error) {
	temperature, err := parseOptionalFloatEnv("GEMINI_TEMPERATURE")
	if err != nil {
		return GeminiConfig{}, err
	}
	// Low temperature keeps the concierge factual.
	temp := 0.15
	if temperature != nil {
		temp = *temperature
	}

	timeout, err := parseOptionalIntEnv("GEMINI_TIMEOUT")
	if err != nil {
		return GeminiConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	lat, err := parseOptionalFloatEnv("GEMINI_RETRIEVAL_LAT")
	if err != nil {
		return GeminiConfig{}, err
	}
	lng, err := parseOptionalFloatEnv("GEMINI_RETRIEVAL_LNG")
	if err != nil {
		return GeminiConfig{}, err
	}
	// Noosa Heads.
	latitude, longitude := -26.3945, 153.0864
	if lat != nil {
		latitude = *lat
	}
	if lng != nil {
		longitude = *lng
	}

	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("API_KEY"))
	}

	return GeminiConfig{
		APIKey:          apiKey,
		ChatModel:       getEnvOrDefault("GEMINI_CHAT_MODEL", "gemini-2.5-flash"),
		TranscribeModel: getEnvOrDefault("GEMINI_TRANSCRIBE_MODEL", "gemini-3-flash-preview"),
		TTSModel:        getEnvOrDefault("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		TTSVoice:        getEnvOrDefault("GEMINI_TTS_VOICE", "Kore"),
		Temperature:     temp,
		Latitude:        latitude,
		Longitude:       longitude,
		TimeoutSeconds:  timeoutSeconds,
	}, nil
}

// CredentialConfig describes the key bootstrap collaborator.
type CredentialConfig struct {
	// BridgeURL, when set, points at a host bridge that manages key
	// selection on our behalf. Empty means the key is locally managed.
	BridgeURL string
	// StatePath is where the "previously connected" flag persists.
	StatePath string
	// ProbeTimeoutMillis bounds the HasCredential check.
	ProbeTimeoutMillis int
}

func loadCredentialConfig() (CredentialConfig, error) {
	probe, err := parseOptionalIntEnv("CREDENTIAL_PROBE_TIMEOUT_MS")
	if err != nil {
		return CredentialConfig{}, err
	}
	probeMillis := 1000
	if probe != nil {
		probeMillis = *probe
	}

	return CredentialConfig{
		BridgeURL:          strings.TrimSpace(os.Getenv("CREDENTIAL_BRIDGE_URL")),
		StatePath:          getEnvOrDefault("CREDENTIAL_STATE_PATH", ".noosa26-state.json"),
		ProbeTimeoutMillis: probeMillis,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
