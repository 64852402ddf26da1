package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	speechmodel "github.com/museumai/kiosk/backend/internal/model/speech"
)

// Chat providers.
const (
	ChatProviderOpenAI = "openai"
	ChatProviderArk    = "ark"
)

// History backends.
const (
	HistoryBackendMemory = "memory"
	HistoryBackendRedis  = "redis"
)

// TTS providers.
const (
	TTSProviderCommand = "command"
	TTSProviderOpenAI  = "openai"
	TTSProviderNone    = "none"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Chat      ChatConfig
	History   HistoryConfig
	Speech    speechmodel.SpeechConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	history, err := loadHistoryConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	rateLimit, err := loadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Chat:      chat,
		History:   history,
		Speech:    speech,
		RateLimit: rateLimit,
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "console"),
		},
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":5000" 或 "127.0.0.1:5000"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// ChatConfig 描述对话模型相关配置。
type ChatConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	Ark      ArkConfig
}

// ArkConfig holds the Volcengine Ark credentials used when Provider is "ark".
type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY (or ARK_ACCESS_KEY + ARK_SECRET_KEY) and ARK_MODEL")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadChatConfig() (ChatConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("CHAT_PROVIDER", ChatProviderOpenAI))
	if provider != ChatProviderOpenAI && provider != ChatProviderArk {
		return ChatConfig{}, fmt.Errorf("invalid CHAT_PROVIDER value %q: want %s or %s", provider, ChatProviderOpenAI, ChatProviderArk)
	}

	timeout, err := parseDurationEnv("CHAT_TIMEOUT", 60*time.Second)
	if err != nil {
		return ChatConfig{}, err
	}

	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return ChatConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return ChatConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return ChatConfig{}, err
	}

	return ChatConfig{
		Provider: provider,
		APIKey:   strings.TrimSpace(os.Getenv("ARLIAI_API_KEY")),
		BaseURL:  getEnvOrDefault("CHAT_BASE_URL", "https://api.arliai.com/v1"),
		Model:    getEnvOrDefault("CHAT_MODEL", "Meta-Llama-3.1-8B-Instruct"),
		Timeout:  timeout,
		Ark: ArkConfig{
			APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
			Temperature: temperature,
			TopP:        topP,
			MaxTokens:   maxTokens,
		},
	}, nil
}

// HistoryConfig 描述对话历史存储配置。
type HistoryConfig struct {
	Backend       string
	MaxHistory    int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

func loadHistoryConfig() (HistoryConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("HISTORY_BACKEND", HistoryBackendMemory))
	if backend != HistoryBackendMemory && backend != HistoryBackendRedis {
		return HistoryConfig{}, fmt.Errorf("invalid HISTORY_BACKEND value %q: want %s or %s", backend, HistoryBackendMemory, HistoryBackendRedis)
	}

	maxHistory, err := parseIntEnv("MAX_HISTORY", 10)
	if err != nil {
		return HistoryConfig{}, err
	}
	if maxHistory < 1 {
		return HistoryConfig{}, fmt.Errorf("invalid MAX_HISTORY value %d: must be at least 1", maxHistory)
	}

	db, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return HistoryConfig{}, err
	}

	return HistoryConfig{
		Backend:       backend,
		MaxHistory:    maxHistory,
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       db,
		RedisPrefix:   getEnvOrDefault("REDIS_PREFIX", "kiosk"),
	}, nil
}

func loadSpeechConfig() (speechmodel.SpeechConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("TTS_PROVIDER", TTSProviderCommand))
	switch provider {
	case TTSProviderCommand, TTSProviderOpenAI, TTSProviderNone:
	default:
		return speechmodel.SpeechConfig{}, fmt.Errorf("invalid TTS_PROVIDER value %q: want %s, %s or %s", provider, TTSProviderCommand, TTSProviderOpenAI, TTSProviderNone)
	}

	rate, err := parseIntEnv("TTS_RATE", 150)
	if err != nil {
		return speechmodel.SpeechConfig{}, err
	}

	// 解析超时设置
	ttsTimeout, err := parseIntEnv("TTS_TIMEOUT", 30)
	if err != nil {
		return speechmodel.SpeechConfig{}, err
	}

	cacheSize, err := parseIntEnv("TTS_CACHE_SIZE", 128)
	if err != nil {
		return speechmodel.SpeechConfig{}, err
	}

	asrTimeout, err := parseIntEnv("ASR_TIMEOUT", 60)
	if err != nil {
		return speechmodel.SpeechConfig{}, err
	}

	prefs, err := parseVoicePreferences(os.Getenv("TTS_VOICE_PREFERENCES"))
	if err != nil {
		return speechmodel.SpeechConfig{}, err
	}

	// 没有专门的 TTS 密钥时复用 OPENAI_API_KEY
	openAIKey := strings.TrimSpace(os.Getenv("OPENAI_TTS_API_KEY"))
	if openAIKey == "" {
		openAIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}

	return speechmodel.SpeechConfig{
		TTSProvider:      provider,
		TTSCommand:       getEnvOrDefault("TTS_COMMAND", "espeak-ng"),
		TTSRate:          rate,
		TTSTimeout:       ttsTimeout,
		TTSCacheSize:     cacheSize,
		VoicePreferences: prefs,
		OpenAIAPIKey:     openAIKey,
		OpenAIBaseURL:    getEnvOrDefault("OPENAI_TTS_BASE_URL", ""),
		OpenAIModel:      getEnvOrDefault("OPENAI_TTS_MODEL", ""),
		ASRURL:           getEnvOrDefault("ASR_URL", "ws://localhost:2700"),
		ASRTimeout:       asrTimeout,
	}, nil
}

// RateLimitConfig 描述按客户端 IP 的限流配置，RPM 为 0 时关闭。
type RateLimitConfig struct {
	RPM   int
	Burst int
}

func loadRateLimitConfig() (RateLimitConfig, error) {
	rpm, err := parseIntEnv("RATE_LIMIT_RPM", 60)
	if err != nil {
		return RateLimitConfig{}, err
	}
	burst, err := parseIntEnv("RATE_LIMIT_BURST", 10)
	if err != nil {
		return RateLimitConfig{}, err
	}
	if rpm < 0 || burst < 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid rate limit: RATE_LIMIT_RPM=%d RATE_LIMIT_BURST=%d", rpm, burst)
	}
	return RateLimitConfig{RPM: rpm, Burst: burst}, nil
}

// LogConfig 描述日志输出配置。
type LogConfig struct {
	Level  string
	Format string
}

// parseVoicePreferences reads "persona=Name,persona=Name".
func parseVoicePreferences(raw string) (map[string]string, error) {
	prefs := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, name, found := strings.Cut(pair, "=")
		id, name = strings.TrimSpace(id), strings.TrimSpace(name)
		if !found || id == "" || name == "" {
			return nil, fmt.Errorf("invalid TTS_VOICE_PREFERENCES entry %q: want persona=name", pair)
		}
		prefs[id] = name
	}
	return prefs, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	return *val, nil
}

// parseDurationEnv accepts Go durations ("90s") or bare seconds ("90").
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
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
