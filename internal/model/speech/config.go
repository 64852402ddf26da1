package speech

// SpeechConfig 语音服务配置
type SpeechConfig struct {
	// TTS 配置
	TTSProvider      string            `json:"ttsProvider"` // command or openai
	TTSCommand       string            `json:"ttsCommand"`  // espeak-ng compatible binary
	TTSRate          int               `json:"ttsRate"`     // words per minute
	TTSTimeout       int               `json:"ttsTimeout"`  // seconds
	TTSCacheSize     int               `json:"ttsCacheSize"`
	VoicePreferences map[string]string `json:"voicePreferences,omitempty"`

	// OpenAI TTS 配置
	OpenAIAPIKey  string `json:"-"`
	OpenAIBaseURL string `json:"openaiBaseUrl,omitempty"`
	OpenAIModel   string `json:"openaiModel,omitempty"`

	// ASR 配置
	ASRURL     string `json:"asrUrl"`     // vosk-server websocket endpoint
	ASRTimeout int    `json:"asrTimeout"` // seconds
}
