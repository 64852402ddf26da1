package speech

// SynthesisResult 语音合成结果
type SynthesisResult struct {
	Audio    []byte `json:"-"`
	Format   string `json:"format"`   // mp3, wav
	MimeType string `json:"mimeType"` // audio/mpeg, audio/wav
}

// VoiceBinding is the voice chosen for a persona at startup. VoiceID is
// empty when no voice was available.
type VoiceBinding struct {
	PersonaID string `json:"personaId"`
	VoiceID   string `json:"voiceId,omitempty"`
}

// HasVoice reports whether a voice was bound.
func (b VoiceBinding) HasVoice() bool {
	return b.VoiceID != ""
}
