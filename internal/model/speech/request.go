package speech

// SynthesisRequest asks the synthesizer to speak Text. An empty VoiceID
// selects the engine default.
type SynthesisRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId,omitempty"`
	Rate    int    `json:"rate"`
}

// Voice is one voice the synthesizer can use.
type Voice struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Languages []string `json:"languages,omitempty"`
}
