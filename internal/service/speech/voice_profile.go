package speech

import (
	"strings"

	"github.com/museumai/kiosk/backend/internal/logging"
	"github.com/museumai/kiosk/backend/internal/model/persona"
	speechmodel "github.com/museumai/kiosk/backend/internal/model/speech"
)

// DefaultVoicePreferences maps persona ids to a substring of the preferred
// voice's display name.
var DefaultVoicePreferences = map[string]string{
	"isaac_newton":     "David",
	"marie_curie":      "Zira",
	"galileo_galilei":  "Mark",
	"dmitri_mendeleev": "Susan",
	"albert_einstein":  "Albert",
}

// VoiceSelector picks a synthesis voice per persona.
type VoiceSelector struct {
	preferences map[string]string
}

// NewVoiceSelector returns a selector using DefaultVoicePreferences with
// overrides layered on top.
func NewVoiceSelector(overrides map[string]string) *VoiceSelector {
	prefs := make(map[string]string, len(DefaultVoicePreferences)+len(overrides))
	for id, name := range DefaultVoicePreferences {
		prefs[id] = name
	}
	for id, name := range overrides {
		prefs[id] = name
	}
	return &VoiceSelector{preferences: prefs}
}

// Resolve returns the first voice whose name contains the persona's
// preferred substring (case-insensitive), else the first available voice.
// ok is false only when available is empty.
func (s *VoiceSelector) Resolve(personaID string, available []speechmodel.Voice) (string, bool) {
	if len(available) == 0 {
		return "", false
	}
	if want := strings.ToLower(strings.TrimSpace(s.preferences[personaID])); want != "" {
		for _, v := range available {
			if strings.Contains(strings.ToLower(v.Name), want) {
				return v.ID, true
			}
		}
	}
	return available[0].ID, true
}

// BindVoices resolves a voice for every persona.
func (s *VoiceSelector) BindVoices(personas []persona.Persona, available []speechmodel.Voice) map[string]speechmodel.VoiceBinding {
	logger := logging.For("speech")
	bindings := make(map[string]speechmodel.VoiceBinding, len(personas))
	for _, p := range personas {
		voiceID, ok := s.Resolve(p.ID, available)
		bindings[p.ID] = speechmodel.VoiceBinding{PersonaID: p.ID, VoiceID: voiceID}
		if !ok {
			logger.Warn().Str("persona", p.ID).Msg("no voice available for persona")
			continue
		}
		logger.Info().Str("persona", p.ID).Str("voice", voiceID).Msg("voice bound")
	}
	return bindings
}
