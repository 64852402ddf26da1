package speech

import (
	"testing"

	"github.com/museumai/kiosk/backend/internal/model/persona"
	speechmodel "github.com/museumai/kiosk/backend/internal/model/speech"
)

var sampleVoices = []speechmodel.Voice{
	{ID: "v-hazel", Name: "Microsoft Hazel Desktop"},
	{ID: "v-david", Name: "Microsoft David Desktop"},
	{ID: "v-zira", Name: "Microsoft Zira Desktop"},
}

func TestResolvePrefersNameSubstring(t *testing.T) {
	selector := NewVoiceSelector(nil)

	cases := []struct {
		persona string
		want    string
	}{
		{persona: "isaac_newton", want: "v-david"},
		{persona: "marie_curie", want: "v-zira"},
		{persona: "galileo_galilei", want: "v-hazel"}, // no "Mark" voice
		{persona: "unknown", want: "v-hazel"},
	}

	for _, tc := range cases {
		got, ok := selector.Resolve(tc.persona, sampleVoices)
		if !ok || got != tc.want {
			t.Errorf("Resolve(%s) = %q, %v; want %q", tc.persona, got, ok, tc.want)
		}
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	selector := NewVoiceSelector(map[string]string{"isaac_newton": "zIrA"})
	if got, _ := selector.Resolve("isaac_newton", sampleVoices); got != "v-zira" {
		t.Fatalf("expected override to match zira, got %q", got)
	}
}

func TestResolveWithoutVoices(t *testing.T) {
	selector := NewVoiceSelector(nil)
	if got, ok := selector.Resolve("isaac_newton", nil); ok || got != "" {
		t.Fatalf("expected none, got %q, %v", got, ok)
	}
}

func TestBindVoicesCoversEveryPersona(t *testing.T) {
	selector := NewVoiceSelector(nil)
	personas := persona.Seed()

	bindings := selector.BindVoices(personas, sampleVoices)
	if len(bindings) != len(personas) {
		t.Fatalf("expected %d bindings, got %d", len(personas), len(bindings))
	}
	if !bindings["isaac_newton"].HasVoice() || bindings["isaac_newton"].VoiceID != "v-david" {
		t.Fatalf("unexpected newton binding %+v", bindings["isaac_newton"])
	}

	empty := selector.BindVoices(personas, nil)
	for id, b := range empty {
		if b.HasVoice() {
			t.Fatalf("persona %s bound to %q without voices", id, b.VoiceID)
		}
	}
}
