package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/museumai/kiosk/backend/internal/app"
	"github.com/museumai/kiosk/backend/internal/model/persona"
)

func voicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List engine voices and the voice bound to each persona",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := app.NewSpeechService(cmd.Context(), *cfg, persona.Seed())
			if err != nil {
				return err
			}
			if !svc.CanSynthesize() {
				return fmt.Errorf("TTS_PROVIDER=%s has no voices", cfg.Speech.TTSProvider)
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VOICE\tNAME\tLANGUAGES")
			for _, v := range svc.Voices() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v.ID, v.Name, strings.Join(v.Languages, ","))
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "PERSONA\tVOICE")
			for _, b := range svc.Bindings() {
				voice := b.VoiceID
				if !b.HasVoice() {
					voice = "(engine default)"
				}
				fmt.Fprintf(tw, "%s\t%s\n", b.PersonaID, voice)
			}
			return tw.Flush()
		},
	}
}
