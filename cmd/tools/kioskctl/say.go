package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/museumai/kiosk/backend/internal/app"
	"github.com/museumai/kiosk/backend/internal/model/persona"
)

func sayCmd() *cobra.Command {
	var (
		personaID string
		out       string
	)

	cmd := &cobra.Command{
		Use:   "say [text]",
		Short: "Synthesize text with a persona's voice into an audio file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			personas := persona.NewMemoryStore(persona.Seed())
			if _, err := personas.Get(personaID); err != nil {
				return err
			}

			svc, err := app.NewSpeechService(cmd.Context(), *cfg, personas.List())
			if err != nil {
				return err
			}

			result, err := svc.SynthesizeForPersona(cmd.Context(), personaID, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if out == "" {
				out = "response_audio." + result.Format
			}
			if err := os.WriteFile(out, result.Audio, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes of %s to %s\n", len(result.Audio), result.MimeType, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&personaID, "persona", "p", "isaac_newton", "persona whose voice to use")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default response_audio.<format>)")
	return cmd
}
