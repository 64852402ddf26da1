package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/museumai/kiosk/backend/internal/app"
)

func transcribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <file.wav>",
		Short: "Transcribe a mono 16-bit 16 kHz WAV file through the recognizer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			audio, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text, err := app.NewTranscriber(*cfg).Transcribe(cmd.Context(), audio)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}
