package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/museumai/kiosk/backend/internal/app"
	"github.com/museumai/kiosk/backend/internal/model/persona"
	"github.com/museumai/kiosk/backend/internal/service/ai"
)

func chatCmd() *cobra.Command {
	var (
		personaID string
		message   string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to a persona interactively or send a one-shot message",
		Long: `Talk to a persona through the configured chat provider.

Examples:
  kioskctl chat                              # Interactive session with Newton
  kioskctl chat -p marie_curie               # Interactive session with Curie
  kioskctl chat -m "What is gravity?"        # One-shot message`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			personas := persona.NewMemoryStore(persona.Seed())
			p, err := personas.Get(personaID)
			if err != nil {
				return err
			}

			history, err := app.NewHistory(cmd.Context(), cfg.History)
			if err != nil {
				return err
			}
			defer history.Close()

			dialogue, _, err := app.NewDialogue(cmd.Context(), cfg.Chat, personas, history.Store)
			if err != nil {
				return err
			}

			if message != "" {
				return sendTurn(cmd, dialogue, p, message)
			}

			fmt.Printf("Talking to %s. Empty line or Ctrl-D to quit.\n", p.Name)
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					return nil
				}
				if err := sendTurn(cmd, dialogue, p, line); err != nil {
					var upstream *ai.UpstreamChatError
					if errors.As(err, &upstream) || errors.Is(err, ai.ErrUpstreamTimeout) || errors.Is(err, ai.ErrEmptyUpstreamResponse) {
						fmt.Fprintln(os.Stderr, "error:", err)
						continue
					}
					return err
				}
			}
		},
	}

	cmd.Flags().StringVarP(&personaID, "persona", "p", "isaac_newton", "persona to talk to")
	cmd.Flags().StringVarP(&message, "message", "m", "", "one-shot message (omit for interactive mode)")
	return cmd
}

func sendTurn(cmd *cobra.Command, dialogue *ai.DialogueSession, p persona.Persona, text string) error {
	reply, err := dialogue.Respond(cmd.Context(), p.ID, text)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", p.Name, reply.Text)
	return nil
}
