package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faqdesk-ai/match-engine/internal/matching"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// newDemoCmd creates the demo subcommand.
func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the matching pipeline against the demo FAQ set, no database",
		Long: `Demo runs an interactive session entirely in memory: the built-in demo
FAQ set, default lead triggers, no database, no AI. Useful for a first
look at how lead detection and weighted keyword scoring behave.

Type /quit to exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ui := NewUI(outputJSON, false)
			defer ui.Close()

			router := matching.NewRouter(matching.RouterConfig{
				ConfidenceThreshold:   cfg.Matching.ConfidenceThreshold,
				AIConfidenceThreshold: cfg.Matching.AIConfidenceThreshold,
				FallbackMessage:       cfg.Matching.FallbackMessage,
			}, nil, logger)

			faqs := toMatchingFAQs(demoFAQs())
			settings := storage.DefaultBotSettings()

			ui.Info("Demo mode: %d FAQs, lead triggers: %s", len(faqs), strings.Join(settings.LeadTriggers, ", "))
			ui.Info("Try: \"what are your hours\", \"how much does it cost\", \"talk to sales\"")
			fmt.Println()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("you> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "/quit" || line == "/exit" {
					break
				}

				result := router.Match(ctx, &matching.MatchRequest{
					Message:         line,
					FAQs:            faqs,
					LeadTriggers:    settings.LeadTriggers,
					LeadPrompt:      settings.LeadPrompt,
					FallbackMessage: settings.FallbackMessage,
				})
				printResult(ui, result)
			}
			return scanner.Err()
		},
	}
}
