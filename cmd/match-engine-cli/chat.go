package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faqdesk-ai/match-engine/internal/ai"
	"github.com/faqdesk-ai/match-engine/internal/chat"
	"github.com/faqdesk-ai/match-engine/internal/matching"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// newChatCmd creates the chat subcommand.
func newChatCmd() *cobra.Command {
	var widgetKey string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat against a tenant's FAQ set from the terminal",
		Long: `Chat opens an interactive session against the configured database,
running the same pipeline the widget uses: lead detection, weighted
keyword matching, optional AI fallback, canned fallback. Conversations
are logged like real widget traffic.

Type /quit to exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ui := NewUI(outputJSON, false)
			defer ui.Close()

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			repos := storage.NewRepositories(db)

			tenant, err := repos.Tenants.GetByWidgetKey(ctx, widgetKey)
			if err != nil {
				return fmt.Errorf("resolve tenant: %w", err)
			}

			service := newChatService(repos)

			ui.Info("Chatting with %q — %d lead triggers, AI %s",
				tenant.Name, len(tenant.Settings.LeadTriggers), onOff(tenant.Settings.AIEnabled && cfg.AI.Enabled))
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

				stop := ui.Spinner("matching...")
				result, err := service.HandleMessage(ctx, tenant, line)
				stop()
				if err != nil {
					ui.Error("chat turn failed: %v", err)
					continue
				}
				printResult(ui, result)
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&widgetKey, "widget-key", "", "tenant widget key")
	cmd.MarkFlagRequired("widget-key")
	return cmd
}

// newChatService assembles the chat service for CLI use: no cache, no
// Redis publishing, AI per the loaded config.
func newChatService(repos *storage.Repositories) *chat.Service {
	router := matching.NewRouter(matching.RouterConfig{
		ConfidenceThreshold:   cfg.Matching.ConfidenceThreshold,
		AIConfidenceThreshold: cfg.Matching.AIConfidenceThreshold,
		FallbackMessage:       cfg.Matching.FallbackMessage,
	}, newAIMatcher(), logger)

	return chat.NewService(chat.StoresFromRepositories(repos), router, nil, nil, logger, chat.Config{
		MaxMessageLen: cfg.Matching.MaxMessageLen,
	})
}

// newAIMatcher builds the configured AI client, or nil when disabled.
func newAIMatcher() matching.AIMatcher {
	if !cfg.AI.Enabled {
		return nil
	}
	client, err := ai.NewClient(ai.Config{
		APIKey:           cfg.AI.APIKey,
		Model:            cfg.AI.Model,
		BaseURL:          cfg.AI.BaseURL,
		Timeout:          cfg.AI.Timeout,
		MaxFAQs:          cfg.AI.MaxFAQs,
		AnswerPreviewLen: cfg.AI.AnswerPreviewLen,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("AI client unavailable, continuing without fallback")
		return nil
	}
	return client
}

// printResult renders one match result for the terminal.
func printResult(ui *UI, result *matching.MatchResult) {
	if outputJSON {
		out, _ := json.Marshal(result)
		fmt.Println(string(out))
		return
	}

	switch result.Kind {
	case matching.ResultLead:
		ui.Bot("%s", result.Message)
		if result.ExtractedEmail != "" {
			ui.Info("captured email: %s", result.ExtractedEmail)
		}
	case matching.ResultFAQ:
		ui.Bot("%s", result.Answer)
		ui.Info("matched %s via %s (confidence %.2f)", result.FAQID, result.Method, result.Confidence)
	default:
		ui.Bot("%s", result.Message)
	}
	fmt.Println()
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
