package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/faqdesk-ai/match-engine/internal/matching"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// newEvalCmd creates the eval subcommand.
func newEvalCmd() *cobra.Command {
	var (
		widgetKey string
		queryFile string
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a query file against a tenant's FAQ set",
		Long: `Eval runs a list of sample questions through the matching pipeline
concurrently and reports per-query outcomes plus the overall hit rate.

The query file has one query per line; an optional expected FAQ ID
follows after a tab:

    how much does it cost<TAB>pricing
    what are your hours<TAB>hours

Without --file, a built-in demo query set is used.`,
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

			faqs, err := repos.FAQs.ListByTenant(ctx, tenant.ID)
			if err != nil {
				return fmt.Errorf("load faqs: %w", err)
			}

			items, err := loadEvalItems(queryFile)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("no queries to evaluate")
			}

			router := matching.NewRouter(matching.RouterConfig{
				ConfidenceThreshold:   cfg.Matching.ConfidenceThreshold,
				AIConfidenceThreshold: cfg.Matching.AIConfidenceThreshold,
				FallbackMessage:       cfg.Matching.FallbackMessage,
			}, newAIMatcher(), logger)

			processor := matching.NewBatchProcessor(router, workers, 2*time.Minute)

			base := &matching.MatchRequest{
				FAQs:         toMatchingFAQs(faqs),
				LeadTriggers: tenant.Settings.LeadTriggers,
				AIEnabled:    tenant.Settings.AIEnabled && cfg.AI.Enabled,
			}

			bar := ui.ProgressBar("evaluating", int64(len(items)))
			start := time.Now()
			outcomes, err := processor.Run(ctx, base, items)
			if bar != nil {
				bar.SetCurrent(int64(len(items)))
			}
			if err != nil {
				return fmt.Errorf("evaluation: %w", err)
			}
			elapsed := time.Since(start)

			return reportOutcomes(ui, outcomes, elapsed)
		},
	}

	cmd.Flags().StringVar(&widgetKey, "widget-key", "", "tenant widget key")
	cmd.Flags().StringVar(&queryFile, "file", "", "query file (one query per line, optional <TAB>expected-faq-id)")
	cmd.Flags().IntVar(&workers, "workers", 5, "concurrent evaluation workers")
	cmd.MarkFlagRequired("widget-key")
	return cmd
}

// loadEvalItems parses a query file, or falls back to the demo set.
func loadEvalItems(path string) ([]matching.BatchItem, error) {
	if path == "" {
		items := make([]matching.BatchItem, len(demoQueries))
		for i, q := range demoQueries {
			items[i] = matching.BatchItem{Message: q.Message, ExpectedFAQID: q.Expected}
		}
		return items, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open query file: %w", err)
	}
	defer f.Close()

	var items []matching.BatchItem
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		item := matching.BatchItem{Message: line}
		if idx := strings.IndexByte(line, '\t'); idx >= 0 {
			item.Message = strings.TrimSpace(line[:idx])
			item.ExpectedFAQID = strings.TrimSpace(line[idx+1:])
		}
		items = append(items, item)
	}
	return items, scanner.Err()
}

// reportOutcomes prints the per-query table and summary.
func reportOutcomes(ui *UI, outcomes []matching.BatchOutcome, elapsed time.Duration) error {
	scored := 0
	hits := 0
	for _, o := range outcomes {
		if o.Item.ExpectedFAQID != "" {
			scored++
			if o.Hit {
				hits++
			}
		}
	}

	if outputJSON {
		out, err := json.Marshal(map[string]interface{}{
			"outcomes":   outcomes,
			"scored":     scored,
			"hits":       hits,
			"elapsed_ms": elapsed.Milliseconds(),
		})
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	for _, o := range outcomes {
		mark := " "
		if o.Item.ExpectedFAQID != "" {
			if o.Hit {
				mark = "✓"
			} else {
				mark = "✗"
			}
		}
		switch o.Result.Kind {
		case matching.ResultFAQ:
			fmt.Printf("%s %-40s → %s (%.2f, %s)\n", mark, truncate(o.Item.Message, 40), o.Result.FAQID, o.Result.Confidence, o.Result.Method)
		case matching.ResultLead:
			fmt.Printf("%s %-40s → lead\n", mark, truncate(o.Item.Message, 40))
		default:
			fmt.Printf("%s %-40s → fallback\n", mark, truncate(o.Item.Message, 40))
		}
	}

	fmt.Println()
	if scored > 0 {
		ui.Success("%d/%d expected matches hit (%.0f%%) in %v", hits, scored, 100*float64(hits)/float64(scored), elapsed.Round(time.Millisecond))
	} else {
		ui.Success("Evaluated %d queries in %v", len(outcomes), elapsed.Round(time.Millisecond))
	}
	return nil
}

func toMatchingFAQs(faqs []*storage.FAQ) []*matching.FAQ {
	out := make([]*matching.FAQ, len(faqs))
	for i, faq := range faqs {
		out[i] = &matching.FAQ{
			ID:       faq.ID,
			Question: faq.Question,
			Answer:   faq.Answer,
			Category: faq.Category,
			Triggers: faq.Triggers,
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
