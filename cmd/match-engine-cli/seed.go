package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// newSeedCmd creates the seed subcommand.
func newSeedCmd() *cobra.Command {
	var tenantName string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo tenant with a realistic FAQ set",
		Long: `Seed creates a tenant with default bot settings and installs the demo
FAQ set. Prints the widget key and API key for immediate use against
the running API.`,
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

			tenant := &storage.Tenant{Name: tenantName}
			if err := repos.Tenants.Create(ctx, tenant); err != nil {
				return fmt.Errorf("create tenant: %w", err)
			}
			ui.Success("Created tenant %q (%s)", tenant.Name, tenant.ID)

			faqs := demoFAQs()
			bar := SimpleBar(len(faqs), "seeding FAQs")
			for i, faq := range faqs {
				faq.Position = i
				bar.Add(1)
			}
			if err := repos.FAQs.ReplaceAll(ctx, tenant.ID, faqs); err != nil {
				return fmt.Errorf("seed faqs: %w", err)
			}
			ui.Success("Installed %d FAQs", len(faqs))

			if outputJSON {
				out, _ := json.Marshal(map[string]string{
					"tenant_id":  tenant.ID.String(),
					"widget_key": tenant.WidgetKey,
					"api_key":    tenant.APIKey,
				})
				fmt.Println(string(out))
				return nil
			}

			ui.Info("Widget key: %s", tenant.WidgetKey)
			ui.Info("API key:    %s", tenant.APIKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantName, "name", "Demo Co", "tenant name")
	return cmd
}
