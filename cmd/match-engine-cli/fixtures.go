package main

import "github.com/faqdesk-ai/match-engine/internal/storage"

// demoFAQs is the FAQ set installed by `seed` and used by `demo`. It
// mirrors a typical small-business chatbot setup: hours, pricing,
// trials, setup, customization, and support topics.
func demoFAQs() []*storage.FAQ {
	return []*storage.FAQ{
		{
			ID:       "hours",
			Question: "What are your business hours?",
			Answer:   "Our team is available Monday through Friday, 9am to 6pm EST. The chatbot answers questions 24/7.",
			Category: "General",
			Triggers: []string{"hours", "open", "closed", "weekend"},
		},
		{
			ID:       "pricing",
			Question: "How much does it cost?",
			Answer:   "Plans start at $19/month for the Starter plan. The Agency plan at $49/month adds more clients and full customization.",
			Category: "Billing",
			Triggers: []string{"pricing", "cost", "price", "plans", "monthly"},
		},
		{
			ID:       "trial",
			Question: "Is there a free trial?",
			Answer:   "Yes! Every plan comes with a 14-day free trial. No credit card required to start.",
			Category: "Billing",
			Triggers: []string{"trial", "free", "demo"},
		},
		{
			ID:       "setup",
			Question: "How do I install the chat widget on my website?",
			Answer:   "Copy the one-line embed script from your dashboard and paste it before the closing body tag. The widget appears instantly.",
			Category: "Setup",
			Triggers: []string{"install", "embed", "widget", "website", "script"},
		},
		{
			ID:       "customize",
			Question: "Can I customize the widget colors and branding?",
			Answer:   "On the Agency plan you can change colors, the launcher icon, the welcome message, and remove our branding.",
			Category: "Setup",
			Triggers: []string{"customize", "colors", "branding", "logo", "theme"},
		},
		{
			ID:       "faq-edit",
			Question: "How do I add or edit my FAQs?",
			Answer:   "Open the FAQs tab in your dashboard. Changes go live on the next chat message, no republish needed.",
			Category: "Setup",
			Triggers: []string{"faq", "edit", "add", "manage", "questions"},
		},
		{
			ID:       "languages",
			Question: "Which languages does the chatbot support?",
			Answer:   "The matcher works with any language your FAQs are written in. The dashboard itself is English-only for now.",
			Category: "General",
			Triggers: []string{"language", "languages", "spanish", "french", "translate"},
		},
		{
			ID:       "leads",
			Question: "How does lead collection work?",
			Answer:   "When a visitor asks to talk to a human or leaves an email address, the bot switches to a short contact form and the lead lands in your dashboard.",
			Category: "Features",
			Triggers: []string{"lead", "leads", "capture", "form"},
		},
		{
			ID:       "analytics",
			Question: "What analytics do you provide?",
			Answer:   "You get per-day message counts, match rate, top unanswered questions, and captured leads. Data exports as CSV.",
			Category: "Features",
			Triggers: []string{"analytics", "stats", "reports", "metrics"},
		},
		{
			ID:       "cancel",
			Question: "How do I cancel my subscription?",
			Answer:   "You can cancel anytime from Billing Settings. Your plan stays active until the end of the paid period.",
			Category: "Billing",
			Triggers: []string{"cancel", "unsubscribe", "refund"},
		},
		{
			ID:       "data-privacy",
			Question: "Where is my data stored and is it secure?",
			Answer:   "All data is encrypted at rest and in transit, stored in EU and US data centers. We never share FAQ or visitor data with third parties.",
			Category: "Security",
			Triggers: []string{"data", "privacy", "secure", "gdpr", "encryption"},
		},
		{
			ID:       "integrations",
			Question: "Do you integrate with other tools?",
			Answer:   "Leads can be forwarded to any webhook endpoint, and the admin API lets you sync FAQs from your own systems.",
			Category: "Features",
			Triggers: []string{"integration", "integrations", "webhook", "api", "zapier"},
		},
	}
}

// demoQueries pairs sample visitor questions with the FAQ expected to
// answer them; used by `eval` when no query file is given.
var demoQueries = []struct {
	Message  string
	Expected string
}{
	{"What are your hours?", "hours"},
	{"how much is the monthly price", "pricing"},
	{"can I try it for free first", "trial"},
	{"how do I put the widget on my site", "setup"},
	{"change the widget colors", "customize"},
	{"is my customer data secure", "data-privacy"},
	{"do you have webhook integrations", "integrations"},
	{"what reports can I see", "analytics"},
}
