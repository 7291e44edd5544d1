package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"relaybackend/core"
)

type Options struct {
	AdminOnly   bool `long:"admin-only"   description:"Only print a new ADMIN_API_KEY"`
	WebhookOnly bool `long:"webhook-only" description:"Only print a new WEBHOOK_SECRET (rotating it invalidates registered Trello and GitHub webhooks)"`
}

// Prints fresh values for ADMIN_API_KEY and WEBHOOK_SECRET
func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if opts.AdminOnly && opts.WebhookOnly {
		fmt.Fprintln(os.Stderr, "Error: --admin-only and --webhook-only are mutually exclusive")
		os.Exit(1)
	}

	log.Printf("🔑 Generating new relay secrets...")

	if !opts.WebhookOnly {
		adminKey, err := core.NewSecretKey("adm")
		if err != nil {
			log.Fatalf("❌ Failed to generate admin API key: %v", err)
		}
		fmt.Printf("ADMIN_API_KEY=%s\n", adminKey)
	}
	if !opts.AdminOnly {
		webhookSecret, err := core.NewSecretKey("whs")
		if err != nil {
			log.Fatalf("❌ Failed to generate webhook secret: %v", err)
		}
		fmt.Printf("WEBHOOK_SECRET=%s\n", webhookSecret)
	}

	log.Printf("✅ Successfully generated relay secrets")
}
