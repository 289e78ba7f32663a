// Command process runs one mailbox batch and prints the report. Useful for
// backfills and for checking rule changes against real mail.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"mutasiku/internal/app"
	"mutasiku/internal/config"
	"mutasiku/internal/logger"
)

func main() {
	var (
		label = flag.String("label", "", "Gmail label id or name (default: GMAIL_LABEL_ID)")
		max   = flag.Int64("max", 0, "max messages to list (default: MAX_MESSAGES)")
	)
	flag.Parse()

	log := logger.New("process")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *label != "" {
		cfg.GmailLabelID = *label
	}
	if *max > 0 {
		cfg.MaxMessages = *max
	}

	ctx := context.Background()

	runtime, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build processing runtime")
	}
	defer runtime.Close()

	report, err := runtime.Processor.ProcessMailbox(ctx, runtime.LabelID, cfg.MaxMessages)
	if err != nil {
		log.Fatal().Err(err).Msg("Mailbox run failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("Failed to print report")
	}

	if report.Failed > 0 {
		os.Exit(1)
	}
}
