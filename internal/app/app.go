// Package app wires the mailbox processor from configuration. The api,
// worker and process binaries all build the same runtime.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"mutasiku/internal/archive"
	"mutasiku/internal/config"
	"mutasiku/internal/gmail"
	infraBQ "mutasiku/internal/infra/bigquery"
	"mutasiku/internal/pipeline"
)

// Runtime holds the wired processing stack and its closable resources.
type Runtime struct {
	Processor *pipeline.Processor
	Mail      *gmail.Client
	Store     *infraBQ.Store
	LabelID   string

	archive *archive.Archive
	log     zerolog.Logger
}

// Build constructs the runtime: Gmail client, BigQuery store, journal rules,
// and the optional GCS archive and Gemini suggester.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Runtime, error) {
	if cfg.GmailRefreshToken == "" {
		return nil, fmt.Errorf("app.Build: GMAIL_REFRESH_TOKEN is not set, run the authorize command first")
	}

	oauthCfg, err := gmail.LoadCredentials(cfg.GmailCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("app.Build: %w", err)
	}
	mail, err := gmail.NewClient(ctx, gmail.TokenSource(ctx, oauthCfg, cfg.GmailRefreshToken), log)
	if err != nil {
		return nil, fmt.Errorf("app.Build: %w", err)
	}

	// GMAIL_LABEL_ID accepts a label name too; names resolve to ids here.
	labelID := cfg.GmailLabelID
	if labelID != "" {
		if id, err := mail.ResolveLabelID(ctx, labelID); err == nil {
			labelID = id
		}
	}

	store, err := infraBQ.NewStore(ctx, infraBQ.Config{
		ProjectID: cfg.BQProjectID,
		DatasetID: cfg.BQDataset,
	})
	if err != nil {
		return nil, fmt.Errorf("app.Build: %w", err)
	}

	rules, err := loadRules(ctx, cfg, store, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("app.Build: %w", err)
	}

	rt := &Runtime{
		Mail:    mail,
		Store:   store,
		LabelID: labelID,
		log:     log,
	}

	procCfg := pipeline.ProcessorConfig{
		Mail:      mail,
		Store:     store,
		Extractor: pipeline.NewExtractor(pipeline.DefaultLabelMap(), log),
		Decider:   pipeline.NewDecider(rules),
		Logger:    log,
	}

	if cfg.GCSBucket != "" {
		arc, err := archive.New(ctx, cfg.GCSBucket)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("app.Build: %w", err)
		}
		rt.archive = arc
		procCfg.Archiver = arc
	}

	if cfg.GeminiEnabled {
		procCfg.Suggester = pipeline.NewGeminiSuggester(cfg.GeminiModel, accountNames(rules))
		log.Info().Str("model", cfg.GeminiModel).Msg("account suggester enabled")
	}

	rt.Processor = pipeline.NewProcessor(procCfg)
	return rt, nil
}

// Close releases the runtime's clients.
func (r *Runtime) Close() error {
	var firstErr error
	if r.archive != nil {
		if err := r.archive.Close(); err != nil {
			firstErr = err
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// loadRules picks the journal rule source: a configured file first, then the
// BigQuery rule table, then the built-in defaults.
func loadRules(ctx context.Context, cfg *config.Config, store *infraBQ.Store, log zerolog.Logger) ([]pipeline.JournalRule, error) {
	if cfg.JournalRulesFile != "" {
		rules, err := pipeline.LoadJournalRules(cfg.JournalRulesFile)
		if err != nil {
			return nil, err
		}
		log.Info().Str("file", cfg.JournalRulesFile).Int("rules", len(rules)).Msg("journal rules loaded from file")
		return rules, nil
	}

	if rules, err := store.ListJournalRules(ctx); err == nil && len(rules) > 0 {
		log.Info().Int("rules", len(rules)).Msg("journal rules loaded from BigQuery")
		return rules, nil
	}

	log.Info().Msg("using built-in journal rules")
	return pipeline.DefaultJournalRules(), nil
}

// accountNames collects the journal accounts the suggester may answer with.
func accountNames(rules []pipeline.JournalRule) []string {
	seen := make(map[string]bool)
	var names []string
	for _, rule := range rules {
		if rule.Journal != "" && !seen[rule.Journal] {
			seen[rule.Journal] = true
			names = append(names, rule.Journal)
		}
	}
	names = append(names, pipeline.FallbackIncomingAccount, pipeline.FallbackOutgoingAccount)
	return names
}
