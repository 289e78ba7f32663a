package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Processor drives the fetch → decode → parse → decide → save flow for a
// mailbox label. Content problems degrade inside the extractor and never fail
// an item; only transport and storage faults do, and those are recorded in
// the batch report without stopping the batch.
type Processor struct {
	mail      MailSource
	store     Store
	extractor *Extractor
	decider   *Decider
	archiver  Archiver
	suggester Suggester
	log       zerolog.Logger
}

// ProcessorConfig collects the processor's dependencies. Archiver and
// Suggester are optional.
type ProcessorConfig struct {
	Mail      MailSource
	Store     Store
	Extractor *Extractor
	Decider   *Decider
	Archiver  Archiver
	Suggester Suggester
	Logger    zerolog.Logger
}

// NewProcessor creates a processor from its dependencies.
func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{
		mail:      cfg.Mail,
		store:     cfg.Store,
		extractor: cfg.Extractor,
		decider:   cfg.Decider,
		archiver:  cfg.Archiver,
		suggester: cfg.Suggester,
		log:       cfg.Logger,
	}
}

// BatchFailure records one message that could not be processed.
type BatchFailure struct {
	MessageID string `json:"messageId"`
	Error     string `json:"error"`
}

// BatchReport summarizes one mailbox processing run.
type BatchReport struct {
	Total     int            `json:"total"`
	Skipped   int            `json:"skipped"`
	Processed int            `json:"processed"`
	Failed    int            `json:"failed"`
	Failures  []BatchFailure `json:"failures,omitempty"`
}

// ProcessMailbox fetches up to max message ids for the label, filters out
// those already stored, and processes the remainder sequentially. A failing
// item is recorded and the loop continues.
func (p *Processor) ProcessMailbox(ctx context.Context, labelID string, max int64) (*BatchReport, error) {
	ids, err := p.mail.ListMessageIDs(ctx, labelID, max)
	if err != nil {
		return nil, fmt.Errorf("ProcessMailbox: list messages: %w", err)
	}

	existing, err := p.store.ExistingMessageIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("ProcessMailbox: load existing ids: %w", err)
	}

	report := &BatchReport{Total: len(ids)}
	for _, id := range ids {
		if existing[id] {
			report.Skipped++
			continue
		}

		if _, _, err := p.ProcessMessage(ctx, id); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, BatchFailure{MessageID: id, Error: err.Error()})
			p.log.Error().Err(err).Str("message_id", id).Msg("processing failed, continuing batch")
			continue
		}
		report.Processed++
	}

	p.log.Info().
		Int("total", report.Total).
		Int("skipped", report.Skipped).
		Int("processed", report.Processed).
		Int("failed", report.Failed).
		Msg("mailbox batch finished")

	return report, nil
}

// ProcessMessage runs the full pipeline for one message and persists the
// resulting Transaction and JournalEntry as a unit: when the entry insert
// fails, the transaction insert is compensated with a delete so no partial
// state survives.
func (p *Processor) ProcessMessage(ctx context.Context, id string) (*Transaction, *JournalEntry, error) {
	msg, err := p.mail.FetchMessage(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("ProcessMessage: fetch %s: %w", id, err)
	}

	tx := p.extractor.ParseTransaction(msg.HTML, msg.Subject, msg.PlainText, msg.Snippet)
	tx.ID = uuid.NewString()
	tx.MessageID = msg.ID
	tx.Raw = msg.Raw

	description := DescriptionForMapping(tx, msg.Subject, msg.Snippet)
	decision := p.decider.Decide(description)

	entry := BuildJournalEntry(tx, decision, msg.Subject)
	entry.ID = uuid.NewString()

	if decision.NeedsReview && p.suggester != nil {
		suggestion, err := p.suggester.SuggestAccount(ctx, description, decision.Candidates)
		if err != nil {
			p.log.Warn().Err(err).Str("message_id", id).Msg("account suggestion failed")
		} else {
			entry.SuggestedAccount = suggestion
		}
	}

	if p.archiver != nil && len(msg.Raw) > 0 {
		if err := p.archiver.Archive(ctx, msg.ID, msg.Raw); err != nil {
			// Archival is best effort; the transaction row keeps the payload.
			p.log.Warn().Err(err).Str("message_id", id).Msg("raw message archive failed")
		}
	}

	if err := p.store.InsertTransaction(ctx, tx); err != nil {
		return nil, nil, fmt.Errorf("ProcessMessage: save transaction: %w", err)
	}
	if err := p.store.InsertJournalEntry(ctx, entry); err != nil {
		if delErr := p.store.DeleteTransaction(ctx, tx.ID); delErr != nil {
			p.log.Error().Err(delErr).Str("transaction_id", tx.ID).Msg("compensating delete failed")
		}
		return nil, nil, fmt.Errorf("ProcessMessage: save journal entry: %w", err)
	}

	p.log.Info().
		Str("message_id", id).
		Str("transaction_id", tx.ID).
		Str("jenis", string(tx.Jenis)).
		Int64("nominal", tx.Nominal).
		Bool("needs_review", entry.NeedsReview).
		Msg("message processed")

	return tx, entry, nil
}

// DescriptionForMapping assembles the composite description the journal
// decider matches against: note, subject, leading snippet and rekening.
func DescriptionForMapping(tx *Transaction, subject, snippet string) string {
	excerpt := snippet
	if r := []rune(excerpt); len(r) > 100 {
		excerpt = string(r[:100])
	}

	parts := make([]string, 0, 4)
	for _, s := range []string{tx.Note, subject, excerpt, tx.Rekening} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
