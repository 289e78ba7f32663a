package pipeline

import "context"

// MailSource lists and fetches notification emails. The Gmail client in
// internal/gmail implements it; tests substitute mocks.
type MailSource interface {
	// ListMessageIDs returns message ids for the label, newest first,
	// up to max.
	ListMessageIDs(ctx context.Context, labelID string, max int64) ([]string, error)

	// FetchMessage retrieves and decodes one message.
	FetchMessage(ctx context.Context, id string) (*Message, error)
}

// Store persists transactions and journal entries. The BigQuery repository
// in internal/infra/bigquery implements it.
type Store interface {
	// ExistingMessageIDs returns the set of Gmail message ids already
	// stored, used to dedup the batch.
	ExistingMessageIDs(ctx context.Context) (map[string]bool, error)

	InsertTransaction(ctx context.Context, tx *Transaction) error
	InsertJournalEntry(ctx context.Context, entry *JournalEntry) error

	// DeleteTransaction removes a stored transaction; used as the
	// compensating step when the paired journal entry cannot be written.
	DeleteTransaction(ctx context.Context, id string) error
}

// Archiver stores raw message payloads for audit. Optional; a nil archiver
// disables archiving.
type Archiver interface {
	Archive(ctx context.Context, messageID string, raw []byte) error
}

// Suggester proposes a journal account for descriptions the rule table could
// not settle. Suggestions are advisory; they never change the decision.
type Suggester interface {
	SuggestAccount(ctx context.Context, description string, candidates []string) (string, error)
}
