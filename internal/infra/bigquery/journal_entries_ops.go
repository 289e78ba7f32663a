package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"mutasiku/internal/pipeline"
)

// InsertJournalEntry inserts one journal line into ledger.journal_entries.
func (s *Store) InsertJournalEntry(ctx context.Context, entry *pipeline.JournalEntry) error {
	inserter := s.table(journalEntriesTable).Inserter()
	if err := inserter.Put(ctx, JournalEntryRowFrom(entry, s.now())); err != nil {
		return fmt.Errorf("InsertJournalEntry: inserting row: %w", err)
	}
	return nil
}

// ListJournalEntries returns the most recent journal entries, newest first.
// With onlyReview set, only entries still flagged for review are returned.
func (s *Store) ListJournalEntries(ctx context.Context, onlyReview bool, limit int64) ([]*JournalEntryRow, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT
			entry_id,
			transaction_id,
			tanggal,
			tanggal_date,
			deskripsi,
			akun_debet,
			akun_kredit,
			nominal,
			needs_review,
			note,
			suggested_account,
			created_ts,
			updated_ts
		FROM ` + s.qualified(journalEntriesTable)
	if onlyReview {
		query += `
		WHERE needs_review = TRUE`
	}
	query += `
		ORDER BY tanggal DESC, created_ts DESC
		LIMIT @limit
	`

	q := s.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListJournalEntries: query read: %w", err)
	}

	var rows []*JournalEntryRow
	for {
		var r JournalEntryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListJournalEntries: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// ResolveJournalEntryReview sets the entry's counter-account and clears the
// review flag. The Bank side of the entry is left untouched.
func (s *Store) ResolveJournalEntryReview(ctx context.Context, entryID, account string) error {
	if account == "" {
		return fmt.Errorf("ResolveJournalEntryReview: empty account")
	}

	q := s.client.Query(`
		UPDATE ` + s.qualified(journalEntriesTable) + `
		SET
			akun_debet = IF(akun_debet = @bank, akun_debet, @account),
			akun_kredit = IF(akun_kredit = @bank, akun_kredit, @account),
			needs_review = FALSE,
			updated_ts = CURRENT_TIMESTAMP()
		WHERE entry_id = @entry_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "bank", Value: pipeline.AccountBank},
		{Name: "account", Value: account},
		{Name: "entry_id", Value: entryID},
	}
	if err := s.runDML(ctx, q); err != nil {
		return fmt.Errorf("ResolveJournalEntryReview: %w", err)
	}
	return nil
}
