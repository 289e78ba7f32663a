package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"mutasiku/internal/pipeline"
)

// InsertTransaction inserts one parsed transaction into ledger.transactions.
func (s *Store) InsertTransaction(ctx context.Context, tx *pipeline.Transaction) error {
	inserter := s.table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, TransactionRowFrom(tx, s.now())); err != nil {
		return fmt.Errorf("InsertTransaction: inserting row: %w", err)
	}
	return nil
}

// DeleteTransaction removes a transaction row by id. Used to compensate a
// failed journal entry insert so the pair never ends up half written.
func (s *Store) DeleteTransaction(ctx context.Context, transactionID string) error {
	q := s.client.Query(`
		DELETE FROM ` + s.qualified(transactionsTable) + `
		WHERE transaction_id = @transaction_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: transactionID},
	}
	if err := s.runDML(ctx, q); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	return nil
}

// ExistingMessageIDs returns the set of Gmail message ids already stored,
// used to skip messages a previous batch has processed.
func (s *Store) ExistingMessageIDs(ctx context.Context) (map[string]bool, error) {
	q := s.client.Query(`
		SELECT DISTINCT message_id
		FROM ` + s.qualified(transactionsTable) + `
		WHERE message_id != ''
	`)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExistingMessageIDs: query read: %w", err)
	}

	ids := make(map[string]bool)
	for {
		var r struct {
			MessageID string `bigquery:"message_id"`
		}
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ExistingMessageIDs: iter next: %w", err)
		}
		ids[r.MessageID] = true
	}

	return ids, nil
}

// ListTransactions returns the most recent transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, limit int64) ([]*TransactionRow, error) {
	if limit <= 0 {
		limit = 100
	}
	q := s.client.Query(`
		SELECT
			transaction_id,
			message_id,
			tanggal,
			tanggal_date,
			jenis,
			raw_transaction_type,
			nominal,
			fee,
			partner,
			rekening,
			note,
			reference_number,
			username,
			raw,
			created_ts
		FROM ` + s.qualified(transactionsTable) + `
		ORDER BY tanggal DESC, created_ts DESC
		LIMIT @limit
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// GetTransaction returns one transaction by id, or nil when it does not exist.
func (s *Store) GetTransaction(ctx context.Context, transactionID string) (*TransactionRow, error) {
	q := s.client.Query(`
		SELECT
			transaction_id,
			message_id,
			tanggal,
			tanggal_date,
			jenis,
			raw_transaction_type,
			nominal,
			fee,
			partner,
			rekening,
			note,
			reference_number,
			username,
			raw,
			created_ts
		FROM ` + s.qualified(transactionsTable) + `
		WHERE transaction_id = @transaction_id
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: transactionID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: query read: %w", err)
	}

	var r TransactionRow
	switch err := it.Next(&r); err {
	case nil:
		return &r, nil
	case iterator.Done:
		return nil, nil
	default:
		return nil, fmt.Errorf("GetTransaction: iter next: %w", err)
	}
}
