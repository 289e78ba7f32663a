package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"

	"mutasiku/internal/pipeline"
)

const (
	DefaultDatasetID = "ledger"

	transactionsTable   = "transactions"
	journalEntriesTable = "journal_entries"
	journalRulesTable   = "journal_rules"
)

// Config identifies the dataset the store works against.
type Config struct {
	ProjectID string
	DatasetID string
}

// Store is the BigQuery-backed persistence layer for transactions, journal
// entries and journal rules. It holds a shared BigQuery client to avoid
// creating a new connection for each operation.
type Store struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	now       func() time.Time
}

var _ pipeline.Store = (*Store)(nil)

// NewStore creates a store with its own BigQuery client.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: bigquery client: %w", err)
	}
	return NewStoreWithClient(client, cfg), nil
}

// NewStoreWithClient creates a store over an existing client. The caller owns
// the client's lifecycle in that case.
func NewStoreWithClient(client *bigquery.Client, cfg Config) *Store {
	datasetID := cfg.DatasetID
	if datasetID == "" {
		datasetID = DefaultDatasetID
	}
	return &Store{
		client:    client,
		projectID: cfg.ProjectID,
		datasetID: datasetID,
		now:       time.Now,
	}
}

// Close closes the underlying BigQuery client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Store) table(name string) *bigquery.Table {
	return s.client.DatasetInProject(s.projectID, s.datasetID).Table(name)
}

func (s *Store) qualified(name string) string {
	return "`" + s.projectID + "." + s.datasetID + "." + name + "`"
}

// runDML executes a DML statement and waits for the job to finish.
func (s *Store) runDML(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
