package bigquery

import (
	"context"
	"fmt"

	"google.golang.org/api/iterator"

	"mutasiku/internal/pipeline"
)

type JournalRuleRow struct {
	Keywords []string `bigquery:"keyword"` // REPEATED STRING
	Journal  string   `bigquery:"journal"` // REQUIRED
	Priority int64    `bigquery:"priority"`
}

// ListJournalRules loads the ordered journal rule table from
// ledger.journal_rules. Rule order is the priority column; the decider matches
// rules in that order.
func (s *Store) ListJournalRules(ctx context.Context) ([]pipeline.JournalRule, error) {
	q := s.client.Query(`
		SELECT keyword, journal, priority
		FROM ` + s.qualified(journalRulesTable) + `
		ORDER BY priority
	`)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListJournalRules: query read: %w", err)
	}

	var rules []pipeline.JournalRule
	for {
		var r JournalRuleRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListJournalRules: iter next: %w", err)
		}
		rules = append(rules, pipeline.JournalRule{Keywords: r.Keywords, Journal: r.Journal})
	}

	return rules, nil
}
