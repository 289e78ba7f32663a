package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// JournalRule maps one keyword (or a set of alternatives) to a journal
// account name. Rules are ordered configuration; matching is case-insensitive
// substring containment.
type JournalRule struct {
	Keywords []string `json:"keyword"`
	Journal  string   `json:"journal"`
}

// UnmarshalJSON accepts both `"keyword": "gaji"` and
// `"keyword": ["gaji", "salary"]`, the two shapes the rule file has used.
func (r *JournalRule) UnmarshalJSON(data []byte) error {
	var raw struct {
		Keyword json.RawMessage `json:"keyword"`
		Journal string          `json:"journal"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Journal = raw.Journal
	r.Keywords = nil
	if len(raw.Keyword) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw.Keyword, &single); err == nil {
		r.Keywords = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(raw.Keyword, &many); err != nil {
		return fmt.Errorf("journal rule keyword must be string or []string: %w", err)
	}
	r.Keywords = many
	return nil
}

// LoadJournalRules reads an ordered journal rule list from a JSON file.
func LoadJournalRules(path string) ([]JournalRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadJournalRules: read %q: %w", path, err)
	}
	var rules []JournalRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("LoadJournalRules: parse %q: %w", path, err)
	}
	return rules, nil
}

// DefaultJournalRules is the built-in rule table, used when no rule file is
// configured.
func DefaultJournalRules() []JournalRule {
	return []JournalRule{
		{Keywords: []string{"gaji", "salary"}, Journal: "Pendapatan Gaji"},
		{Keywords: []string{"arisan"}, Journal: "Arisan"},
		{Keywords: []string{"listrik", "pln", "token"}, Journal: "Beban Listrik"},
		{Keywords: []string{"pulsa", "top up"}, Journal: "Beban Pulsa"},
		{Keywords: []string{"gofood", "grabfood", "shopeefood"}, Journal: "Beban Makan"},
		{Keywords: []string{"sewa", "kontrakan", "kos"}, Journal: "Beban Sewa"},
		{Keywords: []string{"shopee", "tokopedia", "lazada", "bukalapak"}, Journal: "Belanja Online"},
		{Keywords: []string{"bensin", "pertamina", "spbu"}, Journal: "Beban Transportasi"},
	}
}

// DecisionKind tags the shape of a journal decision.
type DecisionKind int

const (
	// DecisionNone: no rule matched.
	DecisionNone DecisionKind = iota
	// DecisionSingle: exactly one rule matched.
	DecisionSingle
	// DecisionAmbiguous: two or more rules matched; a human must pick.
	DecisionAmbiguous
)

// JournalDecision is the outcome of matching a description against the rule
// table. Journal is set for DecisionSingle; Candidates (length >= 2) for
// DecisionAmbiguous. NeedsReview is true for anything but a single match.
type JournalDecision struct {
	Kind        DecisionKind
	Journal     string
	Candidates  []string
	NeedsReview bool
}

// Decider matches transaction descriptions against an ordered journal rule
// table. It is pure: same description, same decision.
type Decider struct {
	rules []JournalRule
}

// NewDecider creates a decider over the given rule table.
func NewDecider(rules []JournalRule) *Decider {
	return &Decider{rules: rules}
}

// Decide returns the journal account for a description. Zero matches and
// multiple matches both flag the decision for review; multiple matches carry
// every candidate account so the reviewer can pick.
func (d *Decider) Decide(description string) JournalDecision {
	desc := strings.ToLower(description)

	var matched []string
	for _, rule := range d.rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(desc, strings.ToLower(kw)) {
				matched = append(matched, rule.Journal)
				break
			}
		}
	}

	switch len(matched) {
	case 0:
		return JournalDecision{Kind: DecisionNone, NeedsReview: true}
	case 1:
		return JournalDecision{Kind: DecisionSingle, Journal: matched[0]}
	default:
		return JournalDecision{Kind: DecisionAmbiguous, Candidates: matched, NeedsReview: true}
	}
}
