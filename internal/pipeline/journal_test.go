package pipeline

import (
	"encoding/json"
	"reflect"
	"testing"
)

func testRules() []JournalRule {
	return []JournalRule{
		{Keywords: []string{"gaji", "salary"}, Journal: "Pendapatan Gaji"},
		{Keywords: []string{"arisan"}, Journal: "Arisan"},
		{Keywords: []string{"listrik", "pln"}, Journal: "Beban Listrik"},
	}
}

func TestDecider_SingleMatch(t *testing.T) {
	d := NewDecider(testRules())

	got := d.Decide("Pembayaran arisan bulanan")

	if got.Kind != DecisionSingle {
		t.Fatalf("Kind = %v, want DecisionSingle", got.Kind)
	}
	if got.Journal != "Arisan" {
		t.Errorf("Journal = %q, want %q", got.Journal, "Arisan")
	}
	if got.NeedsReview {
		t.Error("NeedsReview = true, want false for single match")
	}
}

func TestDecider_CaseInsensitive(t *testing.T) {
	d := NewDecider(testRules())

	got := d.Decide("GAJI bulan Mei")

	if got.Kind != DecisionSingle || got.Journal != "Pendapatan Gaji" {
		t.Errorf("Decide() = %+v, want single Pendapatan Gaji", got)
	}
}

func TestDecider_NoMatch(t *testing.T) {
	d := NewDecider(testRules())

	got := d.Decide("transfer ke teman")

	if got.Kind != DecisionNone {
		t.Fatalf("Kind = %v, want DecisionNone", got.Kind)
	}
	if !got.NeedsReview {
		t.Error("NeedsReview = false, want true for no match")
	}
	if got.Journal != "" || len(got.Candidates) != 0 {
		t.Errorf("Decide() = %+v, want empty journal and candidates", got)
	}
}

func TestDecider_AmbiguousMatch(t *testing.T) {
	d := NewDecider(testRules())

	got := d.Decide("gaji dipakai bayar arisan")

	if got.Kind != DecisionAmbiguous {
		t.Fatalf("Kind = %v, want DecisionAmbiguous", got.Kind)
	}
	if !got.NeedsReview {
		t.Error("NeedsReview = false, want true for ambiguous match")
	}
	want := []string{"Pendapatan Gaji", "Arisan"}
	if !reflect.DeepEqual(got.Candidates, want) {
		t.Errorf("Candidates = %v, want %v (rule order)", got.Candidates, want)
	}
}

// A rule matches at most once even when several of its alternative keywords
// appear.
func TestDecider_AlternativesCountOnce(t *testing.T) {
	d := NewDecider(testRules())

	got := d.Decide("tagihan listrik pln bulan ini")

	if got.Kind != DecisionSingle || got.Journal != "Beban Listrik" {
		t.Errorf("Decide() = %+v, want single Beban Listrik", got)
	}
}

func TestDecider_Pure(t *testing.T) {
	d := NewDecider(testRules())
	desc := "gaji dipakai bayar arisan"

	first := d.Decide(desc)
	for i := 0; i < 5; i++ {
		if got := d.Decide(desc); !reflect.DeepEqual(got, first) {
			t.Fatalf("Decide() not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestJournalRule_UnmarshalJSON(t *testing.T) {
	data := []byte(`[
		{"keyword": "gaji", "journal": "Pendapatan Gaji"},
		{"keyword": ["listrik", "pln"], "journal": "Beban Listrik"}
	]`)

	var rules []JournalRule
	if err := json.Unmarshal(data, &rules); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(rules[0].Keywords, []string{"gaji"}) {
		t.Errorf("rules[0].Keywords = %v, want single keyword wrapped", rules[0].Keywords)
	}
	if !reflect.DeepEqual(rules[1].Keywords, []string{"listrik", "pln"}) {
		t.Errorf("rules[1].Keywords = %v, want list preserved", rules[1].Keywords)
	}
	if rules[1].Journal != "Beban Listrik" {
		t.Errorf("rules[1].Journal = %q", rules[1].Journal)
	}
}

func TestJournalRule_UnmarshalJSONRejectsBadKeyword(t *testing.T) {
	var rule JournalRule
	if err := json.Unmarshal([]byte(`{"keyword": 42, "journal": "X"}`), &rule); err == nil {
		t.Error("expected error for numeric keyword")
	}
}
