package pipeline

import (
	"fmt"
	"strings"
)

// Fixed account names used when building journal lines.
const (
	AccountBank             = "Bank"
	FallbackIncomingAccount = "Dana Masuk"
	FallbackOutgoingAccount = "Other Expense"
)

// resolveAccount picks the counter-account from a decision. For ambiguous
// decisions the first candidate is taken; this is deliberate policy, the
// entry still carries NeedsReview so a reviewer re-picks later.
func resolveAccount(decision JournalDecision, incoming bool) string {
	switch decision.Kind {
	case DecisionSingle:
		return decision.Journal
	case DecisionAmbiguous:
		return decision.Candidates[0]
	}
	if incoming {
		return FallbackIncomingAccount
	}
	return FallbackOutgoingAccount
}

// BuildJournalEntry combines a transaction and a journal decision into one
// double-entry journal line. Incoming money debits Bank and credits the
// decided account; outgoing money mirrors that. The function is
// deterministic: identical inputs produce identical entries.
func BuildJournalEntry(tx *Transaction, decision JournalDecision, subject string) *JournalEntry {
	incoming := tx.Jenis.Incoming()
	account := resolveAccount(decision, incoming)

	var debet, kredit string
	if incoming {
		debet, kredit = AccountBank, account
	} else {
		debet, kredit = account, AccountBank
	}

	deskripsi := tx.Note
	if deskripsi == "" {
		deskripsi = subject
	}
	if deskripsi == "" {
		deskripsi = fmt.Sprintf("Transaction %s", tx.Jenis)
	}
	if tx.ReferenceNumber != "" {
		deskripsi = fmt.Sprintf("%s [Ref: %s]", deskripsi, tx.ReferenceNumber)
	}
	if tx.Partner != "" && !strings.Contains(deskripsi, tx.Partner) {
		deskripsi = fmt.Sprintf("%s - %s", deskripsi, tx.Partner)
	}

	return &JournalEntry{
		Tanggal:       tx.Tanggal,
		Deskripsi:     deskripsi,
		AkunDebet:     debet,
		AkunKredit:    kredit,
		Nominal:       tx.Nominal,
		TransactionID: tx.ID,
		NeedsReview:   decision.NeedsReview,
		Note:          entryNote(tx, decision, account, incoming),
	}
}

// entryNote picks the journal line's note: a meaningful transaction note
// first, then the cleanly mapped account name, then a partner phrase, then a
// direction fallback. The username is appended when it is not already there.
func entryNote(tx *Transaction, decision JournalDecision, account string, incoming bool) string {
	var note string
	switch {
	case meaningfulNote(tx.Note):
		note = tx.Note
	case decision.Kind == DecisionSingle:
		note = account
	case tx.Partner != "":
		note = fmt.Sprintf("Transaksi dengan %s", tx.Partner)
	case incoming:
		note = FallbackIncomingAccount
	default:
		note = FallbackOutgoingAccount
	}

	if tx.Username != "" && !strings.Contains(note, tx.Username) {
		note = fmt.Sprintf("%s (%s)", note, tx.Username)
	}
	return note
}

// meaningfulNote rejects empty, trivially short, and generic notification
// notes.
func meaningfulNote(note string) bool {
	note = strings.TrimSpace(note)
	return note != "" && len(note) > 5 && !strings.HasPrefix(note, "Notifikasi")
}
