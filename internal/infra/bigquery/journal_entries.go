package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"mutasiku/internal/pipeline"
)

type JournalEntryRow struct {
	EntryID       string `bigquery:"entry_id"`       // REQUIRED
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	Tanggal     time.Time  `bigquery:"tanggal"`      // REQUIRED TIMESTAMP
	TanggalDate civil.Date `bigquery:"tanggal_date"` // REQUIRED, partition column

	Deskripsi  string `bigquery:"deskripsi"`   // REQUIRED
	AkunDebet  string `bigquery:"akun_debet"`  // REQUIRED
	AkunKredit string `bigquery:"akun_kredit"` // REQUIRED
	Nominal    int64  `bigquery:"nominal"`     // REQUIRED INT64, IDR

	NeedsReview      bool                `bigquery:"needs_review"`      // REQUIRED
	Note             bigquery.NullString `bigquery:"note"`              // NULLABLE
	SuggestedAccount bigquery.NullString `bigquery:"suggested_account"` // NULLABLE

	CreatedTS time.Time              `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"` // NULLABLE, set on review
}

// JournalEntryRowFrom maps a built journal entry onto the ledger.journal_entries schema.
func JournalEntryRowFrom(entry *pipeline.JournalEntry, now time.Time) *JournalEntryRow {
	return &JournalEntryRow{
		EntryID:          entry.ID,
		TransactionID:    entry.TransactionID,
		Tanggal:          entry.Tanggal,
		TanggalDate:      civil.DateOf(entry.Tanggal),
		Deskripsi:        entry.Deskripsi,
		AkunDebet:        entry.AkunDebet,
		AkunKredit:       entry.AkunKredit,
		Nominal:          entry.Nominal,
		NeedsReview:      entry.NeedsReview,
		Note:             nullStr(entry.Note),
		SuggestedAccount: nullStr(entry.SuggestedAccount),
		CreatedTS:        now,
	}
}

// JournalEntry maps a stored row back to the pipeline type.
func (r *JournalEntryRow) JournalEntry() *pipeline.JournalEntry {
	return &pipeline.JournalEntry{
		ID:               r.EntryID,
		TransactionID:    r.TransactionID,
		Tanggal:          r.Tanggal,
		Deskripsi:        r.Deskripsi,
		AkunDebet:        r.AkunDebet,
		AkunKredit:       r.AkunKredit,
		Nominal:          r.Nominal,
		NeedsReview:      r.NeedsReview,
		Note:             r.Note.StringVal,
		SuggestedAccount: r.SuggestedAccount.StringVal,
	}
}
