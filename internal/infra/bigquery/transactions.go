package bigquery

import (
	"encoding/json"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"mutasiku/internal/pipeline"
)

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	MessageID     string `bigquery:"message_id"`     // REQUIRED, dedup key

	Tanggal     time.Time  `bigquery:"tanggal"`      // REQUIRED TIMESTAMP
	TanggalDate civil.Date `bigquery:"tanggal_date"` // REQUIRED, partition column

	Jenis              string              `bigquery:"jenis"`                // REQUIRED
	RawTransactionType bigquery.NullString `bigquery:"raw_transaction_type"` // NULLABLE

	Nominal int64              `bigquery:"nominal"` // REQUIRED INT64, IDR
	Fee     bigquery.NullInt64 `bigquery:"fee"`     // NULLABLE INT64, IDR

	Partner         bigquery.NullString `bigquery:"partner"`          // NULLABLE
	Rekening        bigquery.NullString `bigquery:"rekening"`         // NULLABLE
	Note            bigquery.NullString `bigquery:"note"`             // NULLABLE
	ReferenceNumber bigquery.NullString `bigquery:"reference_number"` // NULLABLE
	Username        bigquery.NullString `bigquery:"username"`         // NULLABLE

	Raw bigquery.NullJSON `bigquery:"raw"` // NULLABLE JSON, original message payload

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
}

// TransactionRowFrom maps a parsed transaction onto the ledger.transactions schema.
func TransactionRowFrom(tx *pipeline.Transaction, now time.Time) *TransactionRow {
	row := &TransactionRow{
		TransactionID:      tx.ID,
		MessageID:          tx.MessageID,
		Tanggal:            tx.Tanggal,
		TanggalDate:        civil.DateOf(tx.Tanggal),
		Jenis:              string(tx.Jenis),
		RawTransactionType: nullStr(tx.RawTransactionType),
		Nominal:            tx.Nominal,
		Partner:            nullStr(tx.Partner),
		Rekening:           nullStr(tx.Rekening),
		Note:               nullStr(tx.Note),
		ReferenceNumber:    nullStr(tx.ReferenceNumber),
		Username:           nullStr(tx.Username),
		CreatedTS:          now,
	}
	if tx.Fee != 0 {
		row.Fee = bigquery.NullInt64{Int64: tx.Fee, Valid: true}
	}
	if len(tx.Raw) > 0 {
		var v any
		if err := json.Unmarshal(tx.Raw, &v); err == nil {
			row.Raw = bigquery.NullJSON{JSONVal: string(tx.Raw), Valid: true}
		}
	}
	return row
}

// Transaction maps a stored row back to the pipeline type.
func (r *TransactionRow) Transaction() *pipeline.Transaction {
	tx := &pipeline.Transaction{
		ID:                 r.TransactionID,
		MessageID:          r.MessageID,
		Tanggal:            r.Tanggal,
		Jenis:              pipeline.TransactionType(r.Jenis),
		RawTransactionType: r.RawTransactionType.StringVal,
		Nominal:            r.Nominal,
		Partner:            r.Partner.StringVal,
		Rekening:           r.Rekening.StringVal,
		Note:               r.Note.StringVal,
		ReferenceNumber:    r.ReferenceNumber.StringVal,
		Username:           r.Username.StringVal,
	}
	if r.Fee.Valid {
		tx.Fee = r.Fee.Int64
	}
	if r.Raw.Valid {
		tx.Raw = []byte(r.Raw.JSONVal)
	}
	return tx
}

func nullStr(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}
