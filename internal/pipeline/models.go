package pipeline

import (
	"encoding/json"
	"strings"
	"time"
)

// TransactionType is the canonical classification of a bank notification.
// Persisted transactions always carry one of the five canonical values;
// TypeUnknown only exists as an intermediate result inside the classifier.
type TransactionType string

const (
	TypeTransferMasuk    TransactionType = "transfer_masuk"
	TypeTransferKeluar   TransactionType = "transfer_keluar"
	TypePembayaranMasuk  TransactionType = "pembayaran_masuk"
	TypePembayaranKeluar TransactionType = "pembayaran_keluar"
	TypeTopup            TransactionType = "topup"

	// TypeUnknown is never persisted; StandardizeType maps it away.
	TypeUnknown TransactionType = "unknown"
)

// Valid reports whether t is one of the five canonical types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeTransferMasuk, TypeTransferKeluar, TypePembayaranMasuk, TypePembayaranKeluar, TypeTopup:
		return true
	}
	return false
}

// Incoming reports whether the type represents money flowing in.
func (t TransactionType) Incoming() bool {
	return strings.HasSuffix(string(t), "_masuk")
}

// Canonical field names used in the raw field map produced by the extractor.
const (
	FieldPartner         = "partner"
	FieldRekening        = "rekening"
	FieldNominal         = "nominal"
	FieldNote            = "note"
	FieldReferenceNumber = "referenceNumber"
	FieldUsername        = "username"
	FieldFee             = "fee"
	FieldTanggal         = "tanggal"
	FieldJenis           = "jenis"
)

// RawFields is the transient field map extracted from one email body.
// Keys are canonical field names (or normalized pass-through labels);
// values are the raw string values as they appeared in the email.
type RawFields map[string]string

// Transaction is the canonical, persisted transaction record.
type Transaction struct {
	ID        string `json:"id"`
	MessageID string `json:"messageId"` // Gmail message id, dedup key

	Tanggal            time.Time       `json:"tanggal"`
	Jenis              TransactionType `json:"jenis"`
	RawTransactionType string          `json:"rawTransactionType,omitempty"`
	Nominal            int64           `json:"nominal"`
	Fee                int64           `json:"fee"`
	Partner            string          `json:"partner"`
	Rekening           string          `json:"rekening"`
	Note               string          `json:"note"`
	ReferenceNumber    string          `json:"referenceNumber"`
	Username           string          `json:"username"`

	// Raw is the source message payload, retained for audit.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// JournalEntry is one double-entry journal line derived from a Transaction.
type JournalEntry struct {
	ID            string    `json:"id"`
	Tanggal       time.Time `json:"tanggal"`
	Deskripsi     string    `json:"deskripsi"`
	AkunDebet     string    `json:"akunDebet"`
	AkunKredit    string    `json:"akunKredit"`
	Nominal       int64     `json:"nominal"`
	TransactionID string    `json:"transactionId"`
	NeedsReview   bool      `json:"needsReview"`
	Note          string    `json:"note"`

	// SuggestedAccount is advisory output from the optional AI suggester.
	// It never changes NeedsReview or the chosen accounts.
	SuggestedAccount string `json:"suggestedAccount,omitempty"`
}

// Message is a fetched, decoded email as the pipeline consumes it.
type Message struct {
	ID        string
	Subject   string
	HTML      string
	PlainText string
	Snippet   string

	// Raw is the full provider payload, kept on the Transaction for audit.
	Raw json.RawMessage
}
