package pipeline

import "strings"

// detectRule is one rung of the classification ladder. A rule matches when
// the text contains every phrase in all and, when any is non-empty, at least
// one phrase in any. Matching is case-insensitive substring containment; the
// first matching rule wins.
type detectRule struct {
	all []string
	any []string
	typ TransactionType
}

func (r detectRule) matches(text string) bool {
	for _, p := range r.all {
		if !strings.Contains(text, p) {
			return false
		}
	}
	if len(r.any) == 0 {
		return true
	}
	for _, p := range r.any {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func runLadder(ladder []detectRule, text string) TransactionType {
	for _, r := range ladder {
		if r.matches(text) {
			return r.typ
		}
	}
	return TypeUnknown
}

// detectLadder is the primary classification pass, ordered from the most
// specific signals down to generic direction words.
var detectLadder = []detectRule{
	// Virtual Account transfers are payments out.
	{all: []string{"jenis transaksi", "transfer virtual account"}, typ: TypeTransferKeluar},
	// E-commerce merchants mean an outgoing payment.
	{any: []string{"shopee", "tokopedia", "lazada", "bukalapak"}, typ: TypeTransferKeluar},
	// SeaBank incoming-transfer phrasing.
	{any: []string{"kamu menerima transfer masuk", "menerima transfer", "kamu menerima", "transfer masuk", "dana masuk"}, typ: TypeTransferMasuk},
	// SeaBank outgoing-transfer phrasing.
	{any: []string{"permintaan transfer kamu telah berhasil diproses", "transfer kamu telah berhasil", "transfer keluar", "kamu mentransfer", "virtual account"}, typ: TypeTransferKeluar},
	{all: []string{"pembayaran", "masuk"}, typ: TypePembayaranMasuk},
	{any: []string{"pembayaran"}, typ: TypePembayaranKeluar},
	{any: []string{"top up"}, typ: TypeTopup},
	// Generic direction words, last because they are weak signals.
	{any: []string{"masuk", "menerima", "terima"}, typ: TypeTransferMasuk},
	{any: []string{"keluar", "kirim", "permintaan transfer", "virtual account", "va"}, typ: TypeTransferKeluar},
}

// DetectType classifies one notification from its subject, body and snippet.
// Returns TypeUnknown when no rule matches; callers run StandardizeType
// before persisting anything.
func DetectType(subject, body, snippet string) TransactionType {
	text := strings.ToLower(subject + " " + body + " " + snippet)
	return runLadder(detectLadder, text)
}

// inferLadder is the narrower secondary pass, applied to subject+snippet only
// when the primary detector came up empty.
var inferLadder = []detectRule{
	{any: []string{"kamu menerima transfer", "kamu menerima", "transfer masuk"}, typ: TypeTransferMasuk},
	{any: []string{"permintaan transfer kamu telah berhasil", "transfer kamu telah berhasil", "transfer berhasil diproses", "virtual account"}, typ: TypeTransferKeluar},
	{any: []string{"masuk", "menerima", "terima"}, typ: TypeTransferMasuk},
	{any: []string{"keluar", "kirim", "transfer berhasil"}, typ: TypeTransferKeluar},
	{any: []string{"shopee", "tokopedia", "lazada"}, typ: TypeTransferKeluar},
}

// InferType is the secondary content inferrer over subject and snippet.
func InferType(subject, snippet string) TransactionType {
	text := strings.ToLower(subject + " " + snippet)
	return runLadder(inferLadder, text)
}

// rawTypeOutgoing/rawTypeIncoming map vendor-supplied type strings such as
// "Transfer Virtual Account" onto a direction. Advisory only; the raw string
// itself is kept in Transaction.RawTransactionType.
var (
	rawTypeOutgoing = []string{"virtual account", "pembayaran", "payout", "debit", "keluar"}
	rawTypeIncoming = []string{"masuk", "incoming", "credit", "deposit"}
)

func mapRawType(raw string) TransactionType {
	low := strings.ToLower(raw)
	for _, p := range rawTypeOutgoing {
		if strings.Contains(low, p) {
			return TypeTransferKeluar
		}
	}
	for _, p := range rawTypeIncoming {
		if strings.Contains(low, p) {
			return TypeTransferMasuk
		}
	}
	return TypeUnknown
}

// StandardizeType forces a classification into the closed five-value set.
// Resolution order: primary detection, vendor raw type mapping, secondary
// inference, and finally transfer_keluar. The last-resort outgoing bias is a
// domain judgment: nearly all unclassifiable notifications turn out to be
// payments.
func StandardizeType(detected TransactionType, rawType, subject, snippet string) TransactionType {
	if detected.Valid() {
		return detected
	}
	if rawType != "" {
		if t := mapRawType(rawType); t.Valid() {
			return t
		}
	}
	if t := InferType(subject, snippet); t.Valid() {
		return t
	}
	return TypeTransferKeluar
}
