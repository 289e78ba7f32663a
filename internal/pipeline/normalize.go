package pipeline

import (
	"regexp"
	"strings"
)

// buildTransaction assembles the canonical Transaction from extracted raw
// fields, applying the classification ladder and field-level defaults:
// nominal/fee default to 0, tanggal to now, the note to a content heuristic.
func (e *Extractor) buildTransaction(raw RawFields, subject, body, snippet string) *Transaction {
	rawType := raw[FieldJenis]
	jenis := StandardizeType(DetectType(subject, body, snippet), rawType, subject, snippet)

	tanggal := e.now()
	if s := raw[FieldTanggal]; s != "" {
		if t, ok := ParseIndonesianDate(s); ok {
			tanggal = t
		} else {
			e.log.Warn().Str("tanggal", s).Msg("unparseable transaction date, defaulting to now")
		}
	}

	partner := strings.TrimSpace(raw[FieldPartner])
	rekening := strings.TrimSpace(raw[FieldRekening])
	if rekening == "" {
		rekening = partner
	}

	note := strings.TrimSpace(raw[FieldNote])
	if note == "" {
		note = ExtractNote(subject, snippet)
	}

	return &Transaction{
		Tanggal:            tanggal,
		Jenis:              jenis,
		RawTransactionType: rawType,
		Nominal:            SanitizeCurrencyValue(raw[FieldNominal]),
		Fee:                SanitizeCurrencyValue(raw[FieldFee]),
		Partner:            partner,
		Rekening:           rekening,
		Note:               note,
		ReferenceNumber:    strings.TrimSpace(raw[FieldReferenceNumber]),
		Username:           strings.TrimSpace(raw[FieldUsername]),
	}
}

var (
	noteBoilerplateRe = regexp.MustCompile(`Notifikasi (Transfer|Pembayaran) [A-Za-z]+`)
	greetingRe        = regexp.MustCompile(`Hai [^,]+,`)
)

// ExtractNote derives a note when the email carried none. The subject wins
// when it names a transaction; otherwise the snippet is used with
// notification boilerplate stripped and trimmed to 100 characters. Returns
// empty when nothing meaningful remains.
func ExtractNote(subject, snippet string) string {
	if strings.Contains(subject, "Transfer") ||
		strings.Contains(subject, "Pembayaran") ||
		strings.Contains(subject, "Transaksi") {
		return subject
	}

	if strings.Contains(snippet, "Notifikasi") && len(snippet) < 30 {
		return ""
	}

	clean := noteBoilerplateRe.ReplaceAllString(snippet, "")
	clean = greetingRe.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(clean)

	if len(clean) > 10 {
		r := []rune(clean)
		if len(r) > 100 {
			return string(r[:100])
		}
		return clean
	}
	return ""
}
