package pipeline

import "strings"

// LabelMap maps normalized natural-language field labels, as they appear in
// notification bodies, to canonical field names. The map is immutable
// configuration; construct once and share.
type LabelMap map[string]string

// DefaultLabelMap returns the label table for Indonesian bank and e-wallet
// notifications (SeaBank, DANA, ShopeePay and friends).
func DefaultLabelMap() LabelMap {
	return LabelMap{
		"nama penerima":      FieldPartner,
		"rekening tujuan":    FieldRekening,
		"jumlah":             FieldNominal,
		"catatan":            FieldNote,
		"pengirim":           FieldPartner,
		"rekening pengirim":  FieldRekening,
		"info pengirim":      FieldPartner,
		"nomor rekening":     FieldRekening,
		"dari":               FieldPartner,
		"dari bank":          FieldPartner,
		"sumber":             FieldPartner,
		"ke bank":            FieldPartner,
		"ke rekening":        FieldRekening,
		"nominal":            FieldNominal,
		"notes":              FieldNote,
		"keterangan":         FieldNote,
		"deskripsi":          FieldNote,
		"dikirim ke":         FieldPartner,
		"total":              FieldNominal,
		"no. referensi":      FieldReferenceNumber,
		"nomor referensi":    FieldReferenceNumber,
		"reference number":   FieldReferenceNumber,
		"id transaksi":       FieldReferenceNumber,
		"transaksi id":       FieldReferenceNumber,
		"transfer dari":      FieldPartner,
		"nama merchant":      FieldPartner,
		"username":           FieldUsername,
		"no. virtual account": FieldRekening,
		"biaya":              FieldFee,
		"waktu transaksi":    FieldTanggal,
		"jenis transaksi":    FieldJenis,
	}
}

// NormalizeLabel lowercases and trims a raw label for lookup.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Map resolves a raw label to its canonical field name. Unknown labels pass
// through as their normalized form, so unmapped data becomes an ad hoc field
// instead of being dropped.
func (m LabelMap) Map(label string) string {
	norm := NormalizeLabel(label)
	if mapped, ok := m[norm]; ok {
		return mapped
	}
	return norm
}

// Known reports whether the label has an explicit mapping.
func (m LabelMap) Known(label string) bool {
	_, ok := m[NormalizeLabel(label)]
	return ok
}
