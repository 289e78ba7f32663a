package pipeline

import "testing"

func TestDetectType(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		snippet string
		want    TransactionType
	}{
		{
			name:    "virtual account transaction detail",
			body:    "Jenis Transaksi: Transfer Virtual Account",
			want:    TypeTransferKeluar,
		},
		{
			name:    "e-commerce merchant",
			subject: "Pembelian di Shopee berhasil",
			want:    TypeTransferKeluar,
		},
		{
			name:    "seabank incoming transfer",
			subject: "Kamu menerima transfer masuk dari JOHN DOE",
			want:    TypeTransferMasuk,
		},
		{
			name:    "seabank outgoing transfer",
			snippet: "Permintaan transfer kamu telah berhasil diproses",
			want:    TypeTransferKeluar,
		},
		{
			name:    "incoming payment",
			subject: "Pembayaran masuk dari pelanggan",
			want:    TypePembayaranMasuk,
		},
		{
			name:    "outgoing payment",
			subject: "Pembayaran tagihan berhasil",
			want:    TypePembayaranKeluar,
		},
		{
			name:    "top up",
			subject: "Top up saldo berhasil",
			want:    TypeTopup,
		},
		{
			name:    "generic incoming words",
			snippet: "Uang masuk ke rekeningmu",
			want:    TypeTransferMasuk,
		},
		{
			name:    "generic outgoing words",
			snippet: "Dana keluar dari rekeningmu",
			want:    TypeTransferKeluar,
		},
		{
			name:    "no signal",
			subject: "Promo spesial untukmu",
			want:    TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectType(tt.subject, tt.body, tt.snippet)
			if got != tt.want {
				t.Errorf("DetectType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectType_OrderMatters(t *testing.T) {
	// The e-commerce rule outranks the incoming phrases: a Shopee email that
	// also says "berhasil diproses" is still an outgoing payment.
	got := DetectType("Transaksi Shopee kamu telah berhasil diproses", "", "")
	if got != TypeTransferKeluar {
		t.Errorf("DetectType() = %q, want %q", got, TypeTransferKeluar)
	}
}

func TestStandardizeType(t *testing.T) {
	tests := []struct {
		name     string
		detected TransactionType
		rawType  string
		subject  string
		snippet  string
		want     TransactionType
	}{
		{
			name:     "detected wins",
			detected: TypeTopup,
			rawType:  "Transfer Virtual Account",
			want:     TypeTopup,
		},
		{
			name:     "raw type mapped outgoing",
			detected: TypeUnknown,
			rawType:  "Transfer Virtual Account",
			want:     TypeTransferKeluar,
		},
		{
			name:     "raw type mapped incoming",
			detected: TypeUnknown,
			rawType:  "Incoming credit",
			want:     TypeTransferMasuk,
		},
		{
			name:     "secondary inference from subject",
			detected: TypeUnknown,
			subject:  "Kamu menerima transfer",
			want:     TypeTransferMasuk,
		},
		{
			name:     "no signal defaults to outgoing",
			detected: TypeUnknown,
			subject:  "Halo nasabah",
			want:     TypeTransferKeluar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StandardizeType(tt.detected, tt.rawType, tt.subject, tt.snippet)
			if got != tt.want {
				t.Errorf("StandardizeType() = %q, want %q", got, tt.want)
			}
		})
	}
}

// StandardizeType must always land in the closed five-value set, whatever
// the inputs.
func TestStandardizeType_AlwaysCanonical(t *testing.T) {
	inputs := []struct{ rawType, subject, snippet string }{
		{"", "", ""},
		{"???", "random text", "more random text"},
		{"Weird Vendor Type", "Promo menarik", ""},
		{"", "Kamu menerima transfer masuk", "dari JOHN"},
	}
	for _, in := range inputs {
		got := StandardizeType(TypeUnknown, in.rawType, in.subject, in.snippet)
		if !got.Valid() {
			t.Errorf("StandardizeType(%q, %q, %q) = %q, not canonical", in.rawType, in.subject, in.snippet, got)
		}
	}
}
