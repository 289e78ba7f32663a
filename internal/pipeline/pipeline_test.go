package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakeMail struct {
	ids      []string
	messages map[string]*Message
	listErr  error
	fetchErr map[string]error
}

func (f *fakeMail) ListMessageIDs(ctx context.Context, labelID string, max int64) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ids, nil
}

func (f *fakeMail) FetchMessage(ctx context.Context, id string) (*Message, error) {
	if err := f.fetchErr[id]; err != nil {
		return nil, err
	}
	msg, ok := f.messages[id]
	if !ok {
		return nil, errors.New("message not found")
	}
	return msg, nil
}

type fakeStore struct {
	existing map[string]bool

	transactions []*Transaction
	entries      []*JournalEntry
	deleted      []string

	insertTxErr    error
	insertEntryErr error
	deleteErr      error
}

func (f *fakeStore) ExistingMessageIDs(ctx context.Context) (map[string]bool, error) {
	if f.existing == nil {
		return map[string]bool{}, nil
	}
	return f.existing, nil
}

func (f *fakeStore) InsertTransaction(ctx context.Context, tx *Transaction) error {
	if f.insertTxErr != nil {
		return f.insertTxErr
	}
	f.transactions = append(f.transactions, tx)
	return nil
}

func (f *fakeStore) InsertJournalEntry(ctx context.Context, entry *JournalEntry) error {
	if f.insertEntryErr != nil {
		return f.insertEntryErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeStore) DeleteTransaction(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeArchiver struct {
	archived map[string][]byte
	err      error
}

func (f *fakeArchiver) Archive(ctx context.Context, messageID string, raw []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.archived == nil {
		f.archived = map[string][]byte{}
	}
	f.archived[messageID] = raw
	return nil
}

type fakeSuggester struct {
	suggestion string
	err        error
	calls      int
}

func (f *fakeSuggester) SuggestAccount(ctx context.Context, description string, candidates []string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.suggestion, nil
}

func arisanMessage(id string) *Message {
	return &Message{
		ID:      id,
		Subject: "Kamu menerima transfer masuk",
		HTML: `<html><body><table>
			<tr><td>Pengirim</td><td>JOHN DOE</td></tr>
			<tr><td>Jumlah</td><td>Rp50.000</td></tr>
			<tr><td>Catatan</td><td>Pembayaran arisan</td></tr>
			<tr><td>Waktu Transaksi</td><td>05 Mei 2025 12:48</td></tr>
		</table></body></html>`,
		Snippet: "Kamu menerima transfer masuk dari JOHN DOE",
	}
}

func newTestProcessor(mail *fakeMail, store *fakeStore, opts ...func(*ProcessorConfig)) *Processor {
	cfg := ProcessorConfig{
		Mail:      mail,
		Store:     store,
		Extractor: newTestExtractor(),
		Decider:   NewDecider(DefaultJournalRules()),
		Logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewProcessor(cfg)
}

func TestProcessMessage_IncomingTransfer(t *testing.T) {
	mail := &fakeMail{messages: map[string]*Message{"m1": arisanMessage("m1")}}
	store := &fakeStore{}
	p := newTestProcessor(mail, store)

	tx, entry, err := p.ProcessMessage(context.Background(), "m1")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if tx.Jenis != TypeTransferMasuk {
		t.Errorf("Jenis = %q, want transfer_masuk", tx.Jenis)
	}
	if tx.Nominal != 50000 {
		t.Errorf("Nominal = %d, want 50000", tx.Nominal)
	}
	if tx.MessageID != "m1" {
		t.Errorf("MessageID = %q, want m1", tx.MessageID)
	}
	if tx.ID == "" || entry.ID == "" {
		t.Error("transaction and entry must get generated ids")
	}
	if entry.TransactionID != tx.ID {
		t.Errorf("entry.TransactionID = %q, want %q", entry.TransactionID, tx.ID)
	}
	if entry.AkunDebet != AccountBank || entry.AkunKredit != "Arisan" {
		t.Errorf("accounts = %q/%q, want Bank/Arisan", entry.AkunDebet, entry.AkunKredit)
	}
	if entry.NeedsReview {
		t.Error("NeedsReview = true, want false for cleanly mapped note")
	}

	if len(store.transactions) != 1 || len(store.entries) != 1 {
		t.Fatalf("store has %d transactions, %d entries, want 1/1",
			len(store.transactions), len(store.entries))
	}
}

func TestProcessMailbox_SkipsExisting(t *testing.T) {
	mail := &fakeMail{
		ids: []string{"m1", "m2"},
		messages: map[string]*Message{
			"m1": arisanMessage("m1"),
			"m2": arisanMessage("m2"),
		},
	}
	store := &fakeStore{existing: map[string]bool{"m1": true}}
	p := newTestProcessor(mail, store)

	report, err := p.ProcessMailbox(context.Background(), "Label_1", 10)
	if err != nil {
		t.Fatalf("ProcessMailbox failed: %v", err)
	}

	if report.Total != 2 || report.Skipped != 1 || report.Processed != 1 || report.Failed != 0 {
		t.Errorf("report = %+v, want total 2, skipped 1, processed 1", report)
	}
	if len(store.transactions) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(store.transactions))
	}
	if store.transactions[0].MessageID != "m2" {
		t.Errorf("stored MessageID = %q, want m2", store.transactions[0].MessageID)
	}
}

func TestProcessMailbox_FailureContinuesBatch(t *testing.T) {
	mail := &fakeMail{
		ids: []string{"m1", "m2", "m3"},
		messages: map[string]*Message{
			"m1": arisanMessage("m1"),
			"m3": arisanMessage("m3"),
		},
		fetchErr: map[string]error{"m2": errors.New("gmail 503")},
	}
	store := &fakeStore{}
	p := newTestProcessor(mail, store)

	report, err := p.ProcessMailbox(context.Background(), "Label_1", 10)
	if err != nil {
		t.Fatalf("ProcessMailbox failed: %v", err)
	}

	if report.Processed != 2 || report.Failed != 1 {
		t.Errorf("report = %+v, want processed 2, failed 1", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].MessageID != "m2" {
		t.Fatalf("Failures = %+v, want one failure for m2", report.Failures)
	}
	if !strings.Contains(report.Failures[0].Error, "gmail 503") {
		t.Errorf("failure error = %q, want underlying cause kept", report.Failures[0].Error)
	}
}

func TestProcessMailbox_ListErrorAborts(t *testing.T) {
	mail := &fakeMail{listErr: errors.New("label not found")}
	p := newTestProcessor(mail, &fakeStore{})

	if _, err := p.ProcessMailbox(context.Background(), "bogus", 10); err == nil {
		t.Fatal("expected error when listing fails")
	}
}

func TestProcessMessage_CompensatingDelete(t *testing.T) {
	mail := &fakeMail{messages: map[string]*Message{"m1": arisanMessage("m1")}}
	store := &fakeStore{insertEntryErr: errors.New("bigquery quota")}
	p := newTestProcessor(mail, store)

	_, _, err := p.ProcessMessage(context.Background(), "m1")
	if err == nil {
		t.Fatal("expected error when entry insert fails")
	}

	if len(store.transactions) != 1 {
		t.Fatalf("transaction insert count = %d, want 1", len(store.transactions))
	}
	if len(store.deleted) != 1 || store.deleted[0] != store.transactions[0].ID {
		t.Errorf("deleted = %v, want compensating delete of %q",
			store.deleted, store.transactions[0].ID)
	}
	if len(store.entries) != 0 {
		t.Errorf("stored %d entries, want 0", len(store.entries))
	}
}

func TestProcessMessage_ArchiveBestEffort(t *testing.T) {
	msg := arisanMessage("m1")
	msg.Raw = []byte(`{"id":"m1"}`)
	mail := &fakeMail{messages: map[string]*Message{"m1": msg}}
	store := &fakeStore{}
	arch := &fakeArchiver{err: errors.New("bucket gone")}
	p := newTestProcessor(mail, store, func(cfg *ProcessorConfig) { cfg.Archiver = arch })

	if _, _, err := p.ProcessMessage(context.Background(), "m1"); err != nil {
		t.Fatalf("archive failure must not fail the message: %v", err)
	}
	if len(store.transactions) != 1 {
		t.Errorf("stored %d transactions, want 1", len(store.transactions))
	}

	arch.err = nil
	mail.messages["m2"] = arisanMessage("m2")
	mail.messages["m2"].Raw = []byte(`{"id":"m2"}`)
	if _, _, err := p.ProcessMessage(context.Background(), "m2"); err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if _, ok := arch.archived["m2"]; !ok {
		t.Error("raw payload was not archived")
	}
}

func TestProcessMessage_SuggesterOnlyOnReview(t *testing.T) {
	clean := arisanMessage("clean")
	unmapped := arisanMessage("unmapped")
	unmapped.Subject = "Transfer berhasil"
	unmapped.HTML = `<html><body><table>
		<tr><td>Penerima</td><td>TOKO MAJU</td></tr>
		<tr><td>Jumlah</td><td>Rp25.000</td></tr>
	</table></body></html>`
	unmapped.Snippet = "Transfer kamu telah berhasil"

	mail := &fakeMail{messages: map[string]*Message{"clean": clean, "unmapped": unmapped}}
	store := &fakeStore{}
	sug := &fakeSuggester{suggestion: "Beban Lain-lain"}
	p := newTestProcessor(mail, store, func(cfg *ProcessorConfig) { cfg.Suggester = sug })

	if _, _, err := p.ProcessMessage(context.Background(), "clean"); err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if sug.calls != 0 {
		t.Errorf("suggester called %d times for mapped entry, want 0", sug.calls)
	}

	_, entry, err := p.ProcessMessage(context.Background(), "unmapped")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if sug.calls != 1 {
		t.Errorf("suggester called %d times, want 1", sug.calls)
	}
	if entry.SuggestedAccount != "Beban Lain-lain" {
		t.Errorf("SuggestedAccount = %q", entry.SuggestedAccount)
	}

	// A failing suggester degrades to no suggestion.
	sug.err = errors.New("model unavailable")
	mail.messages["again"] = unmapped
	_, entry, err = p.ProcessMessage(context.Background(), "again")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if entry.SuggestedAccount != "" {
		t.Errorf("SuggestedAccount = %q, want empty after suggester error", entry.SuggestedAccount)
	}
}

func TestDescriptionForMapping(t *testing.T) {
	tx := &Transaction{Note: "bayar arisan", Rekening: "BCA"}

	got := DescriptionForMapping(tx, "Notifikasi Transfer", strings.Repeat("x", 120))

	if !strings.HasPrefix(got, "bayar arisan Notifikasi Transfer ") {
		t.Errorf("description = %q, want note then subject first", got)
	}
	if !strings.HasSuffix(got, " BCA") {
		t.Errorf("description = %q, want rekening last", got)
	}
	if strings.Contains(got, strings.Repeat("x", 101)) {
		t.Error("snippet excerpt longer than 100 runes")
	}

	empty := DescriptionForMapping(&Transaction{}, "", "")
	if empty != "" {
		t.Errorf("description = %q, want empty when every part is blank", empty)
	}
}
