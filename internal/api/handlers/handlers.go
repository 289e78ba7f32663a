package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"mutasiku/internal/api/middleware"
	infraBQ "mutasiku/internal/infra/bigquery"
	"mutasiku/internal/jobs"
)

// LedgerStore is the slice of the BigQuery store the API needs.
type LedgerStore interface {
	ListTransactions(ctx context.Context, limit int64) ([]*infraBQ.TransactionRow, error)
	GetTransaction(ctx context.Context, transactionID string) (*infraBQ.TransactionRow, error)
	ListJournalEntries(ctx context.Context, onlyReview bool, limit int64) ([]*infraBQ.JournalEntryRow, error)
	ResolveJournalEntryReview(ctx context.Context, entryID, account string) error
}

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	store LedgerStore
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store LedgerStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: store, log: log}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transactions, err := h.store.ListTransactions(ctx, queryLimit(r))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	// Return array directly for frontend compatibility
	if transactions == nil {
		transactions = []*infraBQ.TransactionRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET /api/transactions/{id}
func (h *TransactionsHandler) GetTransaction(w http.ResponseWriter, r *http.Request, transactionID string) {
	ctx := r.Context()

	tx, err := h.store.GetTransaction(ctx, transactionID)
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to get transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get transaction")
		return
	}
	if tx == nil {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, tx)
}

// JournalHandler handles journal entry endpoints.
type JournalHandler struct {
	store LedgerStore
	log   zerolog.Logger
}

// NewJournalHandler creates a new journal handler.
func NewJournalHandler(store LedgerStore, log zerolog.Logger) *JournalHandler {
	return &JournalHandler{store: store, log: log}
}

// ListEntries handles GET /api/journal-entries
// With ?review=true only entries still flagged for review are returned.
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	onlyReview := r.URL.Query().Get("review") == "true"

	entries, err := h.store.ListJournalEntries(ctx, onlyReview, queryLimit(r))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list journal entries")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list journal entries")
		return
	}

	if entries == nil {
		entries = []*infraBQ.JournalEntryRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, entries)
}

// ResolveReview handles POST /api/journal-entries/{id}/review
// The reviewer picks the final counter-account; the Bank side stays put.
func (h *JournalHandler) ResolveReview(w http.ResponseWriter, r *http.Request, entryID string) {
	var req struct {
		Account string `json:"account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Account == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account is required")
		return
	}

	ctx := r.Context()
	if err := h.store.ResolveJournalEntryReview(ctx, entryID, req.Account); err != nil {
		h.log.Error().Err(err).Str("entry_id", entryID).Msg("Failed to resolve review")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to resolve review")
		return
	}

	h.log.Info().Str("entry_id", entryID).Str("account", req.Account).Msg("Journal entry review resolved")

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"entry_id": entryID,
		"account":  req.Account,
		"status":   "resolved",
	})
}

// ProcessHandler triggers mailbox processing runs.
type ProcessHandler struct {
	publisher    jobs.Publisher
	defaultLabel string
	defaultMax   int64
	log          zerolog.Logger
}

// NewProcessHandler creates a new process handler.
func NewProcessHandler(publisher jobs.Publisher, defaultLabel string, defaultMax int64, log zerolog.Logger) *ProcessHandler {
	return &ProcessHandler{
		publisher:    publisher,
		defaultLabel: defaultLabel,
		defaultMax:   defaultMax,
		log:          log,
	}
}

// Enqueue handles POST /api/process
func (h *ProcessHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LabelID     string `json:"label_id"`
		MaxMessages int64  `json:"max_messages"`
	}
	// An empty body means "run with the configured defaults".
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.LabelID == "" {
		req.LabelID = h.defaultLabel
	}
	if req.MaxMessages <= 0 {
		req.MaxMessages = h.defaultMax
	}

	ctx := r.Context()
	job := &jobs.ProcessMailboxJob{
		LabelID:     req.LabelID,
		MaxMessages: req.MaxMessages,
	}
	if err := h.publisher.PublishProcessMailbox(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue mailbox job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue mailbox job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("label_id", job.LabelID).Msg("Mailbox job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":   job.JobID,
		"label_id": job.LabelID,
		"status":   string(job.Status),
	})
}

// PubSubPush handles POST /api/notifications/gmail, the Pub/Sub push endpoint
// Gmail watch notifications arrive on. The envelope is decoded only for
// logging; any push means "new mail", so a mailbox job is enqueued and the
// push is acked. Non-2xx would make Pub/Sub redeliver forever on a bad
// payload, so malformed envelopes are acked too.
func (h *ProcessHandler) PubSubPush(w http.ResponseWriter, r *http.Request) {
	var envelope struct {
		Message struct {
			Data      string `json:"data"`
			MessageID string `json:"messageId"`
		} `json:"message"`
		Subscription string `json:"subscription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		h.log.Warn().Err(err).Msg("Malformed Pub/Sub envelope, acking anyway")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx := r.Context()
	job := &jobs.ProcessMailboxJob{
		LabelID:     h.defaultLabel,
		MaxMessages: h.defaultMax,
	}
	if err := h.publisher.PublishProcessMailbox(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue mailbox job for push notification")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue mailbox job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("pubsub_message_id", envelope.Message.MessageID).
		Msg("Push notification accepted")

	w.WriteHeader(http.StatusNoContent)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		LabelID: query.Get("label_id"),
		Status:  jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// queryLimit reads the ?limit= parameter, 0 when absent or invalid.
func queryLimit(r *http.Request) int64 {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0
	}
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
