// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries everything the binaries need to run.
type Config struct {
	// Port is the HTTP listen port for the API server.
	Port string

	// GmailLabelID is the label whose messages get processed. A label name
	// works too; it is resolved to an id at startup.
	GmailLabelID string

	// GmailCredentialsFile points at the OAuth client secret JSON.
	GmailCredentialsFile string

	// GmailRefreshToken is the long-lived token from the authorize flow.
	GmailRefreshToken string

	// BQProjectID and BQDataset locate the ledger dataset.
	BQProjectID string
	BQDataset   string

	// GCSBucket receives raw message archives. Empty disables archiving.
	GCSBucket string

	// JournalRulesFile is an optional JSON rule file. Empty means the
	// built-in rules.
	JournalRulesFile string

	// GeminiEnabled turns on the advisory account suggester.
	GeminiEnabled bool
	GeminiModel   string

	// PollCron is the worker's polling schedule.
	PollCron string

	// PubSubTopic is the topic Gmail watch publishes to. Empty disables
	// watch registration.
	PubSubTopic string

	// MaxMessages caps how many message ids one batch lists.
	MaxMessages int64

	// QueueWorkers is the in-memory queue's concurrency.
	QueueWorkers int
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getenv("PORT", "8080"),
		GmailLabelID:         os.Getenv("GMAIL_LABEL_ID"),
		GmailCredentialsFile: getenv("GMAIL_CREDENTIALS_FILE", "credentials.json"),
		GmailRefreshToken:    os.Getenv("GMAIL_REFRESH_TOKEN"),
		BQProjectID:          os.Getenv("BQ_PROJECT_ID"),
		BQDataset:            getenv("BQ_DATASET", "ledger"),
		GCSBucket:            os.Getenv("GCS_BUCKET"),
		JournalRulesFile:     os.Getenv("JOURNAL_RULES_FILE"),
		GeminiEnabled:        getenvBool("GEMINI_ENABLED", false),
		GeminiModel:          getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		PollCron:             getenv("POLL_CRON", "*/5 * * * *"),
		PubSubTopic:          os.Getenv("PUBSUB_TOPIC"),
		MaxMessages:          getenvInt64("MAX_MESSAGES", 50),
		QueueWorkers:         int(getenvInt64("QUEUE_WORKERS", 2)),
	}

	if cfg.BQProjectID == "" {
		return nil, fmt.Errorf("config.Load: BQ_PROJECT_ID is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
