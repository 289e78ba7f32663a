package config

import "testing"

func TestLoad_RequiresProject(t *testing.T) {
	t.Setenv("BQ_PROJECT_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without BQ_PROJECT_ID")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BQ_PROJECT_ID", "proj-1")
	for _, key := range []string{
		"PORT", "BQ_DATASET", "POLL_CRON", "MAX_MESSAGES", "GEMINI_ENABLED", "GEMINI_MODEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.BQDataset != "ledger" {
		t.Errorf("BQDataset = %q, want ledger", cfg.BQDataset)
	}
	if cfg.PollCron != "*/5 * * * *" {
		t.Errorf("PollCron = %q", cfg.PollCron)
	}
	if cfg.MaxMessages != 50 {
		t.Errorf("MaxMessages = %d, want 50", cfg.MaxMessages)
	}
	if cfg.GeminiEnabled {
		t.Error("GeminiEnabled = true, want false by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BQ_PROJECT_ID", "proj-1")
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_MESSAGES", "200")
	t.Setenv("GEMINI_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" || cfg.MaxMessages != 200 || !cfg.GeminiEnabled {
		t.Errorf("cfg = %+v, want env overrides applied", cfg)
	}
}

func TestGetenvInt64_Invalid(t *testing.T) {
	t.Setenv("SOME_INT", "not a number")

	if got := getenvInt64("SOME_INT", 7); got != 7 {
		t.Errorf("getenvInt64 = %d, want fallback 7", got)
	}
}
