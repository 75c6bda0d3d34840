package config

import (
	"os"
	"testing"
)

func TestConfigLoad_EmbedDefaults(t *testing.T) {
	_ = os.Unsetenv("AURORA_EMBED_PROVIDER")
	_ = os.Unsetenv("AURORA_EMBED_MODEL")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.EmbedProvider != "ollama" || cfg.EmbedModel != "mxbai-embed-large" {
		t.Fatalf("unexpected default embed config: %+v", cfg)
	}
}

func TestConfigLoad_EmbedEnvOverride(t *testing.T) {
	_ = os.Setenv("AURORA_EMBED_MODEL", "test-model")
	defer func() { _ = os.Unsetenv("AURORA_EMBED_MODEL") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.EmbedModel != "test-model" {
		t.Fatalf("embed model env override failed, got %s", cfg.EmbedModel)
	}
}

func TestConfigLoad_RelayDefaults(t *testing.T) {
	_ = os.Unsetenv("AURORA_HISTORY_LIMIT")
	_ = os.Unsetenv("AURORA_MEMORY_TOP_K")
	_ = os.Unsetenv("AURORA_RETRY_MAX")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HistoryLimit != 20 || cfg.MemoryTopK != 3 || cfg.RetryMax != 3 {
		t.Fatalf("unexpected relay defaults: %+v", cfg)
	}
	if cfg.DefaultQuota != 20 {
		t.Fatalf("unexpected default quota: %d", cfg.DefaultQuota)
	}
}
