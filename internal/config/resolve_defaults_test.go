package config

import (
	"os"
	"testing"
)

func unsetBuildEnv() {
	_ = os.Unsetenv("AURORA_BUILD_TARGET")
	_ = os.Unsetenv("AURORA_DB_DRIVER")
	_ = os.Unsetenv("AURORA_VECTOR_STORE")
}

func TestResolveDefaultsLocal(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("AURORA_BUILD_TARGET", "local")
	defer unsetBuildEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "sqlite" || cfg.VectorStore != "chromem" {
		t.Fatalf("unexpected mapping for local: %s %s", cfg.DBDriver, cfg.VectorStore)
	}
}

func TestResolveDefaultsCloud(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("AURORA_BUILD_TARGET", "cloud")
	defer unsetBuildEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" || cfg.VectorStore != "weaviate" {
		t.Fatalf("unexpected mapping for cloud: %s %s", cfg.DBDriver, cfg.VectorStore)
	}
}

func TestResolveDefaultsOverride(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("AURORA_BUILD_TARGET", "local")
	_ = os.Setenv("AURORA_DB_DRIVER", "postgres")
	defer unsetBuildEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("override failed, got %s", cfg.DBDriver)
	}
}

func TestResolveDefaultsRejectsUnknownTarget(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("AURORA_BUILD_TARGET", "mainframe")
	defer unsetBuildEnv()

	if _, err := New(); err == nil {
		t.Fatalf("expected error for unknown build target")
	}
}
