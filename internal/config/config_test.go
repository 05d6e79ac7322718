package config

import (
	"testing"
	"time"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted a missing API key")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("SLIDEDECK_DESCRIBE_WORKERS", "")
	t.Setenv("SLIDEDECK_IMAGE_WORKERS", "")
	t.Setenv("SLIDEDECK_DESCRIBE_TIMEOUT", "")
	t.Setenv("SLIDEDECK_IMAGE_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DescribeWorkers != DefaultDescribeWorkers || cfg.ImageWorkers != DefaultImageWorkers {
		t.Errorf("workers = %d/%d, want %d/%d",
			cfg.DescribeWorkers, cfg.ImageWorkers, DefaultDescribeWorkers, DefaultImageWorkers)
	}
	if cfg.DescribeTimeout != DefaultDescribeTimeout || cfg.ImageTimeout != DefaultImageTimeout {
		t.Errorf("timeouts = %v/%v, want defaults", cfg.DescribeTimeout, cfg.ImageTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("SLIDEDECK_DESCRIBE_WORKERS", "8")
	t.Setenv("SLIDEDECK_IMAGE_WORKERS", "2")
	t.Setenv("SLIDEDECK_IMAGE_TIMEOUT", "45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DescribeWorkers != 8 || cfg.ImageWorkers != 2 {
		t.Errorf("workers = %d/%d, want 8/2", cfg.DescribeWorkers, cfg.ImageWorkers)
	}
	if cfg.ImageTimeout != 45*time.Second {
		t.Errorf("ImageTimeout = %v, want 45s", cfg.ImageTimeout)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("SLIDEDECK_DESCRIBE_WORKERS", "many")
	t.Setenv("SLIDEDECK_DESCRIBE_TIMEOUT", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DescribeWorkers != DefaultDescribeWorkers {
		t.Errorf("DescribeWorkers = %d, want default", cfg.DescribeWorkers)
	}
	if cfg.DescribeTimeout != DefaultDescribeTimeout {
		t.Errorf("DescribeTimeout = %v, want default", cfg.DescribeTimeout)
	}
}

func TestLoadRejectsNonPositiveWorkers(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("SLIDEDECK_IMAGE_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted zero image workers")
	}
}
