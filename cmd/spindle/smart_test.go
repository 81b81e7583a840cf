package main

import (
	"testing"
)

// TestNewSmartCmd tests the smart command creation.
func TestNewSmartCmd(t *testing.T) {
	t.Parallel()

	cmd := NewSmartCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "smart [url]" {
			t.Errorf("expected use 'smart [url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("requires exactly one argument", func(t *testing.T) {
		t.Parallel()
		if cmd.Args == nil {
			t.Error("expected Args validator")
		}
	})

	t.Run("has depth flag with smart default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("depth")
		if flag == nil {
			t.Fatal("expected depth flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
		if flag.DefValue != "2" {
			t.Errorf("expected default '2', got %q", flag.DefValue)
		}
	})

	t.Run("has follow-links flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("follow-links")
		if flag == nil {
			t.Fatal("expected follow-links flag")
		}
		if flag.Shorthand != "f" {
			t.Errorf("expected shorthand 'f', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has endpoint flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("endpoint") == nil {
			t.Error("expected endpoint flag")
		}
	})

	t.Run("has session flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("session") == nil {
			t.Error("expected session flag")
		}
	})
}

// TestBuildSmartConfig tests configuration building from the smart flags.
func TestBuildSmartConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewSmartCmd()
		cfg, err := buildSmartConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Targets) != 1 || cfg.Targets[0] != "https://example.com" {
			t.Errorf("expected targets [https://example.com], got %v", cfg.Targets)
		}
		if cfg.MaxDepth != 2 {
			t.Errorf("expected MaxDepth 2, got %d", cfg.MaxDepth)
		}
		if cfg.FollowLinks {
			t.Error("expected FollowLinks to be false")
		}
	})

	t.Run("builds config with follow-links", func(t *testing.T) {
		cmd := NewSmartCmd()
		_ = cmd.Flags().Set("follow-links", "true")
		cfg, err := buildSmartConfig(cmd, []string{"https://example.com/sitemap.xml"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.FollowLinks {
			t.Error("expected FollowLinks to be true")
		}
	})

	t.Run("builds config with custom render depth", func(t *testing.T) {
		cmd := NewSmartCmd()
		_ = cmd.Flags().Set("depth", "4")
		cfg, err := buildSmartConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxDepth != 4 {
			t.Errorf("expected MaxDepth 4, got %d", cfg.MaxDepth)
		}
	})
}
