package main

import (
	"testing"
	"time"

	"openreview-ratings/config"

	"github.com/spf13/cobra"
)

func TestApplyFlagOverrides(t *testing.T) {
	defer func() {
		engine, outputDir, showBrowser, watchInterval = "", "", false, 0
	}()

	cfg = config.GetDefaultConfig()
	engine = config.EngineStatic
	outputDir = "out"
	showBrowser = true

	cmd := &cobra.Command{Use: "watch"}
	cmd.Flags().DurationVar(&watchInterval, "interval", 0, "")
	if err := cmd.Flags().Set("interval", "1h"); err != nil {
		t.Fatal(err)
	}

	if err := applyFlagOverrides(cmd); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}
	if cfg.Extractor.Engine != config.EngineStatic {
		t.Errorf("Engine = %q", cfg.Extractor.Engine)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("Output.Dir = %q", cfg.Output.Dir)
	}
	if cfg.Browser.Headless {
		t.Error("--show-browser should disable headless mode")
	}
	if cfg.Schedule.Interval != time.Hour {
		t.Errorf("Interval = %v", cfg.Schedule.Interval)
	}
	if cfg.Extractor.Label != "Preliminary Rating" {
		t.Errorf("unset flags must keep config values, Label = %q", cfg.Extractor.Label)
	}
}

func TestApplyFlagOverridesRejectsUnknownEngine(t *testing.T) {
	defer func() { engine = "" }()

	cfg = config.GetDefaultConfig()
	engine = "firefox"
	if err := applyFlagOverrides(&cobra.Command{}); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestRequireFlags(t *testing.T) {
	defer func() { listingURL, venueName = "", "" }()

	listingURL, venueName = "", "ICLR"
	if err := requireFlags(); err == nil {
		t.Error("expected error without listing URL")
	}
	listingURL = "https://openreview.net/group?id=ICLR"
	if err := requireFlags(); err != nil {
		t.Errorf("requireFlags() error = %v", err)
	}
}
