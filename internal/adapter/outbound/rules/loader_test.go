package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decide-fyi/refund-notary/internal/domain/refund"
)

func TestLoadDefault(t *testing.T) {
	table, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}

	if table.RulesVersion == "" {
		t.Error("default table has no rules_version")
	}

	// Pin the windows the documented examples rely on.
	checks := map[string]int{
		"adobe":         14,
		"spotify":       0,
		"notion":        3,
		"microsoft_365": 30,
	}
	for vendor, window := range checks {
		p, ok := table.Lookup(vendor)
		if !ok {
			t.Errorf("default table missing vendor %q", vendor)
			continue
		}
		if p.WindowDays != window {
			t.Errorf("%s window_days = %d, want %d", vendor, p.WindowDays, window)
		}
	}

	if p, ok := table.Lookup("amazon_prime"); !ok || p.Mode != refund.ModeRequiresUsageVerification {
		t.Errorf("amazon_prime should require usage verification, got %+v (ok=%v)", p, ok)
	}
}

func TestLoadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	content := `{"rules_version":"v2-test","vendors":{"acme":{"window_days":7}}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if table.RulesVersion != "v2-test" {
		t.Errorf("rules_version = %q, want v2-test", table.RulesVersion)
	}
	if p, ok := table.Lookup("acme"); !ok || p.WindowDays != 7 {
		t.Errorf("acme policy = %+v (ok=%v), want window 7", p, ok)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "rules_version: v2-test\nvendors:\n  acme:\n    window_days: 7\n  gadgets:\n    window_days: 0\n    mode: no_refunds\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if p, ok := table.Lookup("gadgets"); !ok || p.Mode != refund.ModeNoRefunds {
		t.Errorf("gadgets policy = %+v (ok=%v), want no_refunds", p, ok)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"bad json", "rules.json", `{not json`, "parse JSON"},
		{"missing version", "rules.json", `{"vendors":{"a":{"window_days":1}}}`, "rules_version"},
		{"unknown extension", "rules.toml", `rules_version = "v1"`, "unsupported rules file extension"},
		{"unknown mode", "rules.json", `{"rules_version":"v1","vendors":{"a":{"window_days":1,"mode":"perhaps"}}}`, "unknown mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	table, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if _, ok := table.Lookup("adobe"); !ok {
		t.Error("default table should contain adobe")
	}
}
