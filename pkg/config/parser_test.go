package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saturnines/factsheet-tools/pkg/errors"
)

func TestLoader_ValidMinimalConfig(t *testing.T) {
	yamlContent := `
workspace:
  host: demo.leanix.net
  apitoken: secret
`
	cfg, err := DefaultLoader().Parse([]byte(yamlContent))
	if err != nil {
		t.Fatalf("Failed to parse valid config: %v", err)
	}

	if cfg.Workspace.Host != "demo.leanix.net" {
		t.Errorf("Expected host 'demo.leanix.net', got '%s'", cfg.Workspace.Host)
	}
	if cfg.Auth == nil || cfg.Auth.Type != AuthTypeAPIToken {
		t.Errorf("Expected default auth type api_token, got %+v", cfg.Auth)
	}
	if cfg.Auth.RefreshBefore != 60 {
		t.Errorf("Expected refresh_before 60, got %d", cfg.Auth.RefreshBefore)
	}
	if cfg.GraphQL.Timeout != 30 || cfg.GraphQL.PageSize != 100 || cfg.GraphQL.Concurrency != 4 {
		t.Errorf("Unexpected graphql defaults: %+v", cfg.GraphQL)
	}
	if cfg.Retry.MaxAttempts != 3 || len(cfg.Retry.RetryableStatuses) != 2 {
		t.Errorf("Unexpected retry defaults: %+v", cfg.Retry)
	}
	if cfg.Seed.Count != 300 || cfg.Seed.Type != "Application" {
		t.Errorf("Unexpected seed defaults: %+v", cfg.Seed)
	}
	if cfg.Archive.Comment != "archived" {
		t.Errorf("Expected archive comment 'archived', got %q", cfg.Archive.Comment)
	}
	if len(cfg.Report.FactSheetTypes) != 1 || cfg.Report.FactSheetTypes[0] != "Application" {
		t.Errorf("Unexpected report types: %v", cfg.Report.FactSheetTypes)
	}
	if len(cfg.Report.TagGroups) != 2 || !cfg.Report.TagGroups.IsAggregated("Non UX-Advocate") {
		t.Errorf("Unexpected default tag groups: %v", cfg.Report.TagGroups)
	}
}

func TestLoader_ReportTagGroups(t *testing.T) {
	yamlContent := `
workspace:
  host: demo.leanix.net
  apitoken: secret
report:
  fact_sheet_types: [Application, ITComponent]
  tag_groups:
    UX-Advocate:
      aggregated: false
    Non UX-Advocate:
      aggregated: true
`
	cfg, err := DefaultLoader().Parse([]byte(yamlContent))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(cfg.Report.FactSheetTypes) != 2 {
		t.Errorf("Expected 2 factsheet types, got %v", cfg.Report.FactSheetTypes)
	}
	if cfg.Report.TagGroups.IsAggregated("UX-Advocate") {
		t.Error("UX-Advocate should not be aggregated")
	}
	if !cfg.Report.TagGroups.IsAggregated("Non UX-Advocate") {
		t.Error("Non UX-Advocate should be aggregated")
	}
	if cfg.Report.TagGroups.IsAggregated("Unknown") {
		t.Error("unconfigured groups should not be aggregated")
	}
}

func TestLoader_EnvExpansionAndOverrides(t *testing.T) {
	t.Setenv("TEST_LX_TOKEN", "from-env")
	yamlContent := `
workspace:
  host: demo.leanix.net
  apitoken: ${TEST_LX_TOKEN}
`
	cfg, err := DefaultLoader().Parse([]byte(yamlContent))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Workspace.APIToken != "from-env" {
		t.Errorf("Expected expanded token, got %q", cfg.Workspace.APIToken)
	}

	t.Setenv(EnvHost, "override.leanix.net")
	cfg, err = DefaultLoader().Parse([]byte(yamlContent))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Workspace.Host != "override.leanix.net" {
		t.Errorf("Expected LX_HOST override, got %q", cfg.Workspace.Host)
	}
}

func TestLoader_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name:  "missing host",
			yaml:  "workspace:\n  apitoken: x\n",
			field: "workspace.host",
		},
		{
			name:  "missing token",
			yaml:  "workspace:\n  host: h\n",
			field: "workspace.apitoken",
		},
		{
			name:  "bearer without token",
			yaml:  "workspace:\n  host: h\nauth:\n  type: bearer\n",
			field: "auth.bearer.token",
		},
		{
			name:  "unknown auth type",
			yaml:  "workspace:\n  host: h\n  apitoken: x\nauth:\n  type: kerberos\n",
			field: "auth.type",
		},
		{
			name:  "bad retry status",
			yaml:  "workspace:\n  host: h\n  apitoken: x\nretry:\n  retryable_statuses: [42]\n",
			field: "retry.retryable_statuses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultLoader().Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !errors.Is(err, errors.ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Expected error mentioning %q, got %v", tt.field, err)
			}
		})
	}
}

func TestLoader_BearerNeedsNoAPIToken(t *testing.T) {
	yamlContent := `
workspace:
  host: demo.leanix.net
auth:
  type: bearer
  bearer:
    token: abc
`
	if _, err := DefaultLoader().Parse([]byte(yamlContent)); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
}

func TestLoader_InvalidYAML(t *testing.T) {
	_, err := DefaultLoader().Parse([]byte("workspace: [unterminated"))
	if !errors.Is(err, errors.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestLoader_LoadMissingFile(t *testing.T) {
	_, err := DefaultLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, errors.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestParseWorkspace(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "valid", data: `{"host":"demo.leanix.net","apitoken":"abc"}`},
		{name: "missing token", data: `{"host":"demo.leanix.net"}`, wantErr: "apitoken: is required"},
		{name: "extra key", data: `{"host":"h","apitoken":"a","workspace":"w"}`, wantErr: "workspace: unknown key"},
		{name: "empty host", data: `{"host":"","apitoken":"a"}`, wantErr: "host: must be a non-empty string"},
		{name: "empty file", data: ``, wantErr: "host: is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, err := ParseWorkspace([]byte(tt.data))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ParseWorkspace failed: %v", err)
				}
				if ws.Host != "demo.leanix.net" || ws.APIToken != "abc" {
					t.Errorf("Unexpected workspace %+v", ws)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadWorkspace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lxr.json")
	if err := os.WriteFile(path, []byte(`{"host":"demo.leanix.net","apitoken":"abc"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	ws, err := LoadWorkspace(path)
	if err != nil {
		t.Fatalf("LoadWorkspace failed: %v", err)
	}
	if ws.Host != "demo.leanix.net" {
		t.Errorf("Unexpected host %q", ws.Host)
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"demo.leanix.net", "https://demo.leanix.net"},
		{"demo.leanix.net/", "https://demo.leanix.net"},
		{"http://127.0.0.1:8080/", "http://127.0.0.1:8080"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := BaseURL(tt.in); got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := (Workspace{Host: "x.leanix.net"}).BaseURL(); got != "https://x.leanix.net" {
		t.Errorf("Workspace.BaseURL() = %q", got)
	}
}
