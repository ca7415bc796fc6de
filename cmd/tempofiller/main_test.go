package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spec-kit/tempofiller/internal/api/dto"
	"github.com/spec-kit/tempofiller/internal/auth"
	"github.com/spec-kit/tempofiller/internal/config"
	"github.com/spec-kit/tempofiller/internal/domain"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worklogs.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadBulkFile(t *testing.T) {
	path := writeTempFile(t, `
billable: false
worklogs:
  - issueKey: PROJ-1
    hours: 7.5
    date: "2024-03-04"
    description: Sprint work
  - issueKey: PROJ-2
    hours: 0.5
    date: "2024-03-05"
`)
	input, err := loadBulkFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(input.Worklogs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(input.Worklogs))
	}
	first := input.Worklogs[0]
	if first.IssueKey != "PROJ-1" || first.Hours != 7.5 || first.Date != "2024-03-04" || first.Description != "Sprint work" {
		t.Fatalf("unexpected first entry %+v", first)
	}
	if input.Billable == nil || *input.Billable {
		t.Fatalf("expected billable=false, got %v", input.Billable)
	}
}

func TestLoadBulkFileErrors(t *testing.T) {
	if _, err := loadBulkFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := writeTempFile(t, "worklogs: [unterminated")
	if _, err := loadBulkFile(path); err == nil || !strings.Contains(err.Error(), "could not parse YAML") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestParseSubjectType(t *testing.T) {
	cases := map[string]domain.SubjectType{
		"agent":    domain.SubjectTypeAgent,
		"OPERATOR": domain.SubjectTypeOperator,
	}
	for in, want := range cases {
		got, err := parseSubjectType(in)
		if err != nil || got != want {
			t.Fatalf("parseSubjectType(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := parseSubjectType("admin"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestTokenCommandMintsValidToken(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"token", "--subject", "ops-console", "--kind", "operator"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var resp dto.AuthResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	claims, err := auth.NewTokenManager("cli-secret", 15).ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.Subject != "ops-console" || claims.Kind != domain.SubjectTypeOperator {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"token", "--subject", "x"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error without secret")
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "tempofiller dev" {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestApplyBuildVersion(t *testing.T) {
	saved := version
	version = "1.4.2"
	t.Cleanup(func() { version = saved })

	t.Setenv("APP_VERSION", "")
	cfg := &config.Config{App: config.AppConfig{Version: "dev"}}
	applyBuildVersion(cfg)
	if cfg.App.Version != "1.4.2" {
		t.Fatalf("expected linked version, got %q", cfg.App.Version)
	}

	t.Setenv("APP_VERSION", "2024.03")
	cfg = &config.Config{App: config.AppConfig{Version: "2024.03"}}
	applyBuildVersion(cfg)
	if cfg.App.Version != "2024.03" {
		t.Fatalf("expected APP_VERSION to win, got %q", cfg.App.Version)
	}
}

func TestIssueCachePrefixIsScopedPerInstanceAndCredential(t *testing.T) {
	a := issueCachePrefix("tempofiller:issue:", "https://jira.example.com/", "pat-alice")
	b := issueCachePrefix("tempofiller:issue:", "https://jira.example.com", "pat-bob")
	c := issueCachePrefix("tempofiller:issue:", "https://jira.other.org", "pat-alice")

	if !strings.HasPrefix(a, "tempofiller:issue:jira.example.com:") || !strings.HasSuffix(a, ":") {
		t.Fatalf("unexpected prefix %q", a)
	}
	if a == b || a == c || b == c {
		t.Fatalf("expected distinct scopes, got %q %q %q", a, b, c)
	}
	if strings.Contains(a, "pat-alice") {
		t.Fatalf("token leaked into key prefix %q", a)
	}
	if a != issueCachePrefix("tempofiller:issue:", "https://jira.example.com", "pat-alice") {
		t.Fatal("expected stable prefix for the same instance and credential")
	}
}
