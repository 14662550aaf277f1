// ABOUTME: Tests for root CLI command and global flags
// ABOUTME: Verifies command structure, subcommands, and flag handling
package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "pricewatch" {
		t.Errorf("Use = %q, want %q", cmd.Use, "pricewatch")
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("Short and Long descriptions should not be empty")
	}
	if !strings.Contains(cmd.Long, "███") {
		t.Error("Long description should contain ASCII banner")
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	cmd := NewRootCmd()

	tests := []struct {
		flagName  string
		shorthand string
		defValue  string
	}{
		{"verbose", "v", "false"},
		{"quiet", "q", "false"},
		{"format", "", "auto"},
		{"db", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("--%s flag not found", tt.flagName)
			}
			if tt.shorthand != "" && flag.Shorthand != tt.shorthand {
				t.Errorf("--%s shorthand = %q, want %q", tt.flagName, flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("--%s default = %q, want %q", tt.flagName, flag.DefValue, tt.defValue)
			}
		})
	}
}

func TestRootCmd_FlagValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectError bool
	}{
		{"verbose only", []string{"--verbose", "version"}, false},
		{"quiet only", []string{"--quiet", "version"}, false},
		{"verbose and quiet", []string{"--verbose", "--quiet", "version"}, true},
		{"json format", []string{"--format", "json", "version"}, false},
		{"unknown format", []string{"--format", "xml", "version"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			var output bytes.Buffer
			cmd.SetOut(&output)
			cmd.SetErr(&output)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	expected := []string{
		"serve", "mcp", "add", "list", "remove", "history", "check",
		"alerts", "similar", "deals", "alternatives", "export", "version",
	}

	for _, name := range expected {
		t.Run(name, func(t *testing.T) {
			for _, sub := range cmd.Commands() {
				if sub.Use == name || strings.HasPrefix(sub.Use, name+" ") {
					return
				}
			}
			t.Errorf("subcommand %q not found", name)
		})
	}
}

func TestAlertsCmd_Subcommands(t *testing.T) {
	cmd := NewAlertsCmd()
	for _, name := range []string{"read", "read-all", "delete"} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("alerts subcommand %q not found", name)
		}
	}
	if cmd.Flags().Lookup("unread") == nil {
		t.Error("--unread flag not found")
	}
}

func TestRootCmd_SilenceUsage(t *testing.T) {
	if !NewRootCmd().SilenceUsage {
		t.Error("SilenceUsage should be true to prevent usage on errors")
	}
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	defer SetVersion("dev", "none", "unknown")

	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version error = %v", err)
	}
	for _, want := range []string{"pricewatch 1.2.3", "abc123", "2026-01-01"} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("output %q missing %q", output.String(), want)
		}
	}
}

func TestMCPCmd_Description(t *testing.T) {
	cmd := NewMCPCmd()
	for _, want := range []string{"MCP", "LLM", "stdio"} {
		if !strings.Contains(cmd.Long, want) {
			t.Errorf("Long description should mention %q", want)
		}
	}
}
