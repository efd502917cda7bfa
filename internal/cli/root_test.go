package cli

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/strata/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	saved := buildinfo.Get()
	t.Cleanup(func() { SetVersion(saved.Version, saved.Commit, saved.Date) })

	SetVersion("1.0.0", "abc123", "2024-01-01")

	if buildinfo.Version != "1.0.0" {
		t.Errorf("Version = %q, want %q", buildinfo.Version, "1.0.0")
	}
	if buildinfo.Commit != "abc123" {
		t.Errorf("Commit = %q, want %q", buildinfo.Commit, "abc123")
	}
	if buildinfo.Date != "2024-01-01" {
		t.Errorf("Date = %q, want %q", buildinfo.Date, "2024-01-01")
	}
}

func TestSetVersionEmptyKeepsValues(t *testing.T) {
	saved := buildinfo.Get()
	t.Cleanup(func() { SetVersion(saved.Version, saved.Commit, saved.Date) })

	SetVersion("2.0.0", "def456", "2025-01-01")
	SetVersion("", "", "")

	if buildinfo.Version != "2.0.0" || buildinfo.Commit != "def456" || buildinfo.Date != "2025-01-01" {
		t.Errorf("empty SetVersion changed build info to %+v", buildinfo.Get())
	}
}

func TestVersionCommand(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "strata "+buildinfo.Version) {
		t.Errorf("version output = %q", out.String())
	}
	if !strings.Contains(out.String(), "go: go") {
		t.Errorf("version output %q should report the Go version", out.String())
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"layout", "render", "snapshot", "serve", "preview", "cache", "completion", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := New(&bytes.Buffer{}, LogInfo).RootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})

			if err := root.Execute(); err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out.String(), "strata") {
				t.Errorf("%s script does not mention strata", shell)
			}
		})
	}

	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("completion tcsh: want error for unsupported shell")
	}
}

func TestFlagValueCompletion(t *testing.T) {
	tests := []struct {
		flag string
		want []string
	}{
		{"--strategy", []string{"greedy", "dfs-back", "mfas", "hybrid"}},
		{"--direction", []string{"TB", "BT", "LR", "RL"}},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			root := New(&bytes.Buffer{}, LogInfo).RootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetErr(&bytes.Buffer{})
			root.SetArgs([]string{"__complete", "layout", tt.flag, ""})

			if err := root.Execute(); err != nil {
				t.Fatalf("complete %s: %v", tt.flag, err)
			}
			lines := strings.Split(out.String(), "\n")
			for _, w := range tt.want {
				if !slices.Contains(lines, w) {
					t.Errorf("completions %q missing %q", lines, w)
				}
			}
		})
	}
}
