package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klytics/sheetlens/internal/formats/xlsx"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAllCommandsExist(t *testing.T) {
	stdout, err := execute(t, "--help")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"serve", "preview", "ai", "config", "doctor", "completion", "version"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("command %q missing from --help output", name)
		}
	}
}

func TestAISubcommands(t *testing.T) {
	stdout, err := execute(t, "ai", "--help")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"analyze", "ask"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("ai subcommand %q missing", name)
		}
	}
}

func TestAskRequiresQuestionAndFile(t *testing.T) {
	if _, err := execute(t, "ai", "ask", "only-a-question"); err == nil {
		t.Error("expected an argument error")
	}
}

func TestPreviewRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{{Name: "S", Rows: [][]string{{"a", "b"}, {"1", "2"}}}}}
	if err := xlsx.WriteFile(wb, path); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "preview", "--no-color", "--rows", "5", path); err != nil {
		t.Errorf("preview failed: %v", err)
	}
}

func TestPreviewRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.xlsx")
	if err := os.WriteFile(path, []byte("not a workbook"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "preview", path)
	if err == nil || !strings.Contains(err.Error(), "valid .xlsx or .xls") {
		t.Errorf("expected unreadable workbook error, got %v", err)
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := execute(t, "config", "show", "--config", "/nonexistent/sheetlens.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
