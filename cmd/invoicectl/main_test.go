package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"invoicebuilder/internal/config"
)

func TestNewApp_Commands(t *testing.T) {
	want := []string{"presets", "templates", "config", "render", "print", "serve", "mcp", "backup"}
	cmds := newApp().Commands
	if len(cmds) != len(want) {
		t.Fatalf("commands = %d, want %d", len(cmds), len(want))
	}
	for i, name := range want {
		if cmds[i].Name != name {
			t.Errorf("command %d = %q, want %q", i, cmds[i].Name, name)
		}
	}
}

// testConfigFile writes a config that keeps all data under a temp dir.
func testConfigFile(t *testing.T) (path, dataDir string) {
	t.Helper()
	for _, env := range []string{config.EnvDataDir, config.EnvStorageDriver, config.EnvStorageDSN, config.EnvHTTPAddr} {
		t.Setenv(env, "")
	}
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	cfg := config.Default()
	cfg.DataDir = dataDir
	cfg.Backup.Schedule = ""
	path = filepath.Join(dir, "config.json")
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	return path, dataDir
}

// run executes the CLI without letting exit errors end the test binary.
func run(args ...string) error {
	a := newApp()
	a.ExitErrHandler = func(*cli.Context, error) {}
	return a.Run(append([]string{"invoicectl"}, args...))
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("%s is not a PDF: %q", path, data[:min(len(data), 16)])
	}
}

func TestRender_Preset(t *testing.T) {
	cfgPath, _ := testConfigFile(t)
	out := filepath.Join(t.TempDir(), "out", "modern.pdf")

	if err := run("--config", cfgPath, "render", "-t", "modern", "-o", out); err != nil {
		t.Fatal(err)
	}
	assertPDF(t, out)

	missing := filepath.Join(t.TempDir(), "missing.pdf")
	if err := run("--config", cfgPath, "render", "-t", "nope", "-o", missing); err == nil {
		t.Error("unknown template should fail")
	}
}

func TestPrint_Style(t *testing.T) {
	cfgPath, _ := testConfigFile(t)
	dir := t.TempDir()
	data := filepath.Join(dir, "print.json")
	body := `{"invoiceNumber":"INV-7","date":"2026-01-15","customerName":"Acme",
		"items":[{"product":"Design","quantity":2,"price":"150.00","tax":"10"}],
		"subtotal":"300","total":"330","theme":"StyleThree"}`
	if err := os.WriteFile(data, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "print.pdf")

	if err := run("--config", cfgPath, "print", "-d", data, "-s", "StyleTwo", "-o", out); err != nil {
		t.Fatal(err)
	}
	assertPDF(t, out)
}

func TestBackup_RunAndRestore(t *testing.T) {
	cfgPath, dataDir := testConfigFile(t)

	if err := run("--config", cfgPath, "backup", "run"); err != nil {
		t.Fatal(err)
	}
	files, err := filepath.Glob(filepath.Join(dataDir, "backups", "backup-*.json"))
	if err != nil || len(files) != 1 {
		t.Fatalf("backups = %v, %v", files, err)
	}

	if err := run("--config", cfgPath, "backup", "restore", files[0]); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte("{nope"), 0644)
	if err := run("--config", cfgPath, "backup", "restore", bad); err == nil {
		t.Error("corrupt backup should not restore")
	}
}
