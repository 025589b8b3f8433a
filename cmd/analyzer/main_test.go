package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yudduy/ira/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func archiveServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/cdx") {
			if strings.HasPrefix(r.URL.Query().Get("url"), "acme.com") {
				_ = json.NewEncoder(w).Encode([][]string{
					{"urlkey", "timestamp", "original"},
					{"com,acme)/", r.URL.Query().Get("from") + "000000", "https://acme.com/"},
				})

				return
			}

			_ = json.NewEncoder(w).Encode([][]string{{"urlkey", "timestamp", "original"}})

			return
		}

		_, _ = w.Write([]byte("<html><body><p>Clean energy for everyone.</p></body></html>"))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func writeTestConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()

	cfg := config.Default()
	cfg.Archive.RateLimitSec = 0
	cfg.Archive.BackoffBaseSec = 0
	cfg.Logging.File = ""
	cfg.Logging.Level = "error"
	cfg.LLM.Provider = config.ProviderMock

	if mutate != nil {
		mutate(cfg)
	}

	path := filepath.Join(t.TempDir(), "analyzer.yaml")
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	return path
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyzer.yaml")

	out, err := execute(t, "config", "init", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	if !strings.Contains(out, "Wrote") {
		t.Errorf("Unexpected output: %s", out)
	}

	if _, err := config.LoadConfig(path); err != nil {
		t.Errorf("Written config does not load: %v", err)
	}

	if _, err := execute(t, "config", "init", path); err == nil {
		t.Error("Expected refusal to overwrite without --force")
	}

	if _, err := execute(t, "config", "init", path, "--force"); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}
}

func TestRun_MockProvider(t *testing.T) {
	srv := archiveServer(t)
	dir := t.TempDir()

	cfgPath := writeTestConfig(t, func(c *config.Config) {
		c.Archive.CDXEndpoint = srv.URL + "/cdx"
		c.Archive.WebBase = srv.URL + "/web"
	})

	csvPath := filepath.Join(dir, "export.csv")
	csvData := "Export\nCompanies,Website\nAcme Corp,https://www.acme.com\nGhost LLC,ghost.io\nBroken,invalid-url\n"

	if err := os.WriteFile(csvPath, []byte(csvData), 0644); err != nil {
		t.Fatalf("Failed to write csv: %v", err)
	}

	outPath := filepath.Join(dir, "results.csv")
	reportPath := filepath.Join(dir, "summary.md")

	out, err := execute(t, "run", "--config", cfgPath, "--env-file", "", "--csv", csvPath, "-o", outPath, "--report", reportPath)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}

	if !strings.Contains(out, "Subjects:  2") || !strings.Contains(out, "Completed: 1") {
		t.Errorf("Unexpected summary:\n%s", out)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read results: %v", err)
	}

	results := string(data)
	for _, want := range []string{"Acme Corp,acme.com", "completed", "Ghost LLC,ghost.io", "insufficient_snapshots", "overall_change_level"} {
		if !strings.Contains(results, want) {
			t.Errorf("Expected %q in results:\n%s", want, results)
		}
	}

	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("Report not written: %v", err)
	}
}

func TestRun_MissingAPIKeyIsFatal(t *testing.T) {
	cfgPath := writeTestConfig(t, func(c *config.Config) {
		c.LLM.Provider = config.ProviderOpenAI
		c.LLM.APIKeyEnv = "IRA_CLI_TEST_MISSING_KEY"
	})
	t.Setenv("IRA_CLI_TEST_MISSING_KEY", "")

	_, err := execute(t, "run", "--config", cfgPath, "--env-file", "", "--csv", "unused.csv")
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestRun_MissingInputIsFatal(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)

	_, err := execute(t, "run", "--config", cfgPath, "--env-file", "", "--csv", filepath.Join(t.TempDir(), "none.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestSnapshotCommand(t *testing.T) {
	srv := archiveServer(t)

	cfgPath := writeTestConfig(t, func(c *config.Config) {
		c.Archive.CDXEndpoint = srv.URL + "/cdx"
	})

	out, err := execute(t, "snapshot", "acme.com", "--window", "post_ira", "--config", cfgPath, "--env-file", "")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	if !strings.Contains(out, "Timestamp: 20230101000000") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestSnapshotCommand_UnknownWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("index must not be queried for an unknown window")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfgPath := writeTestConfig(t, func(c *config.Config) {
		c.Archive.CDXEndpoint = srv.URL + "/cdx"
	})

	_, err := execute(t, "snapshot", "acme.com", "--window", "mid_ira", "--config", cfgPath, "--env-file", "")
	if !errors.Is(err, config.ErrUnknownWindow) {
		t.Errorf("Expected ErrUnknownWindow, got %v", err)
	}
}

func TestExtractCommand(t *testing.T) {
	srv := archiveServer(t)
	cfgPath := writeTestConfig(t, nil)

	out, err := execute(t, "extract", srv.URL+"/web/1/https://acme.com/", "--config", cfgPath, "--env-file", "")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	if !strings.Contains(out, "Words: 4") || !strings.Contains(out, "Clean energy for everyone.") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("IRA_CLI_TEST_DOTENV=from-file\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	t.Setenv("IRA_CLI_TEST_DOTENV", "")
	os.Unsetenv("IRA_CLI_TEST_DOTENV")

	if err := loadEnv(path); err != nil {
		t.Fatalf("loadEnv failed: %v", err)
	}

	if got := os.Getenv("IRA_CLI_TEST_DOTENV"); got != "from-file" {
		t.Errorf("Expected value from .env, got %q", got)
	}

	if err := loadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Missing .env must be ignored, got %v", err)
	}
}
