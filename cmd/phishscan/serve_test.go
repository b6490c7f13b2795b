package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nao1215/phishscan/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func parseServeConfig(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()

	cmd := NewServeCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return buildServeConfig(cmd)
}

func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()
	flag := cmd.Flags().Lookup("addr")
	if flag == nil {
		t.Fatal("expected addr flag")
	}
	if flag.DefValue != config.DefaultListenAddress {
		t.Errorf("expected default %q, got %q", config.DefaultListenAddress, flag.DefValue)
	}
	if err := cobra.NoArgs(cmd, []string{"extra"}); err == nil {
		t.Error("serve must reject positional arguments")
	}
}

func TestBuildServeConfig(t *testing.T) {
	t.Parallel()

	t.Run("configuration file address", func(t *testing.T) {
		t.Parallel()

		file := writeFile(t, "config.yaml", "server:\n  address: 127.0.0.1:7000\n")
		cfg, err := parseServeConfig(t, "--config", file, "--env-file", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddress != "127.0.0.1:7000" {
			t.Errorf("ListenAddress = %q", cfg.ListenAddress)
		}
	})

	t.Run("dotenv overrides the configuration file", func(t *testing.T) {
		t.Parallel()

		file := writeFile(t, "config.yaml", "server:\n  address: 127.0.0.1:7000\n")
		env := writeFile(t, ".env", "PHISHSCAN_ADDR=127.0.0.1:9999\n")
		cfg, err := parseServeConfig(t, "--config", file, "--env-file", env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddress != "127.0.0.1:9999" {
			t.Errorf("ListenAddress = %q", cfg.ListenAddress)
		}
	})

	t.Run("flag overrides everything", func(t *testing.T) {
		t.Parallel()

		env := writeFile(t, ".env", "PHISHSCAN_ADDR=127.0.0.1:9999\n")
		cfg, err := parseServeConfig(t, "--config", emptyConfigFile(t), "--env-file", env, "--addr", "127.0.0.1:8080")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddress != "127.0.0.1:8080" {
			t.Errorf("ListenAddress = %q", cfg.ListenAddress)
		}
	})
}

func TestNewServerAnalyzes(t *testing.T) {
	t.Parallel()

	h := newServer(stubFactory(), discardLogger()).Handler()

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"url":"http://1.2.3.4/login"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var decoded map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if decoded["phishing_score"] != float64(7) {
		t.Errorf("phishing_score = %v", decoded["phishing_score"])
	}
	if decoded["login_form"] != true || decoded["has_ip_host"] != true {
		t.Errorf("unexpected features %v", decoded)
	}
}
