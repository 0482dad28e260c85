package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/covenant/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "covenant"
user = "covenant"
password = "covenant"
ssl_mode = "disable"

[storage]
provider = "minio"
container_name = "contracts"
endpoint = "localhost:9000"
access_key = "minioadmin"
secret_key = "minioadmin"

[api]
base_path = "/api"

[api.pagination]
default_page_size = 25
max_page_size = 50

[analysis]
tone = "Risk Assessment"
focus = ["legal", "operations"]
risk_threshold = 0.6
fallback_policy = "fallback"

[logging]
level = "debug"
format = "json"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[analysis]
risk_threshold = 0.8
`

const minimalConfig = `
[database]
name = "covenant"
user = "covenant"

[storage]
connection_string = "conn"
`

func writeConfig(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.Provider != "minio" {
		t.Errorf("storage provider: got %s, want minio", cfg.Storage.Provider)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Analysis.Tone != config.ToneRiskAssessment {
		t.Errorf("tone: got %s, want %s", cfg.Analysis.Tone, config.ToneRiskAssessment)
	}
	if got := cfg.Analysis.Threshold(); got != 0.6 {
		t.Errorf("risk_threshold: got %v, want 0.6", got)
	}
	if cfg.Analysis.FallbackPolicy != config.FallbackStatic {
		t.Errorf("fallback_policy: got %s, want fallback", cfg.Analysis.FallbackPolicy)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format: got %s, want json", cfg.Logging.Format)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv(config.EnvCovenantEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if got := cfg.Analysis.Threshold(); got != 0.8 {
		t.Errorf("risk_threshold: got %v, want 0.8 (from overlay)", got)
	}
	if cfg.Analysis.Tone != config.ToneRiskAssessment {
		t.Errorf("tone: got %s, want base value preserved", cfg.Analysis.Tone)
	}
}

func TestLoadFileResolvesOverlayBesideBase(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)

	t.Setenv(config.EnvCovenantEnv, "staging")

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	t.Setenv("COVENANT_VERSION", "2.0.0")
	t.Setenv("COVENANT_SERVER_PORT", "3000")
	t.Setenv("COVENANT_ANALYSIS_FOCUS", "finance, compliance")
	t.Setenv("COVENANT_LOG_LEVEL", "warn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if len(cfg.Analysis.Focus) != 2 || cfg.Analysis.Focus[0] != "finance" || cfg.Analysis.Focus[1] != "compliance" {
		t.Errorf("focus: got %v, want [finance compliance]", cfg.Analysis.Focus)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level: got %s, want warn", cfg.Logging.Level)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("COVENANT_DB_NAME", "testdb")
	t.Setenv("COVENANT_DB_USER", "testuser")
	t.Setenv("COVENANT_STORAGE_CONNECTION_STRING", "conn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Storage.ConnectionString != "conn" {
		t.Errorf("storage conn from env: got %s, want conn", cfg.Storage.ConnectionString)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, `[server`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestAnalysisDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	a := cfg.Analysis
	if a.Tone != config.ToneExecutiveSummary {
		t.Errorf("tone: got %s", a.Tone)
	}
	if strings.Join(a.Focus, ",") != "legal,finance,compliance" {
		t.Errorf("focus: got %v", a.Focus)
	}
	if a.Threshold() != 0.25 {
		t.Errorf("risk_threshold: got %v, want 0.25", a.Threshold())
	}
	if a.FallbackPolicy != config.FallbackPropagate {
		t.Errorf("fallback_policy: got %s", a.FallbackPolicy)
	}
	if a.ConfidenceSource != config.ConfidenceRandom {
		t.Errorf("confidence_source: got %s", a.ConfidenceSource)
	}
	if !a.Serialize() {
		t.Error("serialize_classifier should default to true")
	}
	if a.MaxTextChars != 12000 {
		t.Errorf("max_text_chars: got %d, want 12000", a.MaxTextChars)
	}
	if a.TranscribeScanned {
		t.Error("transcribe_scanned_pages should default to false")
	}
	if cfg.Vectors.Enabled {
		t.Error("vectors should be disabled by default")
	}
	if cfg.Vectors.Dimensions != 384 || cfg.Vectors.TopK != 5 {
		t.Errorf("vectors: got dims=%d top_k=%d", cfg.Vectors.Dimensions, cfg.Vectors.TopK)
	}
}

func TestAnalysisValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad tone", `tone = "Casual"`, "invalid tone"},
		{"bad focus", `focus = ["marketing"]`, "invalid focus domain"},
		{"threshold above one", `risk_threshold = 1.5`, "risk_threshold"},
		{"threshold below zero", `risk_threshold = -0.1`, "risk_threshold"},
		{"bad policy", `fallback_policy = "retry"`, "invalid fallback_policy"},
		{"bad confidence", `confidence_source = "model"`, "invalid confidence_source"},
		{"fixed confidence out of range", `confidence_source = "fixed:1.2"`, "invalid confidence_source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, config.BaseConfigFile, minimalConfig+"\n[analysis]\n"+tt.body+"\n")

			_, err := config.LoadFile(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestVectorsRequireAPIKeyWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, config.BaseConfigFile, minimalConfig+"\n[vectors]\nenabled = true\n")

	_, err := config.LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "api_key required") {
		t.Fatalf("expected api_key error, got %v", err)
	}

	t.Setenv(config.EnvVectorsAPIKey, "key")
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.Vectors.Enabled {
		t.Error("vectors should be enabled")
	}
}

func TestLoadLocalSkipsInfrastructure(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, config.BaseConfigFile, `
[analysis]
tone = "Compliance-Focused"
`)

	cfg, err := config.LoadLocal(path)
	if err != nil {
		t.Fatalf("load local failed: %v", err)
	}
	if cfg.Analysis.Tone != config.ToneCompliance {
		t.Errorf("tone: got %s", cfg.Analysis.Tone)
	}
	if cfg.Agent.Provider == nil || cfg.Agent.Provider.Name == "" {
		t.Error("agent defaults should be applied")
	}

	if _, err := config.LoadFile(path); err == nil {
		t.Error("full load should fail without database settings")
	}
}

func TestLoggingConfig(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"error", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			c := config.LoggingConfig{Level: tt.level}
			if err := c.Finalize(); err != nil {
				t.Fatalf("finalize failed: %v", err)
			}
			if got := c.SlogLevel().String(); got != tt.want {
				t.Errorf("level: got %s, want %s", got, tt.want)
			}
		})
	}

	bad := config.LoggingConfig{Format: "xml"}
	if err := bad.Finalize(); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestEnvDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		size string
		want int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"", 50 * 1024 * 1024},
		{"garbage", 50 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			c := config.APIConfig{MaxUploadSize: tt.size}
			if got := c.MaxUploadSizeBytes(); got != tt.want {
				t.Errorf("MaxUploadSizeBytes(%q) = %d, want %d", tt.size, got, tt.want)
			}
		})
	}
}

func TestAuthEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, minimalConfig)
	chdir(t, dir)

	t.Setenv("COVENANT_AUTH_ENABLED", "true")
	t.Setenv("COVENANT_AUTH_ISSUER", "https://login.example.com")
	t.Setenv("COVENANT_AUTH_CLIENT_ID", "covenant")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.API.Auth.Enabled || cfg.API.Auth.ClientID != "covenant" {
		t.Errorf("auth: got %+v", cfg.API.Auth)
	}
}

func TestAgentEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, minimalConfig)
	chdir(t, dir)

	t.Setenv("COVENANT_AGENT_PROVIDER_NAME", "azure")
	t.Setenv("COVENANT_AGENT_BASE_URL", "https://myendpoint.openai.azure.com")
	t.Setenv("COVENANT_AGENT_MODEL_NAME", "gpt-5-mini")
	t.Setenv("COVENANT_AGENT_TOKEN", "test-token")
	t.Setenv("COVENANT_AGENT_DEPLOYMENT", "gpt-5-mini")
	t.Setenv("COVENANT_AGENT_API_VERSION", "2024-12-01-preview")
	t.Setenv("COVENANT_AGENT_AUTH_TYPE", "api_key")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Agent.Provider.Name != "azure" {
		t.Errorf("provider name: got %s, want azure", cfg.Agent.Provider.Name)
	}
	if cfg.Agent.Provider.BaseURL != "https://myendpoint.openai.azure.com" {
		t.Errorf("provider base_url: got %s", cfg.Agent.Provider.BaseURL)
	}
	if cfg.Agent.Model.Name != "gpt-5-mini" {
		t.Errorf("model name: got %s, want gpt-5-mini", cfg.Agent.Model.Name)
	}

	opts := cfg.Agent.Provider.Options
	for key, want := range map[string]string{
		"token":       "test-token",
		"deployment":  "gpt-5-mini",
		"api_version": "2024-12-01-preview",
		"auth_type":   "api_key",
	} {
		if opts[key] != want {
			t.Errorf("%s: got %v, want %s", key, opts[key], want)
		}
	}
}

func TestAgentDecodingDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tests := []struct {
		protocol  string
		maxTokens int
	}{
		{"chat", 512},
		{"vision", 2048},
	}

	for _, tt := range tests {
		t.Run(tt.protocol, func(t *testing.T) {
			caps := cfg.Agent.Model.Capabilities[tt.protocol]
			if caps == nil {
				t.Fatalf("%s capabilities missing", tt.protocol)
			}
			if caps["temperature"] != 0.0 {
				t.Errorf("temperature: got %v, want 0", caps["temperature"])
			}
			if caps["top_p"] != 1.0 {
				t.Errorf("top_p: got %v, want 1", caps["top_p"])
			}
			if caps["max_tokens"] != tt.maxTokens {
				t.Errorf("max_tokens: got %v, want %d", caps["max_tokens"], tt.maxTokens)
			}
		})
	}
}

func TestAgentDecodingOverrides(t *testing.T) {
	dir := t.TempDir()
	body := minimalConfig + `
[agent.model.capabilities.chat]
temperature = 0.2
`
	writeConfig(t, dir, config.BaseConfigFile, body)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	chat := cfg.Agent.Model.Capabilities["chat"]
	if chat["temperature"] != 0.2 {
		t.Errorf("temperature: got %v, want 0.2", chat["temperature"])
	}
	if chat["top_p"] != 1.0 {
		t.Errorf("top_p: got %v, want 1", chat["top_p"])
	}
}

func TestFixedConfidenceSource(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, minimalConfig+"\n[analysis]\nconfidence_source = \"fixed:0.8\"\n")
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Analysis.ConfidenceSource != "fixed:0.8" {
		t.Errorf("confidence_source: got %s", cfg.Analysis.ConfidenceSource)
	}
}

func TestTranscribeScannedEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, minimalConfig)
	chdir(t, dir)

	t.Setenv("COVENANT_ANALYSIS_TRANSCRIBE_SCANNED_PAGES", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.Analysis.TranscribeScanned {
		t.Error("transcribe_scanned_pages should be enabled by env")
	}
}

func TestAgentTokenNotRequired(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if _, ok := cfg.Agent.Provider.Options["token"]; ok {
		t.Error("token should not be set when env var is absent")
	}
}
