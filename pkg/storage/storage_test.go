package storage_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/JaimeStill/covenant/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=covenantstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/covenantstore;"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: "test-connection"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderAzure {
		t.Errorf("provider: got %s, want %s", cfg.Provider, storage.ProviderAzure)
	}
	if cfg.ContainerName != "contracts" {
		t.Errorf("container_name: got %s, want contracts", cfg.ContainerName)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PROVIDER", "minio")
	t.Setenv("TEST_CONTAINER", "uploads")
	t.Setenv("TEST_ENDPOINT", "localhost:9000")
	t.Setenv("TEST_ACCESS", "minioadmin")
	t.Setenv("TEST_SECRET", "minioadmin")
	t.Setenv("TEST_SSL", "true")

	env := &storage.Env{
		Provider:      "TEST_PROVIDER",
		ContainerName: "TEST_CONTAINER",
		Endpoint:      "TEST_ENDPOINT",
		AccessKey:     "TEST_ACCESS",
		SecretKey:     "TEST_SECRET",
		UseSSL:        "TEST_SSL",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderMinio {
		t.Errorf("provider: got %s, want minio", cfg.Provider)
	}
	if cfg.ContainerName != "uploads" {
		t.Errorf("container_name: got %s, want uploads", cfg.ContainerName)
	}
	if cfg.Endpoint != "localhost:9000" {
		t.Errorf("endpoint: got %s", cfg.Endpoint)
	}
	if !cfg.UseSSL {
		t.Error("use_ssl: got false, want true")
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{
			name:    "azure without credentials",
			cfg:     storage.Config{},
			wantErr: "connection_string or service_url required",
		},
		{
			name: "azure with service url",
			cfg:  storage.Config{ServiceURL: "https://acct.blob.core.windows.net/"},
		},
		{
			name:    "minio without endpoint",
			cfg:     storage.Config{Provider: storage.ProviderMinio},
			wantErr: "endpoint required",
		},
		{
			name:    "minio without keys",
			cfg:     storage.Config{Provider: storage.ProviderMinio, Endpoint: "localhost:9000"},
			wantErr: "access_key and secret_key required",
		},
		{
			name:    "unknown provider",
			cfg:     storage.Config{Provider: "ftp"},
			wantErr: "unknown provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "contracts",
		ConnectionString: "base",
	}

	base.Merge(&storage.Config{ContainerName: "archive"})

	if base.ContainerName != "archive" {
		t.Errorf("container_name: got %s, want archive", base.ContainerName)
	}
	if base.ConnectionString != "base" {
		t.Errorf("connection_string should be preserved, got %s", base.ConnectionString)
	}
	if base.Provider != storage.ProviderAzure {
		t.Errorf("provider should be preserved, got %s", base.Provider)
	}
}

func TestNewAzure(t *testing.T) {
	cfg := &storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "contracts",
		ConnectionString: azuriteConnString,
	}

	sys, err := storage.New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewEmptyProviderSelectsAzure(t *testing.T) {
	cfg := &storage.Config{
		ContainerName:    "contracts",
		ConnectionString: azuriteConnString,
	}

	sys, err := storage.New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewAzureInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "contracts",
		ConnectionString: "not-a-connection-string",
	}

	if _, err := storage.New(cfg, discardLogger()); err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestNewMinio(t *testing.T) {
	cfg := &storage.Config{
		Provider:      storage.ProviderMinio,
		ContainerName: "contracts",
		Endpoint:      "localhost:9000",
		AccessKey:     "minioadmin",
		SecretKey:     "minioadmin",
	}

	sys, err := storage.New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := storage.New(&storage.Config{Provider: "ftp"}, discardLogger()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key  string
		want error
	}{
		{"contracts/CTR-1A2B3C4D/msa.pdf", nil},
		{"", storage.ErrEmptyKey},
		{"contracts/../secrets", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := storage.ValidateKey(tt.key); !errors.Is(got, tt.want) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"empty key", storage.ErrEmptyKey, http.StatusBadRequest},
		{"invalid key", storage.ErrInvalidKey, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("download: %w", storage.ErrNotFound), http.StatusNotFound},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
