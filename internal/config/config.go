// internal/config/config.go
package conf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bartek5186/spicedash/internal/db"
	"github.com/bartek5186/spicedash/internal/integrations/backend"
	"github.com/bartek5186/spicedash/internal/integrations/importer"
	"github.com/bartek5186/spicedash/internal/statusstore"
	"github.com/joho/godotenv"
)

const (
	defaultRefreshSeconds = 30
	defaultFetchTimeout   = 15

	EnvHTTPAddr = "SPICEDASH_HTTP_ADDR"
)

type HTTPConfig struct {
	Addr        string   `json:"addr"` // pusty = API wyłączone
	CorsOrigins []string `json:"cors_origins"`
}

// Główny config aplikacji
type Config struct {
	AutoStart              bool                       `json:"auto_start"`
	RefreshIntervalSeconds int                        `json:"refresh_interval_seconds"`
	FetchTimeoutSeconds    int                        `json:"fetch_timeout_seconds"`
	LogLevel               string                     `json:"log_level"`
	Source                 string                     `json:"source"`       // która integracja dostarcza zamówienia
	Integrations           map[string]json.RawMessage `json:"integrations"` // nazwa -> surowy JSON integracji
	StatusStore            statusstore.Options        `json:"status_store"`
	Database               db.Options                 `json:"database"`
	HTTP                   HTTPConfig                 `json:"http"`
	ExportDir              string                     `json:"export_dir,omitempty"`
}

func Default() *Config {
	rawBackend, _ := json.Marshal(backend.Config{
		BaseURL:      "https://example.com",
		OrdersPath:   "/api/orders",
		CompletePath: "/api/orders/{id}/status",
		TimeoutSec:   defaultFetchTimeout,
	})
	rawImporter, _ := json.Marshal(importer.Config{
		WatchDir: "~/spicedash/imports",
		Pattern:  "orders_*.json",
	})
	return &Config{
		AutoStart:              false,
		RefreshIntervalSeconds: defaultRefreshSeconds,
		FetchTimeoutSeconds:    defaultFetchTimeout,
		LogLevel:               "info",
		Source:                 backend.Name,
		Integrations: map[string]json.RawMessage{
			backend.Name:  rawBackend,
			importer.Name: rawImporter,
		},
		StatusStore: statusstore.Options{Backend: "db", Key: statusstore.DefaultRedisKey},
		Database:    db.Options{Driver: "sqlite"},
		HTTP: HTTPConfig{
			Addr:        "127.0.0.1:8088",
			CorsOrigins: []string{"http://localhost:3000"},
		},
	}
}

// LoadOrCreate ładuje config z pliku lub tworzy domyślny
func LoadOrCreate(path string) (*Config, bool, error) {
	// upewnij się, że katalog istnieje
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return nil, false, fmt.Errorf("błąd zapisu domyślnego configa: %w", err)
			}
			cfg.applyEnv()
			return cfg, true, nil
		}
		return nil, false, fmt.Errorf("błąd otwierania configa: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, false, fmt.Errorf("błąd parsowania configa: %w", err)
	}
	if cfg.Integrations == nil {
		cfg.Integrations = map[string]json.RawMessage{}
	}
	cfg.applyEnv()
	return &cfg, false, nil
}

func Save(path string, cfg *Config) error {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// LoadEnv wczytuje <dir>/.env (sekrety, np. SPICEDASH_API_TOKEN). Brak pliku to nie błąd.
func LoadEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("błąd wczytywania .env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if addr, ok := os.LookupEnv(EnvHTTPAddr); ok {
		c.HTTP.Addr = addr
	}
}

// Helper do odczytu konkretnej integracji do struktury docelowej
func (c *Config) UnmarshalIntegration(name string, v any) error {
	raw, ok := c.Integrations[name]
	if !ok {
		return fmt.Errorf("brak integracji %q w configu", name)
	}
	return json.Unmarshal(raw, v)
}

func (c *Config) RefreshInterval() time.Duration {
	if c == nil || c.RefreshIntervalSeconds <= 0 {
		return defaultRefreshSeconds * time.Second
	}
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

func (c *Config) FetchTimeout() time.Duration {
	if c == nil || c.FetchTimeoutSeconds <= 0 {
		return defaultFetchTimeout * time.Second
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// ExportPath zwraca katalog eksportów (domyślnie <appDir>/exports).
func (c *Config) ExportPath(appDir string) string {
	if c != nil && c.ExportDir != "" {
		return c.ExportDir
	}
	return filepath.Join(appDir, "exports")
}
