// internal/integrations/backend/backend.go
package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bartek5186/spicedash/internal/integrations"
	"github.com/rs/zerolog"
)

const (
	Name     = "backend"
	TokenEnv = "SPICEDASH_API_TOKEN"

	defaultOrdersPath   = "/api/orders"
	defaultCompletePath = "/api/orders/{id}/status"
	defaultTimeoutSec   = 15
	defaultMaxPages     = 50
)

type Config struct {
	BaseURL      string `json:"base_url"`      // https://api.example.com
	OrdersPath   string `json:"orders_path"`   // GET lista zamówień
	CompletePath string `json:"complete_path"` // PATCH, {id} = order_id
	Token        string `json:"token"`         // Bearer; pusty -> SPICEDASH_API_TOKEN
	TimeoutSec   int    `json:"timeout_sec"`
	PerPage      int    `json:"per_page"` // 0 = bez stronicowania
	MaxPages     int    `json:"max_pages"`
}

// Defaults uzupełnia puste pola.
func (c Config) Defaults() Config {
	if c.OrdersPath == "" {
		c.OrdersPath = defaultOrdersPath
	}
	if c.CompletePath == "" {
		c.CompletePath = defaultCompletePath
	}
	if c.TimeoutSec <= 0 {
		c.TimeoutSec = defaultTimeoutSec
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	return c
}

type Backend struct {
	log  zerolog.Logger
	cfg  Config
	base *url.URL
	http *http.Client
}

func New(log zerolog.Logger, cfg Config) (*Backend, error) {
	cfg = cfg.Defaults()
	if cfg.Token == "" {
		cfg.Token = os.Getenv(TokenEnv)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("backend: brak base_url")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: base_url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend: base_url musi być http(s), jest %q", cfg.BaseURL)
	}
	return &Backend{
		log:  log,
		cfg:  cfg,
		base: base,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
	}, nil
}

func (b *Backend) Name() string { return Name }

func factory(log zerolog.Logger, raw json.RawMessage, _ integrations.Deps) (integrations.Source, error) {
	var cfg Config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
	}
	return New(log, cfg)
}

func init() {
	integrations.Register(Name, factory)
}
