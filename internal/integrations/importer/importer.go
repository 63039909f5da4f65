package importer

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bartek5186/spicedash/internal/db"
	"github.com/bartek5186/spicedash/internal/integrations"
	"github.com/bartek5186/spicedash/internal/orders"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
	"gorm.io/gorm"
)

const (
	Name           = "importer"
	defaultPattern = "orders_*.json"
)

type Config struct {
	WatchDir string `json:"watch_dir"` // np. ~/spicedash/imports
	Pattern  string `json:"pattern"`   // glob, domyślnie orders_*.json
	Charset  string `json:"charset"`   // pusty = UTF-8
}

// Importer czyta najnowszy zrzut zamówień z katalogu (ten sam kształt co odpowiedź backendu).
// Źródło tylko do odczytu.
type Importer struct {
	log zerolog.Logger
	cfg Config
	db  *gorm.DB // może być nil: wtedy bez rejestru import_files

	mu      sync.Mutex
	lastSHA string
	cached  []orders.Order
}

func (i *Importer) Name() string { return Name }

func (i *Importer) MarkComplete(context.Context, string) error {
	return integrations.ErrReadOnly
}

func (i *Importer) FetchOrders(ctx context.Context) ([]orders.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := expandHome(i.cfg.WatchDir)
	full, err := newestFile(dir, i.cfg.Pattern)
	if err != nil {
		return nil, err
	}
	if full == "" {
		i.log.Debug().Str("dir", dir).Msg("brak plików z zamówieniami")
		return nil, nil
	}

	h, size, err := fileSHA256(full)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if h == i.lastSHA {
		return append([]orders.Order(nil), i.cached...), nil
	}

	importID := i.registerFile(filepath.Base(full), h, size)
	list, err := i.parseFile(full)
	if err != nil {
		i.markFile(importID, db.ImportError, 0, err)
		return nil, fmt.Errorf("importer %s: %w", filepath.Base(full), err)
	}
	i.markFile(importID, db.ImportDone, len(list), nil)

	i.lastSHA = h
	i.cached = list
	i.log.Info().Str("file", filepath.Base(full)).Int("orders", len(list)).Msg("przetworzono OK")
	return append([]orders.Order(nil), list...), nil
}

func (i *Importer) parseFile(full string) ([]orders.Order, error) {
	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if cs := normalizeCharset(i.cfg.Charset); cs != "" && cs != "utf-8" {
		if r, err = charset.NewReaderLabel(cs, r); err != nil {
			return nil, err
		}
	}
	return orders.DecodeList(r)
}

// registerFile zapisuje plik w import_files (idempotentnie po SHA). 0 = bez rejestru.
func (i *Importer) registerFile(name, h string, size int64) uint {
	if i.db == nil {
		return 0
	}
	var existing db.ImportFile
	if err := i.db.Where("sha256 = ?", h).Take(&existing).Error; err == nil {
		return existing.ImportID
	}
	rec := db.ImportFile{Filename: name, SHA256: h, SizeBytes: size, Status: db.ImportPending}
	if err := i.db.Create(&rec).Error; err != nil {
		i.log.Error().Err(err).Str("file", name).Msg("rejestracja pliku nieudana")
		return 0
	}
	return rec.ImportID
}

func (i *Importer) markFile(importID uint, status, count int, procErr error) {
	if i.db == nil || importID == 0 {
		return
	}
	upd := map[string]any{"status": status, "order_count": count, "last_error": ""}
	if procErr != nil {
		upd["last_error"] = procErr.Error()
	} else {
		upd["processed_at"] = time.Now()
	}
	if err := i.db.Model(&db.ImportFile{}).Where("import_id = ?", importID).Updates(upd).Error; err != nil {
		i.log.Error().Err(err).Uint("import_id", importID).Msg("update import_files failed")
	}
}

func newestFile(dir, pattern string) (string, error) {
	if pattern == "" {
		pattern = defaultPattern
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", err
	}
	var (
		best    string
		bestMod time.Time
	)
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil || fi.IsDir() {
			continue
		}
		// przy równym mtime decyduje nazwa (orders_20240501 > orders_20240430)
		if best == "" || fi.ModTime().After(bestMod) || (fi.ModTime().Equal(bestMod) && m > best) {
			best, bestMod = m, fi.ModTime()
		}
	}
	return best, nil
}

func fileSHA256(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// normalizeCharset mapuje nietypowe etykiety na standardowe nazwy rozpoznawane przez charset.NewReaderLabel
func normalizeCharset(cs string) string {
	c := strings.TrimSpace(strings.ToLower(cs))
	switch c {
	case "latin ii", "latin-2", "latin2", "iso8859-2", "iso_8859-2":
		return "iso-8859-2"
	case "cp1250", "windows1250", "win-1250":
		return "windows-1250"
	case "utf8":
		return "utf-8"
	default:
		return c
	}
}

func factory(log zerolog.Logger, raw json.RawMessage, deps integrations.Deps) (integrations.Source, error) {
	var cfg Config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(cfg.WatchDir) == "" {
		return nil, fmt.Errorf("importer: brak watch_dir")
	}
	return &Importer{log: log, cfg: cfg, db: deps.DB}, nil
}

func init() {
	integrations.Register(Name, factory)
}
