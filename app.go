package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bartek5186/spicedash/internal/api"
	conf "github.com/bartek5186/spicedash/internal/config"
	"github.com/bartek5186/spicedash/internal/db"
	"github.com/bartek5186/spicedash/internal/export"
	logs "github.com/bartek5186/spicedash/internal/logs"
	"github.com/bartek5186/spicedash/internal/statusstore"
	"github.com/bartek5186/spicedash/internal/syncer"
	"github.com/rs/zerolog"
)

// wersję możesz nadpisać przez: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

const appName = "spicedash"

// app trzyma wszystko, co współdzielą CLI i tray.
type app struct {
	dir     string
	cfgPath string
	logPath string

	log  zerolog.Logger
	cfg  *conf.Config
	dbh  *db.Handle
	sync *syncer.Syncer

	closeStore func() error
	api        *api.Server
}

func bootstrap(ctx context.Context, withConsole bool) *app {
	a := &app{dir: mustAppDataDir(appName)}
	a.cfgPath = filepath.Join(a.dir, "config.json")
	a.logPath = filepath.Join(a.dir, "app.log")

	// .env przed configiem: token backendu, adres API
	envErr := conf.LoadEnv(a.dir)

	cfg, firstRun, err := conf.LoadOrCreate(a.cfgPath)
	if err != nil {
		panic(err)
	}
	a.cfg = cfg
	a.log = logs.New(a.logPath, withConsole, cfg.LogLevel)
	if envErr != nil {
		a.log.Warn().Err(envErr).Msg(".env pominięty")
	}
	if firstRun {
		a.log.Info().Msgf("Utworzono domyślną konfigurację: %s", a.cfgPath)
	}

	dbh, err := db.OpenAt(a.dir, cfg.Database)
	if err != nil {
		a.log.Fatal().Err(err).Msg("DB open error")
	}
	if err := dbh.Migrate(); err != nil {
		a.log.Fatal().Err(err).Msg("DB migrate error")
	}
	a.dbh = dbh
	ev := a.log.Info().Str("driver", dbh.Driver)
	if strings.HasPrefix(dbh.Driver, "sqlite") {
		ev = ev.Str("db", dbh.Path) // DSN serwerowej bazy może zawierać hasło
	}
	ev.Msg("DB ready")

	store, closeStore, err := statusstore.Open(ctx, a.log.With().Str("component", "statusstore").Logger(), cfg.StatusStore, dbh.DB)
	if err != nil {
		a.log.Fatal().Err(err).Msg("status store error")
	}
	a.closeStore = closeStore

	a.sync = syncer.New(a.log.With().Str("component", "syncer").Logger(), cfg, store, dbh.DB)
	a.startAPI()
	return a
}

func (a *app) startAPI() {
	addr := strings.TrimSpace(a.cfg.HTTP.Addr)
	if addr == "" {
		return
	}
	alog := a.log.With().Str("component", "api").Logger()
	srv, err := api.Listen(alog, addr, api.NewRouter(alog, a.sync, a.cfg.HTTP.CorsOrigins))
	if err != nil {
		a.log.Error().Err(err).Str("addr", addr).Msg("API nie wystartowało")
		return
	}
	a.api = srv
	go srv.Serve()
}

// reload wczytuje config ponownie. Baza, store i adres API wymagają restartu aplikacji.
func (a *app) reload() error {
	newCfg, _, err := conf.LoadOrCreate(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = newCfg
	a.sync.UpdateConfig(newCfg)
	a.log.Info().Msg("Konfiguracja przeładowana")
	return nil
}

// export zapisuje raport do katalogu eksportów; kind: csv | xlsx.
func (a *app) export(kind string) ([]string, error) {
	snap := a.sync.Snapshot()
	dir := a.cfg.ExportPath(a.dir)
	now := time.Now()

	type job struct {
		name  string
		write func(io.Writer) error
	}
	var jobs []job
	switch kind {
	case "csv":
		jobs = []job{
			{export.FileName("items", "csv", now), func(w io.Writer) error { return export.WriteItemsCSV(w, snap.Stats) }},
			{export.FileName("orders", "csv", now), func(w io.Writer) error { return export.WriteOrdersCSV(w, snap.Orders) }},
		}
	case "xlsx":
		jobs = []job{
			{export.FileName("report", "xlsx", now), func(w io.Writer) error {
				return export.WriteXLSX(w, export.Report{Stats: snap.Stats, Orders: snap.Orders, GeneratedAt: now})
			}},
		}
	default:
		return nil, fmt.Errorf("nieznany format %q (csv | xlsx)", kind)
	}

	var out []string
	for _, j := range jobs {
		p, err := export.SaveToDir(dir, j.name, j.write)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	a.log.Info().Strs("files", out).Msg("eksport zapisany")
	return out, nil
}

func (a *app) tooltip() string {
	snap := a.sync.Snapshot()
	state := "zatrzymane"
	if a.sync.IsRunning() {
		state = "działa"
	}
	return fmt.Sprintf("SpiceDash %s (%s): %d zamówień, %d%% zakończonych",
		ver, state, snap.Stats.TotalOrders, snap.Stats.CompletionRate)
}

func (a *app) close() {
	a.sync.Stop()
	if a.api != nil {
		if err := a.api.Shutdown(context.Background()); err != nil {
			a.log.Warn().Err(err).Msg("API shutdown")
		}
	}
	if err := a.closeStore(); err != nil {
		a.log.Warn().Err(err).Msg("status store close")
	}
	if err := a.dbh.Close(); err != nil {
		a.log.Warn().Err(err).Msg("DB close")
	}
}

func mustAppDataDir(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	p := filepath.Join(base, name)
	_ = os.MkdirAll(p, 0o755)
	return p
}
