// internal/syncer/syncer.go
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	conf "github.com/bartek5186/spicedash/internal/config"
	"github.com/bartek5186/spicedash/internal/db"
	"github.com/bartek5186/spicedash/internal/integrations"
	_ "github.com/bartek5186/spicedash/internal/integrations/backend" // rejestracja
	_ "github.com/bartek5186/spicedash/internal/integrations/importer"
	"github.com/bartek5186/spicedash/internal/metrics"
	"github.com/bartek5186/spicedash/internal/orders"
	"github.com/bartek5186/spicedash/internal/statusstore"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Snapshot to wynik jednego odświeżenia. Niezmienny po opublikowaniu.
type Snapshot struct {
	Stats       orders.DashboardStats `json:"stats"`
	Orders      []orders.Order        `json:"orders"` // wzbogacone
	Source      string                `json:"source"`
	RefreshedAt time.Time             `json:"refreshed_at"`
	FetchError  string                `json:"fetch_error,omitempty"`
	Seq         uint64                `json:"seq"`

	overridesGen uint64 // generacja override'ów widziana przez to odświeżenie
}

type Syncer struct {
	log   zerolog.Logger
	db    *gorm.DB // może być nil
	store statusstore.Store

	mu      sync.Mutex
	cfg     *conf.Config
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	src     integrations.Source // budowane leniwie, zerowane przy zmianie configu
	snap    *Snapshot
	seq     uint64
	ovGen   uint64 // rośnie przy każdej zmianie override'u

	sf        singleflight.Group
	now       func() time.Time
	onRefresh func(*Snapshot)
}

func New(log zerolog.Logger, cfg *conf.Config, store statusstore.Store, gdb *gorm.DB) *Syncer {
	return &Syncer{
		log:   log,
		cfg:   cfg,
		store: store,
		db:    gdb,
		now:   time.Now,
		snap:  emptySnapshot(),
	}
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Stats:  orders.Aggregate(nil, nil),
		Orders: []orders.Order{},
	}
}

// OnRefresh rejestruje callback wołany po każdym odświeżeniu (np. tooltip tray).
func (s *Syncer) OnRefresh(fn func(*Snapshot)) {
	s.mu.Lock()
	s.onRefresh = fn
	s.mu.Unlock()
}

func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Info().Dur("interval", s.interval()).Msg("Syncer: start")
	go s.loop(ctx)
	return nil
}

func (s *Syncer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info().Msg("Syncer: stop")
}

func (s *Syncer) UpdateConfig(cfg *conf.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.src = nil
	isRunning := s.running
	s.mu.Unlock()

	s.log.Info().Msg("Syncer: config zaktualizowany")

	if isRunning {
		s.log.Info().Msg("Syncer: restart pętli po zmianie configu")
		s.Stop()
		_ = s.Start(context.Background())
	}
}

func (s *Syncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Snapshot zwraca ostatni opublikowany wynik (nigdy nil).
func (s *Syncer) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Syncer) interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.RefreshInterval()
}

func (s *Syncer) fetchTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.FetchTimeout()
}

func (s *Syncer) loop(ctx context.Context) {
	defer s.wg.Done()

	// pierwszy strzał od razu
	s.Refresh(ctx)

	cur := s.interval()
	ticker := time.NewTicker(cur)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Syncer: koniec pętli")
			return
		case <-ticker.C:
			if next := s.interval(); next != cur {
				cur = next
				ticker.Reset(cur)
			}
			s.Refresh(ctx)
		}
	}
}

// Refresh pobiera zamówienia i publikuje nowy snapshot.
// Równoległe wywołania dołączają do trwającego odświeżenia. Anulowanie ctx
// zwalnia tylko wołającego, samo odświeżenie kończy się w tle.
func (s *Syncer) Refresh(ctx context.Context) *Snapshot {
	ch := s.sf.DoChan("refresh", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx)), nil
	})
	select {
	case r := <-ch:
		return r.Val.(*Snapshot)
	case <-ctx.Done():
		return s.Snapshot()
	}
}

func (s *Syncer) refresh(ctx context.Context) *Snapshot {
	start := s.now()
	result := "ok"
	defer func() {
		metrics.RefreshTotal.WithLabelValues(result).Inc()
		metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	}()

	var (
		list     []orders.Order
		srcName  string
		fetchErr error
	)
	src, err := s.source()
	if err != nil {
		fetchErr = err
	} else {
		srcName = src.Name()
		fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout())
		list, fetchErr = src.FetchOrders(fctx)
		cancel()
	}
	if fetchErr != nil {
		// błąd pobrania = pusta lista, dashboard pokazuje zera
		result = "error"
		list = nil
		s.log.Error().Err(fetchErr).Str("source", srcName).Msg("pobranie zamówień nieudane")
	}

	s.mu.Lock()
	gen := s.ovGen
	s.mu.Unlock()

	overrides, err := s.store.All(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("odczyt override'ów nieudany, liczę bez nich")
		overrides = orders.Overrides{}
	}
	overrides = s.pruneOverrides(ctx, list, overrides)

	enriched := orders.EnrichAll(list, overrides)
	stats := orders.Aggregate(enriched, overrides)

	snap := &Snapshot{
		Stats:       stats,
		Orders:      enriched,
		Source:      srcName,
		RefreshedAt: start,

		overridesGen: gen,
	}
	if fetchErr != nil {
		snap.FetchError = fetchErr.Error()
	}

	s.mu.Lock()
	s.seq++
	snap.Seq = s.seq
	s.snap = snap
	hook := s.onRefresh
	s.mu.Unlock()

	metrics.ObserveOrders(stats.PendingOrders, stats.InProgressOrders, stats.CompletedOrders)
	metrics.Overrides.Set(float64(len(overrides)))
	s.recordMeta(snap)

	s.log.Info().
		Str("source", srcName).
		Int("orders", stats.TotalOrders).
		Int("in_progress", stats.InProgressOrders).
		Int("completion_rate", stats.CompletionRate).
		Dur("took", time.Since(start)).
		Msg("odświeżono")

	if hook != nil {
		hook(snap)
	}
	return snap
}

// pruneOverrides usuwa override'y zamówień, które backend sam już zakończył.
func (s *Syncer) pruneOverrides(ctx context.Context, list []orders.Order, overrides orders.Overrides) orders.Overrides {
	if len(overrides) == 0 {
		return overrides
	}
	for _, o := range list {
		id := strings.TrimSpace(string(o.ID))
		if _, ok := overrides[id]; !ok || orders.NormalizeStatus(o.Status) != orders.StatusComplete {
			continue
		}
		if err := s.store.Delete(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("order_id", id).Msg("nie udało się usunąć override'u")
			continue
		}
		delete(overrides, id)
		s.log.Debug().Str("order_id", id).Msg("override usunięty, backend zgłasza zakończenie")
	}
	return overrides
}

func (s *Syncer) recordMeta(snap *Snapshot) {
	if s.db == nil {
		return
	}
	meta := map[string]string{
		db.KeyLastRefreshAt:     snap.RefreshedAt.UTC().Format(time.RFC3339),
		db.KeyLastRefreshOrders: strconv.Itoa(snap.Stats.TotalOrders),
		db.KeyLastRefreshSource: snap.Source,
	}
	for k, v := range meta {
		if err := db.SetKV(s.db, k, v); err != nil {
			s.log.Warn().Err(err).Str("key", k).Msg("zapis meta nieudany")
		}
	}
}

// source buduje źródło z configu przy pierwszym użyciu.
func (s *Syncer) source() (integrations.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.src != nil {
		return s.src, nil
	}
	if s.cfg == nil || s.cfg.Source == "" {
		return nil, errors.New("brak źródła zamówień w configu")
	}
	name := s.cfg.Source
	f, ok := integrations.Get(name)
	if !ok {
		return nil, fmt.Errorf("nieznane źródło %q (dostępne: %s)", name, strings.Join(integrations.Names(), ", "))
	}
	raw := s.cfg.Integrations[name]
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	src, err := f(s.log.With().Str("integration", name).Logger(), raw, integrations.Deps{DB: s.db})
	if err != nil {
		return nil, fmt.Errorf("inicjalizacja źródła %q: %w", name, err)
	}
	s.src = src
	s.log.Info().Str("integration", name).Msg("źródło zamówień gotowe")
	return src, nil
}

// SourceError: override zapisany lokalnie, ale źródło odrzuciło zgłoszenie.
type SourceError struct {
	OrderID string
	Err     error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("zgłoszenie zakończenia %s do źródła: %v", e.OrderID, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// CompleteOrder zapisuje lokalny override i zgłasza zakończenie do źródła.
// Błąd źródła nie cofa override'u: snapshot jest zwracany razem z *SourceError.
func (s *Syncer) CompleteOrder(ctx context.Context, orderID string) (*Snapshot, error) {
	id := strings.TrimSpace(orderID)
	if err := s.store.Set(ctx, id, orders.StatusComplete); err != nil {
		return nil, err
	}
	s.log.Info().Str("order_id", id).Msg("zamówienie oznaczone lokalnie jako zakończone")

	var srcErr error
	if src, err := s.source(); err == nil {
		err = src.MarkComplete(ctx, id)
		switch {
		case err == nil:
			s.log.Info().Str("order_id", id).Str("source", src.Name()).Msg("zakończenie zgłoszone do źródła")
		case errors.Is(err, integrations.ErrReadOnly):
		default:
			s.log.Warn().Err(err).Str("order_id", id).Msg("zgłoszenie zakończenia do źródła nieudane")
			srcErr = &SourceError{OrderID: id, Err: err}
		}
	}
	return s.refreshAfterWrite(ctx, s.bumpOverrides()), srcErr
}

// ClearOverride usuwa lokalny override; status wraca do wartości z backendu.
func (s *Syncer) ClearOverride(ctx context.Context, orderID string) (*Snapshot, error) {
	id := strings.TrimSpace(orderID)
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.log.Info().Str("order_id", id).Msg("override usunięty")
	return s.refreshAfterWrite(ctx, s.bumpOverrides()), nil
}

func (s *Syncer) bumpOverrides() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ovGen++
	return s.ovGen
}

// maksymalna liczba odświeżeń przy czekaniu na własny zapis
const maxRefreshAfterWrite = 3

// refreshAfterWrite zwraca snapshot, który czytał override'y po zapisie o generacji gen.
// Odświeżenie w toku mogło je odczytać wcześniej: wtedy czekamy na nie i robimy kolejne.
func (s *Syncer) refreshAfterWrite(ctx context.Context, gen uint64) *Snapshot {
	var snap *Snapshot
	for i := 0; i < maxRefreshAfterWrite; i++ {
		snap = s.Refresh(ctx)
		if snap.overridesGen >= gen || ctx.Err() != nil {
			return snap
		}
	}
	return snap
}

// Overrides zwraca aktualne override'y (do podglądu w CLI).
func (s *Syncer) Overrides(ctx context.Context) (orders.Overrides, error) {
	return s.store.All(ctx)
}
