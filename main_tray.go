//go:build windows && !dev

package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/bartek5186/spicedash/internal/syncer"
	"github.com/getlantern/systray"
)

//go:embed assets/icon.ico
var iconData []byte

func main() {
	// kontekst sterujący życiem procesu (CTRL+C / zamknięcie sesji)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := bootstrap(ctx, false)
	log := a.log

	// jeśli proces dostanie sygnał, zatrzymaj syncer i zamknij tray
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()

	systray.Run(func() {
		// onReady
		if len(iconData) > 0 {
			systray.SetIcon(iconData)
		}
		systray.SetTooltip(a.tooltip())
		a.sync.OnRefresh(func(*syncer.Snapshot) { systray.SetTooltip(a.tooltip()) })

		mStart := systray.AddMenuItem("Start odświeżania", "Uruchom cykliczne pobieranie zamówień")
		mStop := systray.AddMenuItem("Stop odświeżania", "Zatrzymaj cykliczne pobieranie")
		mStop.Disable()
		mRefresh := systray.AddMenuItem("Odśwież teraz", "Pobierz zamówienia i przelicz statystyki")

		systray.AddSeparator()
		mExportCSV := systray.AddMenuItem("Eksport CSV", "Zapisz pozycje i zamówienia do CSV")
		mExportXLSX := systray.AddMenuItem("Eksport XLSX", "Zapisz raport do Excela")
		mOpenExports := systray.AddMenuItem("Otwórz eksporty", "Pokaż katalog eksportów")

		systray.AddSeparator()
		mOpenLogs := systray.AddMenuItem("Otwórz logi", "Pokaż plik log")
		mOpenCfg := systray.AddMenuItem("Ustawienia (config.json)", "Otwórz plik konfiguracyjny")
		mReload := systray.AddMenuItem("Przeładuj konfigurację", "Wczytaj ponownie config.json")
		systray.AddSeparator()
		mAbout := systray.AddMenuItem(fmt.Sprintf("O programie (%s)", ver), "")
		mQuit := systray.AddMenuItem("Wyjście", "Zamknij aplikację")

		// AutoStart odświeżania (nie mylić z autostartem Windows!)
		if a.cfg.AutoStart {
			if err := a.sync.Start(ctx); err == nil {
				mStart.Disable()
				mStop.Enable()
			} else {
				log.Error().Msgf("AutoStart nieudany: %v", err)
			}
			systray.SetTooltip(a.tooltip())
		}

		exportTo := func(kind string) {
			files, err := a.export(kind)
			if err != nil {
				log.Error().Err(err).Str("kind", kind).Msg("eksport nieudany")
				return
			}
			if len(files) > 0 {
				openInExplorer(a.cfg.ExportPath(a.dir))
			}
		}

		go func() {
			for {
				select {
				case <-mStart.ClickedCh:
					if err := a.sync.Start(ctx); err != nil {
						log.Error().Msgf("Start error: %v", err)
						continue
					}
					mStart.Disable()
					mStop.Enable()
					systray.SetTooltip(a.tooltip())

				case <-mStop.ClickedCh:
					a.sync.Stop()
					mStop.Disable()
					mStart.Enable()
					systray.SetTooltip(a.tooltip())

				case <-mRefresh.ClickedCh:
					go a.sync.Refresh(ctx)

				case <-mExportCSV.ClickedCh:
					exportTo("csv")

				case <-mExportXLSX.ClickedCh:
					exportTo("xlsx")

				case <-mOpenExports.ClickedCh:
					dir := a.cfg.ExportPath(a.dir)
					_ = os.MkdirAll(dir, 0o755)
					openInExplorer(dir)

				case <-mOpenLogs.ClickedCh:
					openInExplorer(a.logPath)

				case <-mOpenCfg.ClickedCh:
					openInExplorer(a.cfgPath)

				case <-mReload.ClickedCh:
					if err := a.reload(); err != nil {
						log.Error().Msgf("Błąd reloadu: %v", err)
					}

				case <-mAbout.ClickedCh:
					log.Info().Msgf("SpiceDash %s | %s", ver, runtime.Version())

				case <-mQuit.ClickedCh:
					cancel()
					systray.Quit()
					return
				}
			}
		}()
	}, func() {
		// onExit
		a.close()
		time.Sleep(50 * time.Millisecond)
	})
}

// przenośne otwieranie plików/katalogów w domyślnej aplikacji
func openInExplorer(path string) {
	switch runtime.GOOS {
	case "windows":
		// "start" musi być uruchomiony przez cmd /C, z pustym tytułem okna ""
		_ = exec.Command("cmd", "/C", "start", "", path).Start()
	case "darwin":
		_ = exec.Command("open", path).Start()
	default:
		_ = exec.Command("xdg-open", path).Start()
	}
}
