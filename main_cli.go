//go:build !windows || dev

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/bartek5186/spicedash/internal/export"
	"github.com/bartek5186/spicedash/internal/syncer"
)

const cliHelp = "Komendy: start | stop | refresh | stats | items | complete <id> | uncomplete <id> | export <csv|xlsx> | reload | status | paths | quit"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := bootstrap(ctx, true)
	log := a.log
	log.Info().Msg("Aplikacja (CLI) uruchomiona")

	if a.cfg.AutoStart {
		if err := a.sync.Start(ctx); err != nil {
			log.Error().Msgf("AutoStart nieudany: %v", err)
		} else {
			log.Info().Msgf("SpiceDash %s: działa", ver)
		}
	}

	fmt.Println("SpiceDash CLI", ver)
	fmt.Println(cliHelp)

	lines := make(chan string)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				lines <- line
			}
			if err != nil {
				close(lines)
				return
			}
		}
	}()

	for {
		fmt.Print("> ")
		var line string
		select {
		case <-ctx.Done():
			a.close()
			return
		case l, ok := <-lines:
			if !ok {
				a.close()
				return
			}
			line = l
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToLower(fields[0]), fields[1:]

		switch cmd {
		case "start":
			if err := a.sync.Start(ctx); err != nil {
				log.Error().Msgf("Start error: %v", err)
				fmt.Println("Błąd startu:", err)
				continue
			}
			fmt.Println("Start OK")
		case "stop":
			a.sync.Stop()
			fmt.Println("Zatrzymano")
		case "refresh":
			printStats(a.sync.Refresh(ctx))
		case "stats":
			printStats(a.sync.Snapshot())
		case "items":
			printItems(a.sync.Snapshot())
		case "complete", "uncomplete":
			if len(args) != 1 {
				fmt.Printf("Użycie: %s <order_id>\n", cmd)
				continue
			}
			var (
				snap *syncer.Snapshot
				err  error
			)
			if cmd == "complete" {
				snap, err = a.sync.CompleteOrder(ctx, args[0])
			} else {
				snap, err = a.sync.ClearOverride(ctx, args[0])
			}
			var srcErr *syncer.SourceError
			if errors.As(err, &srcErr) {
				fmt.Println("Uwaga: zapisano lokalnie, backend nie przyjął zgłoszenia:", srcErr.Err)
			} else if err != nil {
				fmt.Println("Błąd:", err)
				continue
			}
			printStats(snap)
		case "export":
			kind := "csv"
			if len(args) > 0 {
				kind = strings.ToLower(args[0])
			}
			files, err := a.export(kind)
			if err != nil {
				fmt.Println("Błąd eksportu:", err)
				continue
			}
			for _, f := range files {
				fmt.Println("Zapisano:", f)
			}
		case "reload":
			if err := a.reload(); err != nil {
				log.Error().Msgf("Błąd reloadu: %v", err)
				fmt.Println("Błąd reloadu:", err)
				continue
			}
			fmt.Println("Konfiguracja przeładowana")
		case "status":
			if a.sync.IsRunning() {
				fmt.Println("Status: DZIAŁA")
			} else {
				fmt.Println("Status: ZATRZYMANY")
			}
			if a.api != nil {
				fmt.Println("API:", "http://"+a.api.Addr())
			}
		case "paths":
			fmt.Println("Logi:", a.logPath)
			fmt.Println("Config:", a.cfgPath)
			fmt.Println("Eksporty:", a.cfg.ExportPath(a.dir))
			if strings.HasPrefix(a.dbh.Driver, "sqlite") {
				fmt.Println("Baza:", a.dbh.Path)
			}
			fmt.Println(".env:", filepath.Join(a.dir, ".env"))
		case "quit", "exit":
			cancel()
			a.close()
			time.Sleep(50 * time.Millisecond)
			return
		default:
			fmt.Println("Nieznana komenda.", cliHelp)
		}
	}
}

func printStats(s *syncer.Snapshot) {
	st := s.Stats
	if s.FetchError != "" {
		fmt.Println("Błąd pobrania:", s.FetchError)
	}
	if !s.RefreshedAt.IsZero() {
		fmt.Printf("Źródło: %s, odświeżono %s (#%d)\n", s.Source, s.RefreshedAt.Format("15:04:05"), s.Seq)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Zamówienia\t%d\t%s\n", st.TotalOrders, st.TotalAmount.StringFixed(2))
	fmt.Fprintf(tw, "Zakończone\t%d\t%s\n", st.CompletedOrders, st.CompletedValue.StringFixed(2))
	fmt.Fprintf(tw, "W realizacji\t%d\t%s\n", st.InProgressOrders, st.InProgressValue.StringFixed(2))
	fmt.Fprintf(tw, "Oczekujące\t%d\t%s\n", st.PendingOrders, st.PendingValue.StringFixed(2))
	fmt.Fprintf(tw, "Do spakowania\t%d szt.\t%.2f kg\n", st.TotalItems, st.TotalWeight)
	fmt.Fprintf(tw, "Realizacja\t%d%%\t\n", st.CompletionRate)
	_ = tw.Flush()
}

func printItems(s *syncer.Snapshot) {
	if len(s.Stats.ItemSummary) == 0 {
		fmt.Println("Brak pozycji w realizacji")
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KOD\tNAZWA\tILOŚĆ\tWARIANTY\tWARTOŚĆ\tWAGA")
	for _, e := range s.Stats.ItemSummary {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%.2f kg\n",
			e.Code, e.Name, e.TotalQty, export.FormatVariants(e.Variants), e.TotalValue.StringFixed(2), e.TotalWeight)
	}
	_ = tw.Flush()
}
