package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bartek5186/supplier2woo/internal/app"
	"github.com/bartek5186/supplier2woo/internal/db"
	"github.com/bartek5186/supplier2woo/internal/integrations"
)

const replHelp = "start | stop | reload | status | once | last | tasks [run_id] | paths | quit"

// repl - prosta pętla poleceń w terminalu
func repl(ctx context.Context, a *app.App, ver string, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// AutoStart tak jak w tray
	if a.Cfg.AutoStart {
		if err := a.Syncer.Start(ctx); err != nil {
			a.Log.Error().Err(err).Msg("AutoStart nieudany")
		} else {
			a.Log.Info().Msgf("supplier2woo %s działa", ver)
		}
	}

	fmt.Fprintln(out, "supplier2woo CLI", ver)
	fmt.Fprintln(out, "Komendy:", replHelp)
	reader := bufio.NewReader(in)

	for {
		fmt.Fprint(out, "> ")
		line, rerr := reader.ReadString('\n')
		cmd := strings.TrimSpace(strings.ToLower(line))

		// komendy z argumentem
		if fields := strings.Fields(cmd); len(fields) > 0 && fields[0] == "tasks" {
			if err := printTasks(out, a, fields[1:]); err != nil {
				fmt.Fprintln(out, "Błąd:", err)
			}
			cmd = "" // dalej tylko obsługa końca wejścia
		}

		switch cmd {
		case "start":
			if err := a.Syncer.Start(ctx); err != nil {
				a.Log.Error().Err(err).Msg("Start error")
				fmt.Fprintln(out, "Błąd startu:", err)
				continue
			}
			fmt.Fprintln(out, "Start OK")
		case "stop":
			a.Syncer.Stop()
			fmt.Fprintln(out, "Zatrzymano")
		case "reload":
			if err := a.Reload(); err != nil {
				a.Log.Error().Err(err).Msg("Błąd reloadu")
				fmt.Fprintln(out, "Błąd reloadu:", err)
				continue
			}
			fmt.Fprintln(out, "Konfiguracja przeładowana")
		case "status":
			state := "ZATRZYMANY"
			if a.Syncer.IsRunning() {
				state = "DZIAŁA"
			}
			fmt.Fprintf(out, "Status: %s (cykli: %d, dry_run: %t)\n", state, a.Syncer.Ticks(), a.Cfg.DryRun)
			fmt.Fprintln(out, "Integracje:", strings.Join(registered(), ", "))
			if at, ok, err := a.DB.GetKV(db.KeyLastSyncAt); err == nil && ok {
				fmt.Fprintln(out, "Ostatnia wysyłka:", at)
			} else {
				fmt.Fprintln(out, "Ostatnia wysyłka: brak")
			}
		case "once":
			rep, err := a.Syncer.RunOnce(ctx)
			if err != nil {
				fmt.Fprintln(out, "Błąd cyklu:", err)
				continue
			}
			fmt.Fprintf(out, "Run #%d: create=%d update=%d paczek=%d dry_run=%t\n",
				rep.RunID, rep.Summary.Created, rep.Summary.Updates, rep.Tasks, rep.DryRun)
		case "last":
			run, err := a.DB.LastRun()
			if errors.Is(err, db.ErrNoRuns) {
				fmt.Fprintln(out, "Brak przebiegów")
				continue
			}
			if err != nil {
				fmt.Fprintln(out, "Błąd:", err)
				continue
			}
			printRun(out, run)
		case "paths":
			fmt.Fprintln(out, "Logi:", a.LogPath)
			fmt.Fprintln(out, "Config:", a.CfgPath)
			fmt.Fprintln(out, "Baza:", a.DB.Path)
		case "quit", "exit":
			a.Syncer.Stop()
			return nil
		case "":
			// enter – ignoruj
		default:
			fmt.Fprintln(out, "Nieznana komenda. Użyj:", replHelp)
		}

		// koniec wejścia (np. Ctrl+D albo pipe)
		if rerr != nil {
			a.Syncer.Stop()
			if errors.Is(rerr, io.EOF) {
				return nil
			}
			return rerr
		}
	}
}

// registered - nazwy zarejestrowanych integracji, posortowane
func registered() []string {
	names := make([]string, 0)
	for name := range integrations.All() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// printTasks wypisuje niewysłane paczki przebiegu (domyślnie ostatniego)
func printTasks(out io.Writer, a *app.App, args []string) error {
	var runID uint
	if len(args) > 0 {
		n, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("niepoprawny run_id %q", args[0])
		}
		runID = uint(n)
	} else {
		run, err := a.DB.LastRun()
		if err != nil {
			return err
		}
		runID = run.RunID
	}

	tasks, err := a.DB.PendingTasks(runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run #%d: paczek pending: %d\n", runID, len(tasks))
	for _, t := range tasks {
		p, err := t.Payload()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# task %d seq %d (create=%d update=%d)\n", t.TaskID, t.Seq, len(p.Create), len(p.Update))
		if err := writeJSON(out, p); err != nil {
			return err
		}
	}
	return nil
}

func printRun(out io.Writer, r *db.FeedRun) {
	status := map[int]string{db.RunPending: "w toku", db.RunDone: "OK", db.RunError: "BŁĄD"}[r.Status]
	fmt.Fprintf(out, "Run #%d [%s] %s\n", r.RunID, status, r.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  źródło: %s (%d B)\n", r.Source, r.SizeBytes)
	fmt.Fprintf(out, "  oferty: %d, sklep: %d, create: %d, update: %d, błędy: %d, dry_run: %t\n",
		r.Offers, r.StoreProducts, r.Created, r.Updated, r.Failed, r.DryRun)
	if r.LastError != "" {
		fmt.Fprintf(out, "  błąd: %s\n", r.LastError)
	}
}
