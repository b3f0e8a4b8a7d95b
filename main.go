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

	"github.com/bartek5186/supplier2woo/internal/app"
	"github.com/getlantern/systray"
)

//go:embed assets/icon.ico
var iconData []byte

// wersję możesz nadpisać przez: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

func main() {
	a, err := app.Open("", false)
	if err != nil {
		panic(err)
	}
	defer a.Close()

	// kontekst sterujący życiem procesu (CTRL+C / zamknięcie sesji)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// jeśli proces dostanie sygnał, zatrzymaj syncer i zamknij tray
	go func() {
		<-ctx.Done()
		a.Syncer.Stop()
		systray.Quit()
	}()

	tooltip := func(state string) {
		if state == "" {
			systray.SetTooltip(fmt.Sprintf("supplier2woo %s", ver))
			return
		}
		systray.SetTooltip(fmt.Sprintf("supplier2woo %s (%s)", ver, state))
	}

	systray.Run(func() {
		// onReady
		if len(iconData) > 0 {
			systray.SetIcon(iconData)
		}
		tooltip("")

		mStart := systray.AddMenuItem("Start synchronizacji", "Uruchom harmonogram")
		mStop := systray.AddMenuItem("Stop synchronizacji", "Zatrzymaj harmonogram")
		mStop.Disable()
		mOnce := systray.AddMenuItem("Synchronizuj teraz", "Jeden cykl poza harmonogramem")

		systray.AddSeparator()
		mOpenLogs := systray.AddMenuItem("Otwórz logi", "Pokaż plik log")
		mOpenCfg := systray.AddMenuItem("Ustawienia (config.json)", "Otwórz plik konfiguracyjny")
		mReload := systray.AddMenuItem("Przeładuj konfigurację", "Wczytaj ponownie config.json")
		systray.AddSeparator()
		mAbout := systray.AddMenuItem(fmt.Sprintf("O programie (%s)", ver), "")
		mQuit := systray.AddMenuItem("Wyjście", "Zamknij aplikację")

		// AutoStart harmonogramu (nie mylić z autostartem Windows!)
		if a.Cfg.AutoStart {
			if err := a.Syncer.Start(ctx); err == nil {
				mStart.Disable()
				mStop.Enable()
				tooltip("działa")
			} else {
				a.Log.Error().Err(err).Msg("AutoStart nieudany")
				tooltip("błąd startu")
			}
		}

		go func() {
			for {
				select {
				case <-mStart.ClickedCh:
					if err := a.Syncer.Start(ctx); err != nil {
						a.Log.Error().Err(err).Msg("Start error")
						tooltip("błąd startu")
						continue
					}
					mStart.Disable()
					mStop.Enable()
					tooltip("działa")

				case <-mStop.ClickedCh:
					a.Syncer.Stop()
					mStop.Disable()
					mStart.Enable()
					tooltip("zatrzymane")

				case <-mOnce.ClickedCh:
					mOnce.Disable()
					go func() {
						defer mOnce.Enable()
						rep, err := a.Syncer.RunOnce(ctx)
						if err != nil {
							tooltip("błąd cyklu")
							return
						}
						tooltip(fmt.Sprintf("ostatnio: +%d / ~%d", rep.Summary.Created, rep.Summary.Updates))
					}()

				case <-mOpenLogs.ClickedCh:
					openInExplorer(a.LogPath)

				case <-mOpenCfg.ClickedCh:
					openInExplorer(a.CfgPath)

				case <-mReload.ClickedCh:
					if err := a.Reload(); err != nil {
						a.Log.Error().Err(err).Msg("Błąd reloadu")
					}

				case <-mAbout.ClickedCh:
					a.Log.Info().Msgf("supplier2woo %s | %s", ver, runtime.Version())

				case <-mQuit.ClickedCh:
					// łagodne zamykanie
					cancel()
					a.Syncer.Stop()
					systray.Quit()
					return
				}
			}
		}()
	}, func() {
		// onExit, daj chwilę loggerowi na flush
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
