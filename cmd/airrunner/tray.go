package main

import (
	"context"
	"net"
	"os/exec"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/airrunner/internal/app"
	"github.com/ayusman/airrunner/internal/tray"
)

const trayRefresh = 500 * time.Millisecond

// runTray shows the tray menu on the calling goroutine until ctx is done or
// the user quits, in which case quit is called.
func runTray(ctx context.Context, quit func(), a *app.App, dashboard string) {
	t := tray.New()
	t.OnStartStop(func(running bool) {
		if running {
			if _, err := a.StopSession(); err != nil {
				log.Warn().Err(err).Msg("stop from tray")
			}
			return
		}
		if err := a.StartSession(""); err != nil {
			log.Warn().Err(err).Msg("start from tray")
		}
	})
	t.OnCalibrate(func() {
		if err := a.StartCalibration(""); err != nil {
			log.Warn().Err(err).Msg("calibrate from tray")
		}
	})
	t.OnDashboard(func() { openBrowser(dashboard) })
	t.OnQuit(quit)

	go func() {
		ticker := time.NewTicker(trayRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-ticker.C:
				s := a.Status()
				t.SetState(s.Kind == app.KindSession, s.Kind == app.KindCalibration)
				t.SetLastAction(s.LastAction.String())
			}
		}
	}()

	t.Run()
	quit()
}

// dashboardURL turns a listen address into a browsable URL.
func dashboardURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("could not open browser")
		return
	}
	go cmd.Wait()
}
