package cmd

import (
	"errors"
	"time"

	"focusguard/internal/config"
	"focusguard/internal/platform"
	"focusguard/internal/ui/tray"
	"focusguard/internal/ui/window"
	"focusguard/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const appID = "io.focusguard.app"

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Open the window and the tray icon",
	Long: `Open the FocusGuard window and tray icon. This is what runs when no
subcommand is given. Only one window can run per user session.`,
	Args: cobra.NoArgs,
	RunE: runTray,
}

func init() {
	rootCmd.AddCommand(trayCmd)
}

func runTray(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	guard, err := platform.AcquireSingleInstance(config.AppName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if activateErr := platform.Activate(config.AppName, time.Second); activateErr != nil {
				svc.logger.Warn("single instance", zap.Error(err), zap.NamedError("activate", activateErr))
			}
			return nil
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	svc.serveMetrics()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconActive))

	quit := func() {
		go func() {
			_, _ = svc.controller.Stop()
			fyne.Do(fyneApp.Quit)
		}()
	}
	stop := func() {
		go func() {
			if _, err := svc.controller.Stop(); err != nil {
				svc.logger.Debug("stop from ui", zap.Error(err))
			}
		}()
	}

	defaults := window.DefaultSelection()
	defaults.FocusMinutes = svc.config.FocusMinutes
	defaults.BreakMinutes = svc.config.BreakMinutes

	var mainWindow *window.Window
	mainWindow = window.New(fyneApp, svc.controller.AppList(), defaults, window.Callbacks{
		OnStart: func(selection window.Selection) {
			_, _ = svc.controller.Start(selection.Allowed, selection.FocusMinutes, selection.BreakMinutes)
		},
		OnStop: stop,
		OnAddApp: func(displayName, processName string) bool {
			if !svc.controller.AddCustomApp(displayName, processName) {
				return false
			}
			mainWindow.SetApps(svc.controller.AppList())
			return true
		},
	})

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, tray.Icons{
			Idle:   resources.MustIcon(resources.IconIdle),
			Active: resources.MustIcon(resources.IconActive),
			Break:  resources.MustIcon(resources.IconBreak),
		}, tray.Callbacks{
			OnShow: mainWindow.Show,
			OnStop: stop,
			OnQuit: quit,
		})
		mainWindow.SetCloseIntercept(mainWindow.Hide)
	} else {
		svc.logger.Info("system tray unsupported, closing the window quits")
		mainWindow.SetCloseIntercept(quit)
	}

	go guard.Serve(func() {
		fyne.Do(mainWindow.Show)
	})

	sub := svc.hub.Subscribe(256)
	go func() {
		for event := range sub.C {
			fyne.Do(func() {
				mainWindow.Apply(event)
				if trayManager != nil {
					trayManager.Apply(event)
				}
			})
		}
	}()

	mainWindow.Show()
	fyneApp.Run()
	return nil
}
