package main

import (
	"context"
	"fmt"
	"os"

	"BadgeCounter/config"
	"BadgeCounter/i18n"
	"BadgeCounter/ui"

	"fyne.io/fyne/v2/app"
	"github.com/urfave/cli/v2"
	"github.com/zoobzio/capitan"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cliApp := &cli.App{
		Name:  "badgecounter",
		Usage: "Show and change the application badge count",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file overriding the defaults",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "state-file",
				Usage: "Share the badge count through this file (selects the file provider)",
			},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	overrides := map[string]any{}
	if c.IsSet("debug") {
		overrides["debug"] = c.Bool("debug")
	}
	if c.IsSet("state-file") {
		overrides["provider"] = config.ProviderFile
		overrides["state_file"] = c.String("state-file")
	}

	cfg, err := config.Load(c.String("config"), overrides)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	i18n.Init(cfg.Lang, log.Named("i18n"))

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	fyneApp := app.New()
	fyneApp.Settings().SetTheme(ui.NewCustomTheme(ui.BadgeColor))

	a, err := NewAppManager(ctx, cfg, log)
	if err != nil {
		return err
	}

	w := ui.CreateMainWindow(a, fyneApp, a.widget)
	w.SetOnClosed(func() {
		cancel()
	})

	a.Run(ctx)
	w.ShowAndRun()

	a.Shutdown()
	capitan.Shutdown()
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
