// Package main contains the application wiring and the AppManager which
// coordinates the badge provider, the counter service and controller, the
// UI and audio. This file centralizes the shared application state.
//
// Maintenance notes / tips:
//   - Concurrency model: every state change of the counter goes through the
//     controller's mailbox and is handled on the single goroutine running
//     Controller.Run. UI callbacks, provider listeners and the fyne
//     animation only post messages; they never touch counter state.
//   - Posting never blocks, so EnqueueCommand is safe to call from the fyne
//     main goroutine.
//   - The provider's change listener is registered once by
//     Service.Initialize and removed by Shutdown.
package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"BadgeCounter/badge"
	"BadgeCounter/config"
	"BadgeCounter/control"
	"BadgeCounter/counter"
	"BadgeCounter/ui"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/zoobzio/capitan"
	"go.uber.org/zap"
)

const (
	chimeSampleRate = beep.SampleRate(44100)
	chimeFrequency  = 880.0
	chimeLength     = 60 * time.Millisecond
)

// provider is a badge store the application owns and must close.
type provider interface {
	badge.Provider
	Close() error
}

// AppManager is the main application struct, holding all state.
type AppManager struct {
	cfg *config.Config
	log *zap.Logger

	provider   provider
	service    *counter.Service
	controller *counter.Controller
	widget     *ui.CounterWidget

	chime       *beep.Buffer
	speakerLock sync.Mutex

	runCancel context.CancelFunc
	runDone   chan struct{}
}

// NewAppManager creates a new application manager. Provider failures other
// than construction errors are logged, not returned.
func NewAppManager(ctx context.Context, cfg *config.Config, log *zap.Logger) (*AppManager, error) {
	a := &AppManager{cfg: cfg, log: log}

	p, err := newProvider(cfg, log.Named("badge"))
	if err != nil {
		return nil, err
	}
	a.provider = p

	a.service = counter.NewService(p, badge.StaticIdentity(cfg.AppID), log.Named("service"))
	a.service.Initialize(ctx)

	a.widget = ui.NewCounterWidget(a, cfg.AnimationDuration)
	a.controller = counter.NewController(a.service, a.widget, log.Named("controller"),
		counter.WithAutoIncrementInterval(cfg.AutoIncrementInterval),
	)
	a.service.SetObserver(a.controller)
	// Catch up with confirmations that arrived before the observer was set.
	a.controller.Sync()

	if cfg.Sound {
		a.loadChime()
	}
	a.hookSignals()

	return a, nil
}

func newProvider(cfg *config.Config, log *zap.Logger) (provider, error) {
	switch cfg.Provider {
	case config.ProviderFile:
		p, err := badge.NewFileProvider(cfg.StateFile, log)
		if err != nil {
			return nil, fmt.Errorf("error opening badge file: %w", err)
		}
		return p, nil
	default:
		var opts []badge.MemoryOption
		if cfg.AppID != "" {
			opts = append(opts, badge.WithCount(cfg.AppID, cfg.InitialCount))
		}
		return badge.NewMemoryProvider(opts...), nil
	}
}

// hookSignals logs the counter's observable events and plays the chime on
// every settle.
func (a *AppManager) hookSignals() {
	capitan.Hook(counter.CountChanged, func(_ context.Context, e *capitan.Event) {
		count, _ := counter.KeyCount.From(e)
		display, _ := counter.KeyDisplay.From(e)
		a.log.Info("badge count changed", zap.Int("count", count), zap.String("display", display))
		a.PlayChime()
	})

	capitan.Hook(counter.CountChangeFailed, func(_ context.Context, e *capitan.Event) {
		errMsg, _ := counter.KeyError.From(e)
		a.log.Warn("badge count change failed", zap.String("error", errMsg))
	})

	capitan.Hook(counter.AutoIncrementToggled, func(_ context.Context, e *capitan.Event) {
		state, _ := counter.KeyActive.From(e)
		a.log.Info("auto-increment toggled", zap.String("state", state))
	})
}

// Run starts the controller loop in the background.
func (a *AppManager) Run(ctx context.Context) {
	ctx, a.runCancel = context.WithCancel(ctx)
	a.runDone = make(chan struct{})

	go func() {
		defer close(a.runDone)
		if err := a.controller.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error("controller stopped", zap.Error(err))
		}
	}()
}

// EnqueueCommand posts a command to the counter controller.
func (a *AppManager) EnqueueCommand(cmd control.Command) {
	var err error
	switch cmd.Type {
	case control.CmdIncrement:
		a.controller.Increment()
	case control.CmdDecrement:
		a.controller.Decrement()
	case control.CmdReset:
		a.controller.Reset()
	case control.CmdToggleAuto:
		a.controller.ToggleAutoIncrement()
	default:
		err = fmt.Errorf("unknown command %d", cmd.Type)
		a.log.Warn("dropping command", zap.Error(err))
	}

	// send reply if requested
	if cmd.Reply != nil {
		select {
		case cmd.Reply <- err:
		default:
		}
	}
}

// AnimationFinished forwards the view's slide completion to the controller.
func (a *AppManager) AnimationFinished() {
	a.controller.AnimationFinished()
}

// HandleKeyRune handles key presses for the application.
func (a *AppManager) HandleKeyRune(r rune) {
	switch r {
	case '+', '=':
		a.EnqueueCommand(control.Command{Type: control.CmdIncrement})
	case '-', '_':
		a.EnqueueCommand(control.Command{Type: control.CmdDecrement})
	case 'r', 'R', '0':
		a.EnqueueCommand(control.Command{Type: control.CmdReset})
	case 'a', 'A', ' ':
		a.EnqueueCommand(control.Command{Type: control.CmdToggleAuto})
	}
}

func (a *AppManager) loadChime() {
	if err := speaker.Init(chimeSampleRate, chimeSampleRate.N(time.Second/10)); err != nil {
		a.log.Warn("audio disabled: failed to initialize speaker", zap.Error(err))
		return
	}

	tone, err := generators.SineTone(chimeSampleRate, chimeFrequency)
	if err != nil {
		a.log.Warn("audio disabled: failed to generate chime", zap.Error(err))
		return
	}

	buffer := beep.NewBuffer(beep.Format{SampleRate: chimeSampleRate, NumChannels: 2, Precision: 2})
	buffer.Append(beep.Take(chimeSampleRate.N(chimeLength), tone))
	a.chime = buffer
}

// PlayChime plays the settle sound if audio is enabled.
func (a *AppManager) PlayChime() {
	if a.chime == nil {
		return
	}

	a.speakerLock.Lock()
	defer a.speakerLock.Unlock()

	speaker.Play(a.chime.Streamer(0, a.chime.Len()))
}

// Shutdown stops the controller loop (and with it the auto-increment
// timer), unregisters the badge listener and closes the provider.
func (a *AppManager) Shutdown() {
	if a.runCancel != nil {
		a.runCancel()
		<-a.runDone
	} else {
		a.controller.Close()
	}
	a.service.Close()
	if err := a.provider.Close(); err != nil {
		a.log.Warn("error closing badge provider", zap.Error(err))
	}
}
