package ui

import (
	"image/color"
	"sync"
	"time"

	"BadgeCounter/control"
	"BadgeCounter/counter"
	"BadgeCounter/i18n"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// UI constants
const (
	CounterFontSize float32 = 72.0

	// Dimensions
	CounterWidth  = 180
	CounterHeight = 110
	WindowWidth   = 320
	WindowHeight  = 260
	ButtonGap     = 5
)

// App is what the widgets need from the application.
type App interface {
	EnqueueCommand(cmd control.Command)
	HandleKeyRune(rune)
	AnimationFinished()
}

// CounterWidget shows the badge count and implements counter.View. The
// value lives in three texts: the static one and two off-stage ones that
// slide in from the left or the right.
type CounterWidget struct {
	app      App
	duration time.Duration

	current *canvas.Text
	left    *canvas.Text
	right   *canvas.Text
	stage   *fyne.Container

	tappableContainer *TappableContainer
	autoButton        *widget.Button

	mu       sync.Mutex
	anim     *fyne.Animation
	finished bool
}

// NewCounterWidget builds the counter display. duration is the length of
// one slide.
func NewCounterWidget(a App, duration time.Duration) *CounterWidget {
	w := &CounterWidget{app: a, duration: duration}

	w.current = newCounterText()
	w.left = newCounterText()
	w.right = newCounterText()

	w.stage = container.NewWithoutLayout(w.left, w.current, w.right)
	w.resetPositions()

	sizeEnforcer := canvas.NewRectangle(color.Transparent)
	sizeEnforcer.SetMinSize(fyne.NewSize(CounterWidth, CounterHeight))

	// Tapping the counter resets it.
	w.tappableContainer = NewTappableContainer(container.NewStack(sizeEnforcer, w.stage), func() {
		a.EnqueueCommand(control.Command{Type: control.CmdReset})
	}, nil)

	return w
}

func newCounterText() *canvas.Text {
	t := canvas.NewText(counter.Format(0), BadgeColor)
	t.TextSize = CounterFontSize
	t.TextStyle.Bold = true
	t.Alignment = fyne.TextAlignCenter
	t.Resize(fyne.NewSize(CounterWidth, CounterHeight))
	return t
}

func (w *CounterWidget) resetPositions() {
	w.left.Move(fyne.NewPos(-CounterWidth, 0))
	w.current.Move(fyne.NewPos(0, 0))
	w.right.Move(fyne.NewPos(CounterWidth, 0))
}

// GetCanvasObject returns the widget's root object.
func (w *CounterWidget) GetCanvasObject() fyne.CanvasObject {
	return w.tappableContainer
}

// Render shows text in the static element.
func (w *CounterWidget) Render(text string) {
	fyne.Do(func() {
		w.current.Text = text
		w.current.Refresh()
	})
}

// Slide moves the current value out and the incoming one in. Right means
// the new value enters from the right edge.
func (w *CounterWidget) Slide(dir counter.Direction, incoming string) {
	fyne.Do(func() {
		in, sign := w.left, float32(1)
		if dir == counter.DirectionRight {
			in, sign = w.right, -1
		}
		in.Text = incoming
		in.Refresh()

		w.mu.Lock()
		w.finished = false
		w.anim = fyne.NewAnimation(w.duration, func(p float32) {
			offset := sign * CounterWidth * p
			w.current.Move(fyne.NewPos(offset, 0))
			in.Move(fyne.NewPos(-sign*CounterWidth+offset, 0))
			if p >= 1 {
				w.finish(in)
			}
		})
		w.anim.Curve = fyne.AnimationEaseInOut
		anim := w.anim
		w.mu.Unlock()

		anim.Start()
	})
}

// finish puts the texts back in place and reports the end of the slide
// once, however often the last frame is ticked.
func (w *CounterWidget) finish(in *canvas.Text) {
	w.mu.Lock()
	if w.finished {
		w.mu.Unlock()
		return
	}
	w.finished = true
	w.anim = nil
	w.mu.Unlock()

	w.current.Text = in.Text
	w.resetPositions()
	w.current.Refresh()
	w.app.AnimationFinished()
}

// SetAutoIncrement highlights the auto button while auto-increment runs.
func (w *CounterWidget) SetAutoIncrement(active bool) {
	fyne.Do(func() {
		if w.autoButton == nil {
			return
		}
		if active {
			w.autoButton.Importance = widget.HighImportance
		} else {
			w.autoButton.Importance = widget.MediumImportance
		}
		w.autoButton.Refresh()
	})
}

// BuildControls creates the increase, decrease, reset and auto buttons.
func BuildControls(a App, w *CounterWidget) fyne.CanvasObject {
	enqueue := func(t control.CommandType) func() {
		return func() {
			a.EnqueueCommand(control.Command{Type: t})
		}
	}

	decreaseButton := widget.NewButton(i18n.T("Decrease"), enqueue(control.CmdDecrement))
	increaseButton := widget.NewButton(i18n.T("Increase"), enqueue(control.CmdIncrement))
	resetButton := widget.NewButton(i18n.T("Reset"), enqueue(control.CmdReset))
	w.autoButton = widget.NewButton(i18n.T("Auto"), enqueue(control.CmdToggleAuto))

	gap := canvas.NewRectangle(color.Transparent)
	gap.SetMinSize(fyne.NewSize(ButtonGap, 0))

	changeButtons := container.NewHBox(layout.NewSpacer(), decreaseButton, gap, increaseButton, layout.NewSpacer())
	modeButtons := container.NewHBox(layout.NewSpacer(), w.autoButton, resetButton, layout.NewSpacer())

	return container.NewVBox(changeButtons, modeButtons)
}

// CreateMainWindow builds the single window of the application.
func CreateMainWindow(a App, fyneApp fyne.App, w *CounterWidget) fyne.Window {
	title := fyneApp.Metadata().Name
	if title == "" {
		title = i18n.T("Badge Counter")
	}
	win := fyneApp.NewWindow(title)

	controls := BuildControls(a, w)
	win.Canvas().SetOnTypedRune(a.HandleKeyRune)

	content := container.NewVBox(
		layout.NewSpacer(),
		container.New(layout.NewCenterLayout(), w.GetCanvasObject()),
		layout.NewSpacer(),
		controls,
	)

	win.SetContent(content)
	win.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	win.SetFixedSize(true)
	return win
}

type TappableContainer struct {
	widget.BaseWidget
	Content           fyne.CanvasObject
	OnTappedPrimary   func()
	OnTappedSecondary func(e *fyne.PointEvent)
}

func NewTappableContainer(c fyne.CanvasObject, onP func(), onS func(e *fyne.PointEvent)) *TappableContainer {
	t := &TappableContainer{
		Content:           c,
		OnTappedPrimary:   onP,
		OnTappedSecondary: onS,
	}
	t.ExtendBaseWidget(t)
	return t
}

func (t *TappableContainer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.Content)
}

func (t *TappableContainer) Tapped(_ *fyne.PointEvent) {
	if t.OnTappedPrimary != nil {
		t.OnTappedPrimary()
	}
}

func (t *TappableContainer) TappedSecondary(e *fyne.PointEvent) {
	if t.OnTappedSecondary != nil {
		t.OnTappedSecondary(e)
	}
}
