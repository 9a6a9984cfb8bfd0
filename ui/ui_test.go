package ui

import (
	"sync"
	"testing"
	"time"

	"BadgeCounter/control"
	"BadgeCounter/counter"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeApp records the commands the widgets send.
type fakeApp struct {
	mu       sync.Mutex
	commands []control.CommandType
	runes    []rune
	finished int
}

func (a *fakeApp) EnqueueCommand(cmd control.Command) {
	a.mu.Lock()
	a.commands = append(a.commands, cmd.Type)
	a.mu.Unlock()
}

func (a *fakeApp) HandleKeyRune(r rune) {
	a.mu.Lock()
	a.runes = append(a.runes, r)
	a.mu.Unlock()
}

func (a *fakeApp) AnimationFinished() {
	a.mu.Lock()
	a.finished++
	a.mu.Unlock()
}

func (a *fakeApp) Commands() []control.CommandType {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]control.CommandType(nil), a.commands...)
}

func (a *fakeApp) Finished() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.finished
}

func TestCounterWidget_TapResets(t *testing.T) {
	test.NewTempApp(t)

	a := &fakeApp{}
	w := NewCounterWidget(a, 10*time.Millisecond)

	test.Tap(w.tappableContainer)

	assert.Equal(t, []control.CommandType{control.CmdReset}, a.Commands())
}

func TestCounterWidget_Render(t *testing.T) {
	test.NewTempApp(t)

	w := NewCounterWidget(&fakeApp{}, 10*time.Millisecond)
	assert.Equal(t, "00", w.current.Text)

	w.Render(counter.Format(150))

	require.Eventually(t, func() bool {
		return w.current.Text == "99+"
	}, time.Second, time.Millisecond)
}

func TestCounterWidget_SlideReportsFinishOnce(t *testing.T) {
	test.NewTempApp(t)

	a := &fakeApp{}
	w := NewCounterWidget(a, 10*time.Millisecond)

	w.Slide(counter.DirectionRight, "01")

	require.Eventually(t, func() bool {
		return a.Finished() == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, "01", w.current.Text)

	// a late final frame must not report again
	w.finish(w.right)
	assert.Equal(t, 1, a.Finished())
}

func TestBuildControls(t *testing.T) {
	test.NewTempApp(t)

	a := &fakeApp{}
	w := NewCounterWidget(a, 10*time.Millisecond)
	BuildControls(a, w)
	require.NotNil(t, w.autoButton)

	test.Tap(w.autoButton)
	assert.Equal(t, []control.CommandType{control.CmdToggleAuto}, a.Commands())

	w.SetAutoIncrement(true)
	require.Eventually(t, func() bool {
		return w.autoButton.Importance == widget.HighImportance
	}, time.Second, time.Millisecond)

	w.SetAutoIncrement(false)
	require.Eventually(t, func() bool {
		return w.autoButton.Importance == widget.MediumImportance
	}, time.Second, time.Millisecond)
}

func TestCreateMainWindow_TypedRunes(t *testing.T) {
	fyneApp := test.NewTempApp(t)

	a := &fakeApp{}
	w := NewCounterWidget(a, 10*time.Millisecond)
	win := CreateMainWindow(a, fyneApp, w)
	defer win.Close()

	test.TypeOnCanvas(win.Canvas(), "+-")

	a.mu.Lock()
	defer a.mu.Unlock()
	assert.Equal(t, []rune{'+', '-'}, a.runes)
}

func TestCustomTheme_Primary(t *testing.T) {
	th := NewCustomTheme(BadgeColor)

	assert.Equal(t, BadgeColor, th.Color(theme.ColorNamePrimary, theme.VariantLight))
	assert.Equal(t,
		theme.DefaultTheme().Color(theme.ColorNameBackground, theme.VariantDark),
		th.Color(theme.ColorNameBackground, theme.VariantDark))
}
