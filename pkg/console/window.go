// Package console provides the fullscreen session window: a fixed grid
// of status lines plus non-blocking keyboard polling for the control
// loop.
package console

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

const (
	// textOffsetX indents every status line from the left edge.
	textOffsetX = 10
	// defaultNumLines is used when the caller passes no line count.
	defaultNumLines = 10
	// keyBufferSize bounds how many unread presses are held between
	// control ticks.
	keyBufferSize = 64
)

// Window owns the terminal while a session runs. The screen is divided
// into numLines evenly spaced text lines addressed by index; key events
// are pumped into a buffered channel so ReadKey never blocks the
// control loop.
type Window struct {
	screen    tcell.Screen
	numLines  int
	keys      chan rune
	closeOnce sync.Once
}

// New takes over the terminal and starts the key event pump. The caller
// must Close the window to restore the terminal.
func New(displayLines int) (*Window, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	return newWindow(screen, displayLines), nil
}

func newWindow(screen tcell.Screen, displayLines int) *Window {
	if displayLines <= 0 {
		displayLines = defaultNumLines
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.HideCursor()
	screen.Clear()

	w := &Window{
		screen:   screen,
		numLines: displayLines,
		keys:     make(chan rune, keyBufferSize),
	}
	go w.pumpEvents()
	return w
}

// pumpEvents translates terminal events into the key channel until the
// screen is finalized.
func (w *Window) pumpEvents() {
	for {
		event := w.screen.PollEvent()
		if event == nil {
			return
		}
		switch ev := event.(type) {
		case *tcell.EventKey:
			key, ok := translateKey(ev)
			if !ok {
				continue
			}
			select {
			case w.keys <- key:
			default:
				// Keyboard repeat outran the control loop; coalescing
				// already absorbs the burst, so drop the overflow.
			}
		case *tcell.EventResize:
			w.screen.Sync()
		}
	}
}

// translateKey reduces a key event to the single rune the interpreter
// works with. Ctrl+C and Escape both read as the quit key so the
// session always shuts down through the same path.
func translateKey(ev *tcell.EventKey) (rune, bool) {
	switch ev.Key() {
	case tcell.KeyRune:
		return ev.Rune(), true
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return 'q', true
	}
	return 0, false
}

// ReadKey returns the oldest unread key press, never blocking. The
// second return is false when no key is waiting.
func (w *Window) ReadKey() (rune, bool) {
	select {
	case key := <-w.keys:
		return key, true
	default:
		return 0, false
	}
}

// Clear erases the window contents. The next Refresh shows the empty
// screen.
func (w *Window) Clear() {
	w.screen.Clear()
}

// WriteLine draws message on one of the window's text lines. Lines are
// spread evenly over the screen height; a line index outside
// [0, numLines) is a contract violation and returns an error. Embedded
// newlines continue on the following row. Each row is padded out to the
// right edge so shorter text fully replaces whatever was there before.
func (w *Window) WriteLine(lineno int, message string) error {
	if lineno < 0 || lineno >= w.numLines {
		return fmt.Errorf("line number %d out of range [0, %d)", lineno, w.numLines)
	}
	width, height := w.screen.Size()
	y := lineno * height / w.numLines
	for _, text := range strings.Split(message, "\n") {
		x := textOffsetX
		for _, r := range text {
			if x >= width {
				break
			}
			w.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
			x++
		}
		for ; x < width; x++ {
			w.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
		y++
	}
	return nil
}

// Refresh makes all drawing since the last call visible.
func (w *Window) Refresh() {
	w.screen.Show()
}

// Close restores the terminal and stops the event pump. Safe to call
// more than once.
func (w *Window) Close() {
	w.closeOnce.Do(func() {
		w.screen.Fini()
	})
}
