package console

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func newSimWindow(t *testing.T) (*Window, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("Failed to init simulation screen: %v", err)
	}
	sim.SetSize(80, 20)
	win := newWindow(sim, 10)
	return win, sim
}

func waitForKey(t *testing.T, win *Window) rune {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		if key, ok := win.ReadKey(); ok {
			return key
		}
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for a key")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestReadKeyNeverBlocks(t *testing.T) {
	win, _ := newSimWindow(t)
	defer win.Close()

	if key, ok := win.ReadKey(); ok {
		t.Errorf("Expected no key waiting, got %q", key)
	}
}

func TestReadKeyDeliversRunes(t *testing.T) {
	win, sim := newSimWindow(t)
	defer win.Close()

	sim.InjectKey(tcell.KeyRune, 'd', tcell.ModNone)
	if key := waitForKey(t, win); key != 'd' {
		t.Errorf("Expected 'd', got %q", key)
	}

	sim.InjectKey(tcell.KeyRune, '3', tcell.ModNone)
	if key := waitForKey(t, win); key != '3' {
		t.Errorf("Expected '3', got %q", key)
	}
}

func TestInterruptKeysReadAsQuit(t *testing.T) {
	win, sim := newSimWindow(t)
	defer win.Close()

	sim.InjectKey(tcell.KeyCtrlC, 0, tcell.ModNone)
	if key := waitForKey(t, win); key != 'q' {
		t.Errorf("Expected Ctrl+C to read as 'q', got %q", key)
	}

	sim.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	if key := waitForKey(t, win); key != 'q' {
		t.Errorf("Expected Escape to read as 'q', got %q", key)
	}
}

func TestKeyBufferDropsOverflow(t *testing.T) {
	win, sim := newSimWindow(t)
	defer win.Close()

	// Fill the buffer past capacity before anything is read. Injection
	// is paced so the simulation screen's own event queue never fills;
	// only the window's key buffer overflows.
	for i := 0; i < keyBufferSize+2; i++ {
		sim.InjectKey(tcell.KeyRune, rune('!'+i), tcell.ModNone)
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	// The oldest presses read back in order; the overflow is gone.
	for i := 0; i < keyBufferSize; i++ {
		want := rune('!' + i)
		if key := waitForKey(t, win); key != want {
			t.Fatalf("Key %d: got %q, want %q", i, key, want)
		}
	}
	if key, ok := win.ReadKey(); ok {
		t.Errorf("Expected overflow keys to be dropped, read %q", key)
	}

	// Draining frees the buffer for new presses.
	sim.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	if key := waitForKey(t, win); key != 'z' {
		t.Errorf("Expected 'z' after draining, got %q", key)
	}
}

func TestWriteLineBounds(t *testing.T) {
	win, _ := newSimWindow(t)
	defer win.Close()

	for _, lineno := range []int{-1, 10, 42} {
		err := win.WriteLine(lineno, "out of range")
		if err == nil {
			t.Errorf("Expected error for line %d", lineno)
			continue
		}
		if !strings.Contains(err.Error(), "out of range") {
			t.Errorf("Unexpected error message: %v", err)
		}
	}
	for lineno := 0; lineno < 10; lineno++ {
		if err := win.WriteLine(lineno, "ok"); err != nil {
			t.Errorf("Expected line %d to be writable: %v", lineno, err)
		}
	}
}

func TestWriteLinePlacesText(t *testing.T) {
	win, sim := newSimWindow(t)
	defer win.Close()

	if err := win.WriteLine(0, "Hi"); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}
	if err := win.WriteLine(5, "X"); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}
	win.Refresh()

	cells, width, _ := sim.GetContents()

	// Line 0 starts at the fixed x offset on the top row.
	if got := cellRune(cells, width, textOffsetX, 0); got != 'H' {
		t.Errorf("Expected 'H' at offset, got %q", got)
	}
	if got := cellRune(cells, width, textOffsetX+1, 0); got != 'i' {
		t.Errorf("Expected 'i' after it, got %q", got)
	}

	// Line 5 of 10 lands halfway down a 20 row screen.
	if got := cellRune(cells, width, textOffsetX, 10); got != 'X' {
		t.Errorf("Expected 'X' on row 10, got %q", got)
	}
}

func TestWriteLineReplacesLongerText(t *testing.T) {
	win, sim := newSimWindow(t)
	defer win.Close()

	if err := win.WriteLine(1, "Selected Joint: Gripper"); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}
	if err := win.WriteLine(1, "Reselect Joint"); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}
	win.Refresh()

	cells, width, _ := sim.GetContents()
	// Row 1 of 10 lands on row 2 of a 20 row screen. The tail of the
	// longer first message must be gone.
	if got := cellRune(cells, width, textOffsetX, 2); got != 'R' {
		t.Errorf("Expected 'R' at offset, got %q", got)
	}
	for x := textOffsetX + len("Reselect Joint"); x < width; x++ {
		if got := cellRune(cells, width, x, 2); got != ' ' {
			t.Fatalf("Expected padding at column %d, got %q", x, got)
		}
	}
}

func TestWriteLineContinuesOnNewline(t *testing.T) {
	win, sim := newSimWindow(t)
	defer win.Close()

	if err := win.WriteLine(0, "top\nnext"); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}
	win.Refresh()

	cells, width, _ := sim.GetContents()
	if got := cellRune(cells, width, textOffsetX, 0); got != 't' {
		t.Errorf("Expected 't' on row 0, got %q", got)
	}
	if got := cellRune(cells, width, textOffsetX, 1); got != 'n' {
		t.Errorf("Expected 'n' on row 1, got %q", got)
	}
}

func TestClearErasesContents(t *testing.T) {
	win, sim := newSimWindow(t)
	defer win.Close()

	if err := win.WriteLine(0, "leftover"); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}
	win.Refresh()
	win.Clear()
	win.Refresh()

	cells, width, _ := sim.GetContents()
	if got := cellRune(cells, width, textOffsetX, 0); got != ' ' {
		t.Errorf("Expected cleared cell, got %q", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	win, _ := newSimWindow(t)
	win.Close()
	win.Close()
}

func cellRune(cells []tcell.SimCell, width, x, y int) rune {
	cell := cells[y*width+x]
	if len(cell.Runes) == 0 {
		return ' '
	}
	return cell.Runes[0]
}
