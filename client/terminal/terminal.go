// Package terminal draws boards in a text terminal.
package terminal

import (
	"fmt"
	"strings"

	"github.com/cbodonnell/goban/pkg/state"
	"github.com/nsf/termbox-go"
)

const columns = "ABCDEFGHJ"

// Lines renders a board with coordinates and a status line.
func Lines(view state.BoardView, status string) []string {
	lines := make([]string, 0, len(view.Rows)+4)
	lines = append(lines, "   "+spaced(columns[:len(view.Rows)]))
	for i, row := range view.Rows {
		lines = append(lines, fmt.Sprintf("%2d %s", len(view.Rows)-i, spaced(row)))
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("%s to play  B %d  W %d  frame %d", view.CurrentPlayer, view.Black, view.White, view.Frame))
	if status != "" {
		lines = append(lines, status)
	}
	return lines
}

func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}

// Screen is a termbox screen. Only one may be open at a time.
type Screen struct {
	keys chan termbox.Key
}

func Open() (*Screen, error) {
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	s := &Screen{keys: make(chan termbox.Key, 8)}
	go s.pollEvents()
	return s, nil
}

func (s *Screen) pollEvents() {
	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventInterrupt:
			close(s.keys)
			return
		case termbox.EventKey:
			key := ev.Key
			if ev.Ch == 'q' {
				key = termbox.KeyEsc
			}
			select {
			case s.keys <- key:
			default:
			}
		}
	}
}

// Quit is closed or receives a value when the user asks to quit.
func (s *Screen) Quit() <-chan termbox.Key {
	return s.keys
}

func (s *Screen) Draw(lines []string) error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return fmt.Errorf("failed to clear terminal: %v", err)
	}
	for y, line := range lines {
		for x, ch := range line {
			fg := termbox.ColorDefault
			switch ch {
			case 'B':
				if y > 0 && y <= len(columns) {
					fg = termbox.ColorBlue | termbox.AttrBold
				}
			case 'W':
				if y > 0 && y <= len(columns) {
					fg = termbox.ColorWhite | termbox.AttrBold
				}
			}
			termbox.SetCell(x, y, ch, fg, termbox.ColorDefault)
		}
	}
	return termbox.Flush()
}

func (s *Screen) Close() {
	termbox.Interrupt()
	termbox.Close()
}
