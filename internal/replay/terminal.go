package replay

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// DefaultFrameDelay is how long each state stays on screen.
const DefaultFrameDelay = 400 * time.Millisecond

// TerminalSurface draws a buffer on a tcell screen, pausing after each
// state so the sequence can be followed.
type TerminalSurface struct {
	mu     sync.Mutex
	screen tcell.Screen
	title  string
	text   string
	frames int
	delay  time.Duration
	sleep  func(time.Duration)
}

// Len returns the text length.
func (s *TerminalSurface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.text)
}

// Replace overwrites [start, end), redraws and waits one frame.
func (s *TerminalSurface) Replace(start, end int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkRange(start, end, len(s.text)); err != nil {
		return err
	}
	s.text = s.text[:start] + text + s.text[end:]
	s.frames++
	s.draw()

	if s.delay > 0 {
		s.sleep(s.delay)
	}
	return nil
}

// Text returns the current text.
func (s *TerminalSurface) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// draw renders a title bar and as many lines of text as fit.
func (s *TerminalSurface) draw() {
	width, height := s.screen.Size()
	s.screen.Clear()

	title := fmt.Sprintf(" %s  state %d  %d bytes ", s.title, s.frames, len(s.text))
	header := tcell.StyleDefault.Reverse(true)
	for x := 0; x < width; x++ {
		s.screen.SetContent(x, 0, ' ', nil, header)
	}
	drawString(s.screen, 0, 0, width, title, header)

	lines := strings.Split(s.text, "\n")
	for y := 1; y < height && y-1 < len(lines); y++ {
		line := strings.ReplaceAll(lines[y-1], "\t", "    ")
		drawString(s.screen, 0, y, width, strings.TrimSuffix(line, "\r"), tcell.StyleDefault)
	}
	s.screen.Show()
}

// drawString draws str from (x, y) by grapheme cluster, clipped at width.
func drawString(screen tcell.Screen, x, y, width int, str string, style tcell.Style) {
	g := uniseg.NewGraphemes(str)
	for g.Next() {
		w := g.Width()
		if x+w > width {
			return
		}
		runes := g.Runes()
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
}

// TerminalHost shows each buffer in turn on one screen.
type TerminalHost struct {
	screen  tcell.Screen
	delay   time.Duration
	sleep   func(time.Duration)
	primary *TerminalSurface
}

// TerminalOption configures a TerminalHost.
type TerminalOption func(*TerminalHost)

// WithFrameDelay sets how long each state stays on screen.
func WithFrameDelay(d time.Duration) TerminalOption {
	return func(h *TerminalHost) {
		h.delay = d
	}
}

// NewTerminalHost creates a host drawing on screen, which must already be
// initialized. The primary surface starts with targetText.
func NewTerminalHost(screen tcell.Screen, title, targetText string, opts ...TerminalOption) *TerminalHost {
	h := &TerminalHost{
		screen: screen,
		delay:  DefaultFrameDelay,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.primary = h.surface(title, targetText)
	return h
}

func (h *TerminalHost) surface(title, text string) *TerminalSurface {
	return &TerminalSurface{
		screen: h.screen,
		title:  title,
		text:   text,
		delay:  h.delay,
		sleep:  h.sleep,
	}
}

// Primary returns the surface for buffer 0.
func (h *TerminalHost) Primary() Surface {
	return h.primary
}

// NewSurface returns an empty surface titled with the buffer index.
func (h *TerminalHost) NewSurface(index int) (Surface, error) {
	return h.surface(fmt.Sprintf("buffer %d", index), ""), nil
}
