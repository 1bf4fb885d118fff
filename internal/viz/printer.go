package viz

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/dynint/internal/dynamo"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	sparkWidth  = 50
)

// Printer is a sim.Observer that redraws a progress bar and one sparkline
// per state component at most frameRate times a second.
type Printer struct {
	w         io.Writer
	title     string
	duration  float64
	interval  time.Duration
	lastFrame time.Time
	history   [][]float64
	y         dynamo.Value
	t         float64
	ansi      bool
}

// NewPrinter renders to w. A frameRate of zero or less redraws on every
// step and disables terminal escapes.
func NewPrinter(w io.Writer, title string, duration float64, frameRate int) *Printer {
	p := &Printer{w: w, title: title, duration: duration}
	if frameRate > 0 {
		p.interval = time.Second / time.Duration(frameRate)
		p.ansi = true
	}
	return p
}

func (p *Printer) OnStep(y dynamo.Value, _ []dynamo.Value, t float64) {
	if p.history == nil {
		p.history = make([][]float64, min(y.Len(), maxTraces))
	}
	for i := range p.history {
		h := append(p.history[i], y.At(i))
		if len(h) > sparkWidth {
			h = h[1:]
		}
		p.history[i] = h
	}
	p.y, p.t = y, t

	if p.interval > 0 && time.Since(p.lastFrame) < p.interval {
		return
	}
	p.lastFrame = time.Now()
	p.render()
}

func (p *Printer) render() {
	var b strings.Builder
	if p.ansi {
		b.WriteString(clearScreen)
	}
	fraction := 0.0
	if p.duration > 0 {
		fraction = p.t / p.duration
	}
	fmt.Fprintf(&b, "  %s  t=%.3f  %s\n", p.title, p.t, ProgressBar(fraction, 20))
	for i, h := range p.history {
		fmt.Fprintf(&b, "  x%d %-12.5g %s\n", i, p.y.At(i), Sparkline(h, sparkWidth))
	}
	io.WriteString(p.w, b.String())
}

// Start hides the cursor.
func (p *Printer) Start() {
	if p.ansi {
		io.WriteString(p.w, hideCursor)
	}
}

// Stop draws the last frame and restores the cursor.
func (p *Printer) Stop() {
	if p.y != nil {
		p.render()
	}
	if p.ansi {
		io.WriteString(p.w, showCursor)
	}
}
