// Package progress renders spinner and status lines for long running steps.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const (
	clearLine   = "\r\033[2K"
	spinnerRune = `|/-\`
)

// Printer writes the human readable report. Spinner lines are only drawn
// when the writer is a terminal; on anything else they are dropped so
// logs and captured output stay clean.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	tty   bool
	frame int

	good *color.Color
	warn *color.Color
	bad  *color.Color
}

// NewPrinter returns a Printer for w, detecting whether w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return newPrinter(w, isTerminal(w))
}

// NewPlainPrinter returns a Printer that never draws spinner lines or
// colors, even on a terminal.
func NewPlainPrinter(w io.Writer) *Printer {
	return newPrinter(w, false)
}

func newPrinter(w io.Writer, tty bool) *Printer {
	p := &Printer{
		w:    w,
		tty:  tty,
		good: color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.good, p.warn, p.bad} {
		if tty {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether spinner output is drawn.
func (p *Printer) Interactive() bool {
	return p.tty
}

// Spin redraws the current line with the next spinner frame and msg.
func (p *Printer) Spin(format string, args ...any) {
	if !p.tty {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	r := spinnerRune[p.frame%len(spinnerRune)]
	p.frame++
	_, _ = fmt.Fprintf(p.w, "%s%c %s", clearLine, r, fmt.Sprintf(format, args...))
}

// Clear erases a pending spinner line.
func (p *Printer) Clear() {
	if !p.tty {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprint(p.w, clearLine)
}

// Println writes a plain report line.
func (p *Printer) Println(args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, args...)
}

// Printf writes a formatted report line; a newline is appended.
func (p *Printer) Printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Good writes a highlighted success line.
func (p *Printer) Good(format string, args ...any) {
	p.colored(p.good, format, args...)
}

// Warn writes a highlighted warning line.
func (p *Printer) Warn(format string, args ...any) {
	p.colored(p.warn, format, args...)
}

// Bad writes a highlighted failure line.
func (p *Printer) Bad(format string, args ...any) {
	p.colored(p.bad, format, args...)
}

func (p *Printer) colored(c *color.Color, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = c.Fprintf(p.w, format+"\n", args...)
}

// Tail returns at most the last n bytes of s, for long paths on one line.
// The cut never splits a UTF-8 sequence.
func Tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}
