package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

var stageIcons = map[Stage]string{
	StageUpload:     "⬆",
	StageProcessing: "⏳",
	StageGenerate:   "✍",
	StageAnalyze:    "🔍",
	StageComplete:   "✔",
}

// StatusLine shows the current step of a generate or analyze request. On a
// terminal it rewrites one line in place; otherwise it logs one line per
// event.
type StatusLine struct {
	out   io.Writer
	start time.Time
	tty   bool
	width int
	dirty bool
	last  Event
}

// NewStatusLine creates a status line on out, detecting whether out is a
// terminal and how wide it is.
func NewStatusLine(out *os.File) *StatusLine {
	tty := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	width := 80
	if tty {
		if w, _, err := term.GetSize(out.Fd()); err == nil && w > 0 {
			width = w
		}
	}
	return newStatusLine(out, tty, width)
}

func newStatusLine(out io.Writer, tty bool, width int) *StatusLine {
	return &StatusLine{out: out, start: time.Now(), tty: tty, width: width}
}

// Handle renders e. It satisfies Callback.
func (s *StatusLine) Handle(e Event) {
	e.Elapsed = time.Since(s.start)
	s.last = e
	if e.Error != nil || e.Stage == StageComplete {
		// Finish prints the outcome.
		return
	}

	line := describe(e)
	if !s.tty {
		fmt.Fprintf(s.out, "[%s] %s\n", formatElapsed(e.Elapsed), line)
		return
	}
	line = fmt.Sprintf("  %s %s  %s", stageIcons[e.Stage], line, formatElapsed(e.Elapsed))
	fmt.Fprint(s.out, "\r\033[2K"+fit(line, s.width))
	s.dirty = true
}

// Finish clears the live line and prints how the request ended.
func (s *StatusLine) Finish() {
	if s.dirty {
		fmt.Fprint(s.out, "\r\033[2K")
		s.dirty = false
	}
	e := s.last
	switch {
	case e.Error != nil:
		fmt.Fprintf(s.out, "  Error: %v\n", e.Error)
	case e.Stage == StageComplete && e.Model != "":
		fmt.Fprintf(s.out, "  %s %s (%s, %d chars, %s)\n", stageIcons[StageComplete], e.Message, e.Model, e.Chars, formatElapsed(e.Elapsed))
	case e.Stage == StageComplete:
		fmt.Fprintf(s.out, "  %s %s (%s)\n", stageIcons[StageComplete], e.Message, formatElapsed(e.Elapsed))
	}
}

func describe(e Event) string {
	if e.Stage == StageProcessing && e.MaxAttempts > 0 {
		return fmt.Sprintf("%s (%d/%d)", e.Message, e.Attempt, e.MaxAttempts)
	}
	return e.Message
}

// fit truncates line to width runes.
func fit(line string, width int) string {
	r := []rune(line)
	if width <= 1 || len(r) < width {
		return line
	}
	return string(r[:width-1]) + "…"
}

// formatElapsed formats a duration as M:SS.
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
