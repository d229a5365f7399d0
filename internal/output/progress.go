package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tanq16/pdfpull/internal/utils"
	"golang.org/x/term"
)

const renderThrottle = 16 * time.Millisecond

// ProgressBar renders "Downloading [====    ] 42% 3.1s". With an unknown total
// it falls back to a byte counter. On a terminal the line is redrawn in place;
// otherwise only the final state is written.
type ProgressBar struct {
	out      io.Writer
	total    int64
	current  int64
	width    int
	columns  int
	tty      bool
	start    time.Time
	lastDraw time.Time
	lastLen  int
	drawn    bool
	finished bool
	now      func() time.Time
}

func NewProgressBar(out io.Writer, total int64) *ProgressBar {
	b := &ProgressBar{
		out:   out,
		total: total,
		width: barWidth,
		now:   time.Now,
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b.tty = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			b.columns = w
		}
	}
	return b
}

func (b *ProgressBar) Current() int64 {
	return b.current
}

func (b *ProgressBar) Finished() bool {
	return b.finished
}

// Add advances the bar by n bytes. Reaching a known total finishes the bar.
func (b *ProgressBar) Add(n int64) {
	if b.finished || n < 0 {
		return
	}
	if b.start.IsZero() {
		b.start = b.now()
	}
	b.current += n
	if b.total >= 0 && b.current >= b.total {
		b.current = b.total
		b.Finish()
		return
	}
	if b.tty && b.now().Sub(b.lastDraw) >= renderThrottle {
		b.draw()
	}
}

// Finish draws the final state followed by a newline. Later calls are no-ops.
func (b *ProgressBar) Finish() {
	if b.finished {
		return
	}
	b.finished = true
	if b.tty {
		b.draw()
		fmt.Fprintln(b.out)
		return
	}
	fmt.Fprintln(b.out, FDebug(b.Line()))
}

// Abort terminates an in-place line without claiming completion.
func (b *ProgressBar) Abort() {
	if b.finished {
		return
	}
	b.finished = true
	if b.tty && b.drawn {
		fmt.Fprintln(b.out)
	}
}

func (b *ProgressBar) Percent() int {
	if b.total < 0 {
		return -1
	}
	if b.total == 0 {
		return 100
	}
	return int(b.current * 100 / b.total)
}

func (b *ProgressBar) Line() string {
	var elapsed time.Duration
	if !b.start.IsZero() {
		elapsed = b.now().Sub(b.start)
	}
	if b.total < 0 {
		return fmt.Sprintf("Downloading %s %s %s",
			utils.FormatBytes(uint64(b.current)),
			StyleSymbols["bullet"],
			utils.FormatSpeed(b.current, elapsed.Seconds()))
	}

	percent := b.Percent()
	eta := 0.0
	if b.current > 0 && b.current < b.total {
		eta = elapsed.Seconds() * (float64(b.total)/float64(b.current) - 1)
	}
	prefix := "Downloading ["
	suffix := fmt.Sprintf("] %d%% %.1fs", percent, eta)

	width := b.width
	if b.columns > 0 {
		width = min(width, max(0, b.columns-len(prefix)-len(suffix)))
	}
	filled := width
	if b.total > 0 {
		filled = int(int64(width) * b.current / b.total)
	}
	bar := strings.Repeat(barComplete, filled) + strings.Repeat(barIncomplete, width-filled)
	return prefix + bar + suffix
}

func (b *ProgressBar) draw() {
	line := b.Line()
	n := utf8.RuneCountInString(line)
	pad := ""
	if n < b.lastLen {
		pad = strings.Repeat(" ", b.lastLen-n)
	}
	fmt.Fprintf(b.out, "\r%s%s", FDebug(line), pad)
	b.lastLen = n
	b.lastDraw = b.now()
	b.drawn = true
}
