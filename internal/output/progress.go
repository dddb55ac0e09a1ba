package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/ndstoolkit/ndsrom/pkg/nds"
)

// ProgressLine renders extraction progress. On a terminal the line is
// rewritten in place, otherwise every change is printed on its own line.
type ProgressLine struct {
	w     io.Writer
	tty   bool
	count lipgloss.Style
	ratio lipgloss.Style

	mu      sync.Mutex
	written bool
}

func NewProgressLine(w io.Writer) *ProgressLine {
	r := lipgloss.NewRenderer(w)

	return &ProgressLine{
		w:     w,
		tty:   IsTerminal(w),
		count: r.NewStyle().Bold(true),
		ratio: r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// Update prints s. It is safe to call from the goroutines of an extraction.
func (p *ProgressLine) Update(s nds.ProgressSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := fmt.Sprintf("Extracting %s files %s",
		p.count.Render(fmt.Sprintf("%d/%d", s.Completed, s.Total)),
		p.ratio.Render(fmt.Sprintf("(%.0f%%)", s.Ratio()*100)),
	)

	if p.tty {
		fmt.Fprintf(p.w, "\r%s", line)
	} else {
		fmt.Fprintln(p.w, line)
	}
	p.written = true
}

// Done ends the line rewritten by Update on a terminal.
func (p *ProgressLine) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tty && p.written {
		fmt.Fprintln(p.w)
	}
}
