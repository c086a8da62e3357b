package main

import (
	"fmt"
	"os"

	"github.com/arloliu/ziso/container"
)

// progressPrinter renders a self-overwriting progress line on stderr,
// skipping updates that would repaint identical percentages.
type progressPrinter struct {
	verb        string
	showRatio   bool
	lastPercent int64
	lastRatio   int64
}

func newProgressPrinter(verb string, showRatio bool) container.ProgressFunc {
	p := &progressPrinter{verb: verb, showRatio: showRatio, lastPercent: -1, lastRatio: -1}

	return p.update
}

func (p *progressPrinter) update(done, total, written int64) {
	if total <= 0 || done <= 0 {
		return
	}

	percent := done * 100 / total
	ratio := written * 100 / done
	if percent == p.lastPercent && (!p.showRatio || ratio == p.lastRatio) {
		return
	}
	p.lastPercent = percent
	p.lastRatio = ratio

	if p.showRatio {
		fmt.Fprintf(os.Stderr, "\r%s %3d%% ratio %3d%%", p.verb, percent, ratio)
	} else {
		fmt.Fprintf(os.Stderr, "\r%s %3d%%", p.verb, percent)
	}
}

// finishProgressLine terminates the progress line so the summary starts on a
// fresh one.
func finishProgressLine() {
	fmt.Fprintln(os.Stderr)
}
