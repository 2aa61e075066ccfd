package scanner

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// BarProgress draws a progress bar over the directory entries
type BarProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewBarProgress creates a progress bar writing to out, usually stderr
func NewBarProgress(out io.Writer) *BarProgress {
	return &BarProgress{out: out}
}

func (p *BarProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *BarProgress) Advance(name string) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(name)
	_ = p.bar.Add(1)
}

func (p *BarProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
