package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/muesli/termenv"

	"github.com/xupit3r/subword/internal/tokenizer"
)

// TrainingProgress draws a single-line progress bar of vocabulary growth
// towards the maximum size. Each update rewrites the line in place.
type TrainingProgress struct {
	w       io.Writer
	bar     progress.Model
	initial int
	maxSize int
	size    int
	drawn   bool
}

// NewTrainingProgress creates a bar for a run that starts with initial
// symbols and stops at maxSize
func NewTrainingProgress(w io.Writer, initial, maxSize int) *TrainingProgress {
	opts := []progress.Option{progress.WithWidth(30)}
	if colorEnabled {
		opts = append(opts, progress.WithDefaultGradient())
	} else {
		opts = append(opts, progress.WithColorProfile(termenv.Ascii))
	}

	return &TrainingProgress{
		w:       w,
		bar:     progress.New(opts...),
		initial: initial,
		maxSize: maxSize,
		size:    initial,
	}
}

// Percent is the share of the merge budget used once the vocabulary has size symbols
func (p *TrainingProgress) Percent(size int) float64 {
	budget := p.maxSize - p.initial
	if budget <= 0 {
		return 1
	}
	done := float64(size-p.initial) / float64(budget)
	switch {
	case done < 0:
		return 0
	case done > 1:
		return 1
	}
	return done
}

// Update redraws the bar after a merge. It matches tokenizer.Trainer's ProgressFunc.
func (p *TrainingProgress) Update(m tokenizer.Merge) {
	if m.Added {
		p.size++
	}
	fmt.Fprintf(p.w, "\r%s step %d %q x%d", p.bar.ViewAs(p.Percent(p.size)), m.Step, m.Symbol, m.Count)
	p.drawn = true
}

// Done ends the progress line
func (p *TrainingProgress) Done() {
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}
