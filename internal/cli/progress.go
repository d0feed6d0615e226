package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// NewProgressBar creates the standard progress bar used by long exports.
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// ProgressReporter adapts a progress bar to a (done, total) callback. The bar
// is created on the first call so its total is known.
type ProgressReporter struct {
	bar         *progressbar.ProgressBar
	w           io.Writer
	description string
}

// NewProgressReporter creates a reporter that draws to w.
func NewProgressReporter(w io.Writer, description string) *ProgressReporter {
	return &ProgressReporter{w: w, description: description}
}

// Report moves the bar to done out of total.
func (r *ProgressReporter) Report(done, total int) {
	if r.bar == nil {
		r.bar = NewProgressBar(r.w, total, r.description)
	}
	if err := r.bar.Set(done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}
