package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrPickerCancelled is returned when the user leaves the picker without confirming.
var ErrPickerCancelled = errors.New("selection canceled")

// PickerOptions configures RunPicker.
type PickerOptions struct {
	Input  io.Reader
	Output io.Writer
	Title  string
}

// RunPicker shows the people picker and returns the confirmed selection.
func RunPicker(ctx context.Context, people []string, opts PickerOptions) ([]string, error) {
	title := opts.Title
	if title == "" {
		title = "Who shares this expense?"
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	final, err := tea.NewProgram(NewPickerModel(title, people), programOpts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to run picker: %w", err)
	}

	m, ok := final.(PickerModel)
	if !ok {
		return nil, fmt.Errorf("unexpected picker model %T", final)
	}
	if !m.Confirmed() {
		return nil, ErrPickerCancelled
	}
	return m.Selected(), nil
}
