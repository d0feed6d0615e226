package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/settle-up/internal/model"
)

// Prompter asks for missing command input on a line-oriented terminal.
type Prompter struct {
	reader *LineReader
	writer io.Writer
}

// NewPrompter creates a prompter reading from r and writing to w. Nil
// arguments fall back to stdin and stdout.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &Prompter{
		reader: NewLineReader(r),
		writer: w,
	}
}

// Ask prompts until a non-empty answer is given.
func (p *Prompter) Ask(ctx context.Context, label string) (string, error) {
	for {
		if err := p.print(FormatPrompt(label)); err != nil {
			return "", err
		}
		answer, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}

// AskAmount prompts until a positive decimal amount is given.
func (p *Prompter) AskAmount(ctx context.Context, label string) (float64, error) {
	for {
		answer, err := p.Ask(ctx, label)
		if err != nil {
			return 0, err
		}

		amount, err := ParseAmount(answer)
		if err != nil {
			if err := p.println(FormatError(err.Error())); err != nil {
				return 0, err
			}
			continue
		}
		return amount, nil
	}
}

// ParseAmount parses a user-entered amount. Surrounding whitespace and a
// leading currency symbol are ignored.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: %s", model.ErrNonPositiveAmount, d.String())
	}
	return d.InexactFloat64(), nil
}

// SelectInvolved asks which known people share an expense. Numbers pick from
// the list, an empty answer picks everyone and "new" switches to typing
// names. With no known people the payer is the only one involved.
func (p *Prompter) SelectInvolved(ctx context.Context, known []string, payer string) ([]string, error) {
	if len(known) == 0 {
		msg := "No people known yet. The payer will be the only person involved in splitting this expense."
		if err := p.println(FormatWarning(msg)); err != nil {
			return nil, err
		}
		return model.CanonicalPeople([]string{payer}), nil
	}

	if err := p.printMenu(known); err != nil {
		return nil, err
	}

	for {
		if err := p.print(FormatPrompt("Your selection")); err != nil {
			return nil, err
		}
		answer, err := p.reader.ReadLine(ctx)
		if err != nil {
			return nil, err
		}

		selected, retry, err := p.resolveSelection(ctx, strings.ToLower(answer), known)
		if err != nil {
			return nil, err
		}
		if retry != "" {
			if err := p.println(FormatWarning(retry)); err != nil {
				return nil, err
			}
			continue
		}

		if err := p.println(InfoStyle.Render("Selected people: " + strings.Join(selected, ", "))); err != nil {
			return nil, err
		}
		return selected, nil
	}
}

// resolveSelection maps one answer to a selection. A non-empty retry message
// means the answer was unusable and the user should be asked again.
func (p *Prompter) resolveSelection(ctx context.Context, answer string, known []string) ([]string, string, error) {
	switch answer {
	case "":
		return model.CanonicalPeople(known), "", nil
	case "new":
		names, err := p.Ask(ctx, "Enter new names (comma-separated)")
		if err != nil {
			return nil, "", err
		}
		selected := model.CanonicalPeople(strings.Split(names, ","))
		if len(selected) == 0 {
			return nil, "No names entered. Please re-enter your selection.", nil
		}
		return selected, "", nil
	}

	var selected []string
	for _, field := range strings.Split(answer, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, "Invalid input format. Please enter comma-separated numbers, 'new', or press Enter.", nil
		}
		if n < 1 || n > len(known) {
			return nil, fmt.Sprintf("Invalid selection: %d. Please enter valid numbers.", n), nil
		}
		selected = append(selected, known[n-1])
	}

	if len(selected) == 0 {
		return nil, "No valid people selected from your input. Please re-enter your selection.", nil
	}
	return model.CanonicalPeople(selected), "", nil
}

func (p *Prompter) printMenu(known []string) error {
	lines := make([]string, 0, len(known)+4)
	lines = append(lines, TitleStyle.Render("Select People Involved in Splitting"))
	for i, person := range known {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, person))
	}
	lines = append(lines,
		InfoStyle.Render("Enter the numbers of people involved, separated by commas (e.g., 1,3,4)."),
		InfoStyle.Render("Press Enter without input to include ALL known people."),
		InfoStyle.Render("Type 'new' to manually enter names not on the list."),
	)
	return p.println(strings.Join(lines, "\n"))
}

func (p *Prompter) print(s string) error {
	if _, err := fmt.Fprint(p.writer, s); err != nil {
		return fmt.Errorf("failed to write prompt: %w", err)
	}
	return nil
}

func (p *Prompter) println(s string) error {
	if _, err := fmt.Fprintln(p.writer, s); err != nil {
		return fmt.Errorf("failed to write prompt: %w", err)
	}
	return nil
}

// IsInputClosed reports whether err means the input stream ended or was canceled.
func IsInputClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, ErrInputCancelled)
}
