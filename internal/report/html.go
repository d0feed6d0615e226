package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/settle-up/internal/ledger"
	"github.com/Veraticus/settle-up/internal/model"
	"github.com/Veraticus/settle-up/internal/service"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	htmlDateLayout      = "Jan 02, 2006, 03:04 PM"
	htmlGeneratedLayout = "January 02, 2006"
)

var _ service.ReportRenderer = (*HTML)(nil)

// HTML renders a self-contained HTML summary document.
type HTML struct {
	w        io.Writer
	tmpl     *template.Template
	title    string
	currency string
}

// NewHTML creates an HTML renderer writing to w.
func NewHTML(w io.Writer, title, currency string) (*HTML, error) {
	if title == "" {
		title = "Shared Expense Report"
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	h := &HTML{w: w, title: title, currency: currency}

	tmpl, err := template.New("summary.html.tmpl").
		Funcs(template.FuncMap{
			"money": h.money,
			"sign":  sign,
			"date":  formatDate,
			"join":  func(names []string) string { return strings.Join(names, ", ") },
		}).
		ParseFS(templateFS, "templates/summary.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	h.tmpl = tmpl

	return h, nil
}

type htmlData struct {
	Title       string
	Generated   string
	People      []string
	Expenses    []model.Expense
	Payments    []model.Payment
	Settlements []model.Settlement
	Summary     ledger.Summary
}

// Render executes the template into a buffer, then copies it to the writer so
// a failed render never leaves a partial document.
func (h *HTML) Render(ctx context.Context, report *service.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if report.SettlementErr != nil {
		return report.SettlementErr
	}

	data := htmlData{
		Title:       h.title,
		Generated:   report.GeneratedAt.Format(htmlGeneratedLayout),
		People:      report.People,
		Expenses:    report.Expenses,
		Payments:    report.Payments,
		Settlements: report.Settlements,
		Summary:     report.Summary,
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if _, err := buf.WriteTo(h.w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (h *HTML) money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-%s%.2f", h.currency, -v)
	}
	return fmt.Sprintf("%s%.2f", h.currency, v)
}

func sign(v float64) string {
	switch {
	case v > 0.005:
		return "positive"
	case v < -0.005:
		return "negative"
	default:
		return ""
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(htmlDateLayout)
}
