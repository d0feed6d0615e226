package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/settle-up/internal/cli"
	"github.com/Veraticus/settle-up/internal/common"
	"github.com/Veraticus/settle-up/internal/config"
	"github.com/Veraticus/settle-up/internal/engine"
	"github.com/Veraticus/settle-up/internal/report"
	"github.com/Veraticus/settle-up/internal/sheets"
)

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a summary report",
		Long: `Export a summary of expenses, payments, balances and suggested settlements
as an HTML document or to a Google Sheets spreadsheet.`,
	}

	cmd.AddCommand(exportHTMLCmd(a))
	cmd.AddCommand(exportSheetsCmd(a))

	return cmd
}

func exportHTMLCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "html",
		Short: "Write the summary report as an HTML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			out, _ := cmd.Flags().GetString("out")
			title, _ := cmd.Flags().GetString("title")
			if out == "" {
				out = filepath.Join(a.cfg.Report.Dir, reportFileName(time.Now()))
			}
			out = config.ExpandPath(out)

			if err := os.MkdirAll(filepath.Dir(out), 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}

			f, err := os.Create(out) // #nosec G304
			if err != nil {
				return fmt.Errorf("failed to create report file: %w", err)
			}

			renderer, err := report.NewHTML(f, title, a.cfg.Currency)
			if err != nil {
				_ = f.Close()
				return err
			}

			err = a.withLedger(ctx, func(l *engine.Ledger) error {
				return l.Export(ctx, renderer)
			})
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("failed to close report file: %w", cerr)
			}
			if err != nil {
				_ = os.Remove(out)
				return fmt.Errorf("%w: %w", common.ErrExportFailed, err)
			}

			slog.Info("Exported HTML report", "path", out)
			_, err = fmt.Fprintln(a.out, cli.FormatSuccess("Report written to "+out))
			return err
		},
	}

	cmd.Flags().String("out", "", "output file (default: summary_report_<timestamp>.html in report.dir)")
	cmd.Flags().String("title", "", "report title")

	return cmd
}

func reportFileName(now time.Time) string {
	return "summary_report_" + now.Format("20060102_150405") + ".html"
}

func exportSheetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write the summary report to Google Sheets",
		Long: `Write the summary, balances, settlements, expenses and payments to tabs of a
Google Sheets spreadsheet. Authenticate first with "settle auth sheets" or
configure a service account.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if id, _ := cmd.Flags().GetString("spreadsheet-id"); id != "" {
				a.v.Set("sheets.spreadsheet_id", id)
			}
			a.loadStoredRefreshToken()

			sheetsCfg, err := config.LoadSheetsConfig(a.v)
			if err != nil {
				return common.NewUserError(`Google Sheets is not configured; run "settle auth sheets" first`, err)
			}

			writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
			if err != nil {
				return err
			}
			if quiet, _ := cmd.Flags().GetBool("no-progress"); !quiet {
				writer.OnProgress(cli.NewProgressReporter(a.errOut, "Exporting").Report)
			}

			if err := a.withLedger(ctx, func(l *engine.Ledger) error {
				return l.Export(ctx, writer)
			}); err != nil {
				return err
			}

			_, err = fmt.Fprintln(a.out, cli.FormatSuccess("Report exported to Google Sheets"))
			return err
		},
	}

	cmd.Flags().String("spreadsheet-id", "", "spreadsheet to update (default: sheets.spreadsheet_id, or create a new one)")
	cmd.Flags().Bool("no-progress", false, "do not draw a progress bar")

	return cmd
}

// loadStoredRefreshToken fills sheets.refresh_token from the token saved by
// "settle auth sheets" when no refresh token is configured.
func (a *app) loadStoredRefreshToken() {
	if a.v.GetString("sheets.refresh_token") != "" || os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN") != "" {
		return
	}

	tokenFile := config.SheetsTokenFile(a.v)
	token, err := sheets.LoadToken(tokenFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to read stored Google token", "file", tokenFile, "error", err)
		}
		return
	}
	if token.RefreshToken != "" {
		a.v.Set("sheets.refresh_token", token.RefreshToken)
	}
}
