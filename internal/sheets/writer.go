package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/settle-up/internal/common"
	"github.com/Veraticus/settle-up/internal/service"
)

var _ service.ReportRenderer = (*Writer)(nil)

// API is the subset of the Sheets API used by the writer.
type API interface {
	Get(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error)
	Create(ctx context.Context, spreadsheet *sheets.Spreadsheet) (*sheets.Spreadsheet, error)
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error
}

// ProgressFunc is called after each batch with the rows written so far.
type ProgressFunc func(done, total int)

// Writer renders reports into a Google spreadsheet, one tab per section.
type Writer struct {
	api        API
	logger     *slog.Logger
	onProgress ProgressFunc
	config     Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewWriterWithAPI(&serviceAPI{srv: srv}, config, logger), nil
}

// NewWriterWithAPI creates a writer on top of an existing API implementation.
func NewWriterWithAPI(api API, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Writer{api: api, config: config, logger: logger}
}

// OnProgress registers a progress callback.
func (w *Writer) OnProgress(fn ProgressFunc) {
	w.onProgress = fn
}

// Render writes every tab of the report, replacing previous contents.
func (w *Writer) Render(ctx context.Context, report *service.Report) error {
	if report.SettlementErr != nil {
		return report.SettlementErr
	}

	w.logger.Info("starting sheets export",
		"expenses", len(report.Expenses),
		"payments", len(report.Payments),
		"settlements", len(report.Settlements))

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheet *sheets.Spreadsheet
	err := common.WithRetry(ctx, func() error {
		var getErr error
		spreadsheet, getErr = w.getOrCreateSpreadsheet(ctx)
		return classify(getErr)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("%w: failed to get spreadsheet: %w", common.ErrExportFailed, err)
	}
	spreadsheetID := spreadsheet.SpreadsheetId

	sheetIDs, err := w.ensureTabs(ctx, spreadsheet, retryOpts)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrExportFailed, err)
	}

	data := BuildTabData(report)
	tabValues := make(map[string][][]any, len(Tabs))
	total := 0
	for _, tab := range Tabs {
		values, err := data.Values(tab)
		if err != nil {
			return err
		}
		tabValues[tab] = values
		total += len(values)
	}

	done := 0
	w.progress(done, total)
	for _, tab := range Tabs {
		values := tabValues[tab]

		if err := common.WithRetry(ctx, func() error {
			return classify(w.api.Clear(ctx, spreadsheetID, quoteTab(tab)))
		}, retryOpts); err != nil {
			return fmt.Errorf("%w: failed to clear %s: %w", common.ErrExportFailed, tab, err)
		}

		for start := 0; start < len(values); start += w.config.BatchSize {
			end := min(start+w.config.BatchSize, len(values))
			batch := values[start:end]
			rng := fmt.Sprintf("%s!A%d", quoteTab(tab), start+1)

			if err := common.WithRetry(ctx, func() error {
				return classify(w.api.Update(ctx, spreadsheetID, rng, batch))
			}, retryOpts); err != nil {
				return fmt.Errorf("%w: failed to write %s rows %d-%d: %w", common.ErrExportFailed, tab, start+1, end, err)
			}

			done += len(batch)
			w.progress(done, total)
			w.logger.Debug("wrote batch", "tab", tab, "start_row", start+1, "rows", len(batch))
		}
	}

	if w.config.EnableFormatting {
		err := common.WithRetry(ctx, func() error {
			return classify(w.api.BatchUpdate(ctx, spreadsheetID, formattingRequests(sheetIDs, tabValues, w.config.Currency)))
		}, retryOpts)
		if err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheetID,
		"url", spreadsheet.SpreadsheetUrl,
		"rows_written", done)

	return nil
}

func (w *Writer) progress(done, total int) {
	if w.onProgress != nil {
		w.onProgress(done, total)
	}
}

// getOrCreateSpreadsheet gets the configured spreadsheet or creates a new one
// with every tab.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (*sheets.Spreadsheet, error) {
	if w.config.SpreadsheetID != "" {
		existing, err := w.api.Get(ctx, w.config.SpreadsheetID)
		if err != nil {
			return nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return existing, nil
	}

	name := w.config.SpreadsheetName
	if name == "" {
		name = DefaultSpreadsheetName
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    name,
			TimeZone: w.config.TimeZone,
		},
	}
	for _, tab := range Tabs {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: tab},
		})
	}

	created, err := w.api.Create(ctx, spreadsheet)
	if err != nil {
		return nil, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Later exports reuse this spreadsheet.
	w.config.SpreadsheetID = created.SpreadsheetId
	return created, nil
}

// ensureTabs adds any missing tab and returns the sheet id of every tab.
func (w *Writer) ensureTabs(ctx context.Context, spreadsheet *sheets.Spreadsheet, retryOpts common.RetryOptions) (map[string]int64, error) {
	ids := sheetIDs(spreadsheet)

	var requests []*sheets.Request
	for _, tab := range Tabs {
		if _, ok := ids[tab]; ok {
			continue
		}
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		})
	}
	if len(requests) == 0 {
		return ids, nil
	}

	err := common.WithRetry(ctx, func() error {
		return classify(w.api.BatchUpdate(ctx, spreadsheet.SpreadsheetId, requests))
	}, retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to add tabs: %w", err)
	}

	var refreshed *sheets.Spreadsheet
	err = common.WithRetry(ctx, func() error {
		var getErr error
		refreshed, getErr = w.api.Get(ctx, spreadsheet.SpreadsheetId)
		return classify(getErr)
	}, retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to reload spreadsheet: %w", err)
	}

	return sheetIDs(refreshed), nil
}

func sheetIDs(spreadsheet *sheets.Spreadsheet) map[string]int64 {
	ids := make(map[string]int64, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids
}

func quoteTab(tab string) string {
	return "'" + tab + "'"
}

// classify marks API errors as retryable or not for common.WithRetry.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
		case apiErr.Code >= http.StatusInternalServerError:
			return &common.RetryableError{Err: err, Retryable: true}
		default:
			return &common.RetryableError{Err: err, Retryable: false}
		}
	}
	return err
}

// formattingRequests bolds header rows, formats amount columns and freezes
// the header row of every tab.
func formattingRequests(ids map[string]int64, tabValues map[string][][]any, currency string) []*sheets.Request {
	if currency == "" {
		currency = "$"
	}
	pattern := fmt.Sprintf(`"%s"#,##0.00;-"%s"#,##0.00`, currency, currency)

	var requests []*sheets.Request
	for _, tab := range Tabs {
		id, ok := ids[tab]
		if !ok {
			continue
		}
		rows := int64(len(tabValues[tab]))

		headerRow := int64(0)
		if tab == TabSummary {
			headerRow = 5
		}

		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:       id,
						StartRowIndex: headerRow,
						EndRowIndex:   headerRow + 1,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        id,
						GridProperties: &sheets.GridProperties{FrozenRowCount: headerRow + 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		)

		for _, col := range currencyColumns[tab] {
			requests = append(requests, &sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          id,
						StartRowIndex:    0,
						EndRowIndex:      rows,
						StartColumnIndex: col,
						EndColumnIndex:   col + 1,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							NumberFormat: &sheets.NumberFormat{
								Type:    "CURRENCY",
								Pattern: pattern,
							},
						},
					},
					Fields: "userEnteredFormat.numberFormat",
				},
			})
		}

		requests = append(requests, &sheets.Request{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    id,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   7,
				},
			},
		})
	}
	return requests
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// serviceAPI adapts *sheets.Service to API.
type serviceAPI struct {
	srv *sheets.Service
}

func (a *serviceAPI) Get(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error) {
	return a.srv.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
}

func (a *serviceAPI) Create(ctx context.Context, spreadsheet *sheets.Spreadsheet) (*sheets.Spreadsheet, error) {
	return a.srv.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
}

func (a *serviceAPI) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := a.srv.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (a *serviceAPI) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := a.srv.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

func (a *serviceAPI) BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error {
	_, err := a.srv.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
