package sheets

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/settle-up/internal/common"
	"github.com/Veraticus/settle-up/internal/ledger"
	"github.com/Veraticus/settle-up/internal/model"
	"github.com/Veraticus/settle-up/internal/service"
)

var generated = time.Date(2025, time.July, 4, 10, 0, 0, 0, time.Local)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ClientID = "client"
	cfg.ClientSecret = "secret"
	cfg.RefreshToken = "token"
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func testReport(t *testing.T) *service.Report {
	t.Helper()

	var expenses []model.Expense
	for i, row := range []struct {
		desc   string
		amount float64
		payer  string
	}{
		{"Groceries", 60, "Alice"},
		{"Fuel", 45, "Bob"},
		{"Cabin", 300, "Carol"},
	} {
		exp, err := model.NewExpense(i+1, row.desc, row.amount, row.payer, []string{"Alice", "Bob", "Carol"}, generated)
		require.NoError(t, err)
		expenses = append(expenses, exp)
	}
	payment, err := model.NewPayment(1, "Alice", "Carol", 50, "", generated)
	require.NoError(t, err)
	payments := []model.Payment{payment}

	people := ledger.KnownPeople(nil, expenses, payments)
	balances := ledger.ComputeBalances(expenses, payments)
	settlements, err := ledger.Simplify(balances)
	require.NoError(t, err)

	return &service.Report{
		GeneratedAt: generated,
		People:      people,
		Expenses:    expenses,
		Payments:    payments,
		Balances:    balances,
		Settlements: settlements,
		Summary:     ledger.Summarize(people, expenses, payments),
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid oauth config", mutate: func(*Config) {}},
		{
			name: "valid service account config",
			mutate: func(c *Config) {
				c.ClientID, c.ClientSecret, c.RefreshToken = "", "", ""
				c.ServiceAccountPath = "/path/to/key.json"
			},
		},
		{
			name:    "missing auth",
			mutate:  func(c *Config) { c.RefreshToken = "" },
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name:    "multiple auth methods",
			mutate:  func(c *Config) { c.ServiceAccountPath = "/path/to/key.json" },
			wantErr: true,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name:    "invalid batch size",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: true,
			errMsg:  "batch size must be positive",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.RetryAttempts = -1 },
			wantErr: true,
			errMsg:  "retry attempts cannot be negative",
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.RetryDelay = -time.Second },
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildTabData(t *testing.T) {
	data := BuildTabData(testReport(t))

	assert.Equal(t, "2025-07-04 10:00:00", data.GeneratedAt)
	assert.Equal(t, "405", data.TotalExpenses.String())
	assert.Equal(t, "50", data.TotalPayments.String())
	require.Len(t, data.Expenses, 3)
	assert.Equal(t, "Alice, Bob, Carol", data.Expenses[0].Involved)
	assert.Equal(t, "20", data.Expenses[0].Split.String())

	require.Len(t, data.Balances, 3)
	assert.Equal(t, "Alice", data.Balances[0].Name)
	// Alice: +60 -135 +50 = -25; Bob: +45 -135 = -90; Carol: +300 -135 -50 = 115
	assert.Equal(t, "-25", data.Balances[0].Balance.String())
	assert.Equal(t, "-90", data.Balances[1].Balance.String())
	assert.Equal(t, "115", data.Balances[2].Balance.String())

	require.Len(t, data.Settlements, 2)
	assert.Equal(t, SettlementRow{From: "Bob", To: "Carol", Amount: data.Settlements[0].Amount}, data.Settlements[0])
	assert.Equal(t, "90", data.Settlements[0].Amount.String())
	assert.Equal(t, "Alice", data.Settlements[1].From)
	assert.Equal(t, "25", data.Settlements[1].Amount.String())
}

func TestTabData_Values(t *testing.T) {
	data := BuildTabData(testReport(t))

	for _, tab := range Tabs {
		values, err := data.Values(tab)
		require.NoError(t, err, tab)
		assert.NotEmpty(t, values, tab)
	}

	settlements, err := data.Values(TabSettlements)
	require.NoError(t, err)
	assert.Equal(t, []any{"From", "To", "Amount"}, settlements[0])
	assert.Equal(t, []any{"Bob", "Carol", 90.0}, settlements[1])

	_, err = data.Values("Nope")
	assert.Error(t, err)
}

func TestWriter_CreatesSpreadsheet(t *testing.T) {
	api := NewMockAPI()
	w := NewWriterWithAPI(api, testConfig(), testLogger())

	var progress [][2]int
	w.OnProgress(func(done, total int) { progress = append(progress, [2]int{done, total}) })

	require.NoError(t, w.Render(context.Background(), testReport(t)))

	require.Equal(t, 1, api.CallCount("Create"))
	id := "sheet-1"
	assert.Equal(t, DefaultSpreadsheetName, api.Spreadsheets[id].Properties.Title)

	expenses := api.Rows(id, TabExpenses)
	require.Len(t, expenses, 4)
	assert.Equal(t, "Cabin", expenses[3][2])

	payments := api.Rows(id, TabPayments)
	require.Len(t, payments, 2)
	assert.Equal(t, model.DefaultPaymentDescription, payments[1][2])

	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.Equal(t, last[1], last[0])
	assert.Equal(t, [2]int{0, last[1]}, progress[0])

	assert.NotEmpty(t, api.Requests, "formatting requests")
}

func TestWriter_ReusesSpreadsheetAndAddsMissingTabs(t *testing.T) {
	api := NewMockAPI()
	api.Spreadsheets["existing"] = &sheets.Spreadsheet{
		SpreadsheetId: "existing",
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: TabSummary, SheetId: 0}},
		},
	}

	cfg := testConfig()
	cfg.SpreadsheetID = "existing"
	cfg.EnableFormatting = false
	w := NewWriterWithAPI(api, cfg, testLogger())

	require.NoError(t, w.Render(context.Background(), testReport(t)))
	assert.Zero(t, api.CallCount("Create"))
	assert.Len(t, api.Spreadsheets["existing"].Sheets, len(Tabs))

	var added []string
	for _, r := range api.Requests {
		if r.AddSheet != nil {
			added = append(added, r.AddSheet.Properties.Title)
		}
	}
	assert.Equal(t, []string{TabBalances, TabSettlements, TabExpenses, TabPayments}, added)

	// A second export replaces rather than appends.
	require.NoError(t, w.Render(context.Background(), testReport(t)))
	assert.Len(t, api.Rows("existing", TabExpenses), 4)
}

func TestWriter_SmallBatches(t *testing.T) {
	api := NewMockAPI()
	cfg := testConfig()
	cfg.BatchSize = 2
	cfg.EnableFormatting = false
	w := NewWriterWithAPI(api, cfg, testLogger())

	require.NoError(t, w.Render(context.Background(), testReport(t)))

	assert.Len(t, api.Rows("sheet-1", TabExpenses), 4)
	assert.Len(t, api.Rows("sheet-1", TabSummary), 9)
	// Summary 9 rows -> 5 batches, Balances 4 -> 2, Settlements 3 -> 2, Expenses 4 -> 2, Payments 2 -> 1
	assert.Equal(t, 12, api.CallCount("Update"))
}

func TestWriter_RetriesServerErrors(t *testing.T) {
	api := NewMockAPI()
	api.FailNext("Update", &googleapi.Error{Code: http.StatusServiceUnavailable})
	api.FailNext("Update", &googleapi.Error{Code: http.StatusInternalServerError})

	cfg := testConfig()
	cfg.EnableFormatting = false
	w := NewWriterWithAPI(api, cfg, testLogger())

	require.NoError(t, w.Render(context.Background(), testReport(t)))
	assert.Len(t, api.Rows("sheet-1", TabSummary), 9)
}

func TestWriter_DoesNotRetryClientErrors(t *testing.T) {
	api := NewMockAPI()
	api.FailNext("Update", &googleapi.Error{Code: http.StatusForbidden, Message: "forbidden"})

	cfg := testConfig()
	cfg.EnableFormatting = false
	w := NewWriterWithAPI(api, cfg, testLogger())

	err := w.Render(context.Background(), testReport(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExportFailed)
	assert.Equal(t, 1, api.CallCount("Update"))
}

func TestWriter_FormattingFailureIsNotFatal(t *testing.T) {
	api := NewMockAPI()
	for range 3 {
		api.FailNext("BatchUpdate", &googleapi.Error{Code: http.StatusInternalServerError})
	}

	w := NewWriterWithAPI(api, testConfig(), testLogger())
	assert.NoError(t, w.Render(context.Background(), testReport(t)))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	rateLimited := classify(&googleapi.Error{Code: http.StatusTooManyRequests})
	assert.ErrorIs(t, rateLimited, common.ErrRateLimit)
	assert.True(t, common.IsRetryable(rateLimited))

	assert.True(t, common.IsRetryable(classify(&googleapi.Error{Code: http.StatusBadGateway})))
	assert.False(t, common.IsRetryable(classify(&googleapi.Error{Code: http.StatusNotFound})))

	plain := errors.New("network down")
	assert.Equal(t, plain, classify(plain))
}

func TestTokenRoundTrip(t *testing.T) {
	path := t.TempDir() + "/nested/token.json"
	require.NoError(t, SaveToken(path, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = LoadToken(path + ".missing")
	assert.Error(t, err)
}

func TestWriter_RefusesReportWithoutSettlements(t *testing.T) {
	api := NewMockAPI()
	report := testReport(t)
	report.Settlements = nil
	report.SettlementErr = ledger.ErrUnbalanced

	w := NewWriterWithAPI(api, testConfig(), testLogger())
	require.ErrorIs(t, w.Render(context.Background(), report), ledger.ErrUnbalanced)
	assert.Zero(t, api.CallCount("Create"))
}
