package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/settle-up/internal/sheets"
)

// LoadSheetsConfig builds the Google Sheets configuration. Values from v
// (config file or SETTLE_ env vars) win over GOOGLE_SHEETS_* variables, which
// win over defaults.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if c := v.GetString("currency"); c != "" {
		config.Currency = c
	}

	fields := []struct {
		dst *string
		key string
		env string
	}{
		{&config.ServiceAccountPath, "sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"},
		{&config.ClientID, "sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID"},
		{&config.ClientSecret, "sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET"},
		{&config.RefreshToken, "sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN"},
		{&config.SpreadsheetID, "sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID"},
		{&config.SpreadsheetName, "sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME"},
		{&config.TimeZone, "sheets.time_zone", "GOOGLE_SHEETS_TIME_ZONE"},
	}
	for _, f := range fields {
		if val := v.GetString(f.key); val != "" {
			*f.dst = val
		} else if val := os.Getenv(f.env); val != "" {
			*f.dst = val
		}
	}
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if v.IsSet("sheets.batch_size") {
		config.BatchSize = v.GetInt("sheets.batch_size")
	}
	if v.IsSet("sheets.enable_formatting") {
		config.EnableFormatting = v.GetBool("sheets.enable_formatting")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SheetsTokenFile is where `settle auth sheets` stores the OAuth token.
func SheetsTokenFile(v *viper.Viper) string {
	if p := v.GetString("sheets.token_file"); p != "" {
		return ExpandPath(p)
	}
	return ExpandPath("$HOME/.config/settle/sheets-token.json")
}
