package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/sheets/v4"
)

// MockAPI is an in-memory API implementation for testing.
type MockAPI struct {
	// Errors returned by the next calls, consumed in order, per method name.
	Errors map[string][]error

	Spreadsheets map[string]*sheets.Spreadsheet
	Values       map[string][][]any // keyed by "spreadsheetID/tab"
	Requests     []*sheets.Request
	Calls        []string

	nextID int
	mu     sync.Mutex
}

// NewMockAPI creates an empty mock.
func NewMockAPI() *MockAPI {
	return &MockAPI{
		Errors:       make(map[string][]error),
		Spreadsheets: make(map[string]*sheets.Spreadsheet),
		Values:       make(map[string][][]any),
	}
}

// FailNext queues err for the next call to method.
func (m *MockAPI) FailNext(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[method] = append(m.Errors[method], err)
}

func (m *MockAPI) record(method string) error {
	m.Calls = append(m.Calls, method)
	if errs := m.Errors[method]; len(errs) > 0 {
		m.Errors[method] = errs[1:]
		return errs[0]
	}
	return nil
}

// Get implements API.
func (m *MockAPI) Get(_ context.Context, spreadsheetID string) (*sheets.Spreadsheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Get"); err != nil {
		return nil, err
	}
	s, ok := m.Spreadsheets[spreadsheetID]
	if !ok {
		return nil, fmt.Errorf("spreadsheet %s not found", spreadsheetID)
	}
	return s, nil
}

// Create implements API.
func (m *MockAPI) Create(_ context.Context, spreadsheet *sheets.Spreadsheet) (*sheets.Spreadsheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Create"); err != nil {
		return nil, err
	}

	m.nextID++
	id := fmt.Sprintf("sheet-%d", m.nextID)
	created := &sheets.Spreadsheet{
		SpreadsheetId:  id,
		SpreadsheetUrl: "https://docs.google.com/spreadsheets/d/" + id,
		Properties:     spreadsheet.Properties,
	}
	for i, s := range spreadsheet.Sheets {
		created.Sheets = append(created.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: s.Properties.Title, SheetId: int64(i)},
		})
	}
	m.Spreadsheets[id] = created
	return created, nil
}

// Clear implements API.
func (m *MockAPI) Clear(_ context.Context, spreadsheetID, rng string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Clear"); err != nil {
		return err
	}
	delete(m.Values, spreadsheetID+"/"+tabOf(rng))
	return nil
}

// Update implements API.
func (m *MockAPI) Update(_ context.Context, spreadsheetID, rng string, values [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Update"); err != nil {
		return err
	}
	key := spreadsheetID + "/" + tabOf(rng)
	m.Values[key] = append(m.Values[key], values...)
	return nil
}

// BatchUpdate implements API. AddSheet requests create tabs.
func (m *MockAPI) BatchUpdate(_ context.Context, spreadsheetID string, requests []*sheets.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("BatchUpdate"); err != nil {
		return err
	}
	m.Requests = append(m.Requests, requests...)

	s, ok := m.Spreadsheets[spreadsheetID]
	if !ok {
		return fmt.Errorf("spreadsheet %s not found", spreadsheetID)
	}
	for _, r := range requests {
		if r.AddSheet != nil {
			s.Sheets = append(s.Sheets, &sheets.Sheet{
				Properties: &sheets.SheetProperties{
					Title:   r.AddSheet.Properties.Title,
					SheetId: int64(100 + len(s.Sheets)),
				},
			})
		}
	}
	return nil
}

// Rows returns the values written to a tab.
func (m *MockAPI) Rows(spreadsheetID, tab string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Values[spreadsheetID+"/"+tab]
}

// CallCount returns how many times method was called.
func (m *MockAPI) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// tabOf extracts the tab name from an A1 range like 'Tab'!A1.
func tabOf(rng string) string {
	tab, _, _ := strings.Cut(rng, "!")
	return strings.Trim(tab, "'")
}
