package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fleetdesk/apiserver/config"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputOption = "USER_ENTERED"
	maxRetries       = 4
	maxRetryInterval = 10 * time.Second
)

// SheetsStore is a RowStore backed by a Google Spreadsheet.
// One spreadsheet holds every resource as a tab.
type SheetsStore struct {
	service       *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64 // tab title -> sheetId, for dimension requests
}

// NewSheetsStore constructs a SheetsStore from config.
func NewSheetsStore(ctx context.Context, cfg config.SheetsConfig) (*SheetsStore, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &SheetsStore{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetIDs:      make(map[string]int64),
	}, nil
}

func (s *SheetsStore) Headers(ctx context.Context, resource string) ([]string, error) {
	var resp *sheets.ValueRange
	err := s.retry(ctx, func() error {
		var callErr error
		resp, callErr = s.service.Spreadsheets.Values.
			Get(s.spreadsheetID, fmt.Sprintf("%s!1:1", resource)).
			Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return nil, wrapNotFound(err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

func (s *SheetsStore) Rows(ctx context.Context, resource string) ([][]string, error) {
	var resp *sheets.ValueRange
	err := s.retry(ctx, func() error {
		var callErr error
		resp, callErr = s.service.Spreadsheets.Values.
			Get(s.spreadsheetID, resource).
			Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return nil, wrapNotFound(err)
	}
	if len(resp.Values) <= 1 {
		return nil, nil
	}
	rows := make([][]string, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		rows = append(rows, toStrings(raw))
	}
	return rows, nil
}

func (s *SheetsStore) Row(ctx context.Context, resource string, index int) ([]string, error) {
	if index < 1 {
		return nil, ErrNotFound
	}
	rows, err := s.Rows(ctx, resource)
	if err != nil {
		return nil, err
	}
	if index > len(rows) {
		return nil, ErrNotFound
	}
	return rows[index-1], nil
}

func (s *SheetsStore) Append(ctx context.Context, resource string, values []string) error {
	vr := &sheets.ValueRange{Values: [][]any{toAnys(values)}}
	return s.retry(ctx, func() error {
		_, err := s.service.Spreadsheets.Values.
			Append(s.spreadsheetID, resource, vr).
			ValueInputOption(valueInputOption).
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		return err
	})
}

func (s *SheetsStore) Update(ctx context.Context, resource string, index int, values []string) error {
	if index < 1 {
		return ErrNotFound
	}
	vr := &sheets.ValueRange{Values: [][]any{toAnys(values)}}
	return s.retry(ctx, func() error {
		_, err := s.service.Spreadsheets.Values.
			Update(s.spreadsheetID, fmt.Sprintf("%s!A%d", resource, index+1), vr).
			ValueInputOption(valueInputOption).
			Context(ctx).Do()
		return err
	})
}

func (s *SheetsStore) Insert(ctx context.Context, resource string, index int, values []string) error {
	if index < 1 {
		return ErrNotFound
	}
	sheetID, err := s.sheetID(ctx, resource)
	if err != nil {
		return err
	}

	// Data row index equals the 0-based physical row index (header is 0).
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			InsertDimension: &sheets.InsertDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(index),
					EndIndex:   int64(index + 1),
				},
				InheritFromBefore: true,
			},
		}},
	}
	if err := s.retry(ctx, func() error {
		_, callErr := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return callErr
	}); err != nil {
		return err
	}
	return s.Update(ctx, resource, index, values)
}

func (s *SheetsStore) Delete(ctx context.Context, resource string, index int) error {
	if index < 1 {
		return ErrNotFound
	}
	sheetID, err := s.sheetID(ctx, resource)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(index),
					EndIndex:   int64(index + 1),
				},
			},
		}},
	}
	return s.retry(ctx, func() error {
		_, callErr := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return callErr
	})
}

func (s *SheetsStore) EnsureResource(ctx context.Context, resource string, headers []string) error {
	if _, err := s.sheetID(ctx, resource); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: resource},
				},
			}},
		}
		if err := s.retry(ctx, func() error {
			_, callErr := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
			return callErr
		}); err != nil {
			return err
		}
		s.mu.Lock()
		delete(s.sheetIDs, resource)
		s.mu.Unlock()
	}

	existing, err := s.Headers(ctx, resource)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	vr := &sheets.ValueRange{Values: [][]any{toAnys(headers)}}
	return s.retry(ctx, func() error {
		_, callErr := s.service.Spreadsheets.Values.
			Update(s.spreadsheetID, fmt.Sprintf("%s!A1", resource), vr).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return callErr
	})
}

func (s *SheetsStore) sheetID(ctx context.Context, resource string) (int64, error) {
	s.mu.Lock()
	if id, ok := s.sheetIDs[resource]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	var spreadsheet *sheets.Spreadsheet
	err := s.retry(ctx, func() error {
		var callErr error
		spreadsheet, callErr = s.service.Spreadsheets.
			Get(s.spreadsheetID).Fields("sheets.properties").
			Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			s.sheetIDs[sheet.Properties.Title] = sheet.Properties.SheetId
		}
	}
	id, ok := s.sheetIDs[resource]
	if !ok {
		return 0, ErrNotFound
	}
	return id, nil
}

// retry runs call with capped exponential backoff, retrying only
// transient upstream failures (rate limits and 5xx).
func (s *SheetsStore) retry(ctx context.Context, call func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = maxRetryInterval

	return backoff.Retry(func() error {
		err := call()
		if err == nil {
			return nil
		}
		if isTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx))
}

func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 429 || apiErr.Code >= 500
}

func wrapNotFound(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 404 || apiErr.Code == 400) {
		// The API reports an unknown tab title as a 400 "Unable to parse range".
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func toStrings(raw []any) []string {
	values := make([]string, len(raw))
	for i, v := range raw {
		values[i] = fmt.Sprint(v)
	}
	return values
}

func toAnys(values []string) []any {
	raw := make([]any, len(values))
	for i, v := range values {
		raw[i] = v
	}
	return raw
}
