package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/alrehman/poultrybooks/internal/config"
)

// Repository defines the spreadsheet operations supported by the Google
// Sheets adapter.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	Overwrite(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// Overwrite clears the range and rewrites it with the provided rows. Used by
// the state mirror, which replaces whole tabs instead of appending.
func (r *GoogleSheetRepository) Overwrite(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	clearCall := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, sheetRange, &sheetsapi.ClearValuesRequest{}).Context(ctx)
	if _, err := clearCall.Do(); err != nil {
		return fmt.Errorf("clear range %s: %w", sheetRange, err)
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	updateCall := r.service.Spreadsheets.Values.Update(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		Context(ctx)

	if _, err := updateCall.Do(); err != nil {
		return fmt.Errorf("overwrite range %s: %w", sheetRange, err)
	}

	r.logger.Debug("range overwritten", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

