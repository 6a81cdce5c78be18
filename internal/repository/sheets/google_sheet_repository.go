package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/proporco/internal/config"
	"github.com/mamadbah2/proporco/internal/domain/models"
)

const (
	dateLayout   = "2006-01-02"
	reportsRange = "Relatorios!A:M"
)

// Exporter appends weekly digests to a shared spreadsheet.
type Exporter interface {
	AppendReport(ctx context.Context, report models.ReportArchive) error
}

// GoogleSheetRepository writes rows through the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed exporter.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
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

// AppendReport writes one row per digest to the reports tab.
func (r *GoogleSheetRepository) AppendReport(ctx context.Context, report models.ReportArchive) error {
	return r.WriteRow(ctx, reportsRange, ReportRow(report))
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

// ReportRow lays out a digest in the column order of the reports tab.
func ReportRow(report models.ReportArchive) []interface{} {
	return []interface{}{
		report.AccountID,
		report.PeriodStart.Format(dateLayout),
		report.PeriodEnd.Format(dateLayout),
		report.ActiveAnimals,
		report.SoldAnimals,
		report.Revenue,
		report.FeedCost,
		report.HealthCost,
		report.Operational,
		report.Commission,
		report.TotalCost,
		report.GrossProfit,
		report.Margin,
	}
}
