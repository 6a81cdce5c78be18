package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/mongodb"
	"github.com/mamadbah2/proporco/internal/repository/sheets"
	"github.com/mamadbah2/proporco/internal/service/finance"
)

const dateLayout = "2006-01-02"

// ErrArchiveDisabled is returned by History when no report archive is configured.
var ErrArchiveDisabled = errors.New("report archive not configured")

// SnapshotLoader reads every record of an account.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, accountID string) (finance.Snapshot, error)
}

// Service exposes the financial and production reports and the weekly digest.
type Service struct {
	snapshots SnapshotLoader
	archive   mongodb.ReportArchive
	exporter  sheets.Exporter
	horizon   time.Duration
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithArchive persists every published digest.
func WithArchive(a mongodb.ReportArchive) Option {
	return func(s *Service) { s.archive = a }
}

// WithExporter appends every published digest to a spreadsheet.
func WithExporter(e sheets.Exporter) Option {
	return func(s *Service) { s.exporter = e }
}

// WithAlertHorizon sets how far ahead expiry and health alerts look.
func WithAlertHorizon(d time.Duration) Option {
	return func(s *Service) { s.horizon = d }
}

// WithLocation sets the timezone used for week boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a new reporting service instance.
func NewService(loader SnapshotLoader, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		snapshots: loader,
		horizon:   14 * 24 * time.Hour,
		location:  time.UTC,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Financial returns the farm summary and per-animal rows for the period.
func (s *Service) Financial(ctx context.Context, accountID string, period finance.Period) (finance.Report, error) {
	snap, err := s.snapshots.LoadSnapshot(ctx, accountID)
	if err != nil {
		return finance.Report{}, err
	}
	return finance.BuildReport(snap, period), nil
}

// Ranking returns the most profitable sold animals in the period.
func (s *Service) Ranking(ctx context.Context, accountID string, period finance.Period, limit int) ([]finance.AnimalFinancials, error) {
	snap, err := s.snapshots.LoadSnapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return finance.TopProfitable(finance.AllocateAnimals(snap.Within(period)), limit), nil
}

// Occupancy returns the current occupancy of every enclosure.
func (s *Service) Occupancy(ctx context.Context, accountID string) ([]finance.Occupancy, error) {
	snap, err := s.snapshots.LoadSnapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return finance.EnclosureOccupancy(snap), nil
}

// Production returns growth, readiness and inventory alerts as of now.
func (s *Service) Production(ctx context.Context, accountID string) (finance.Production, error) {
	snap, err := s.snapshots.LoadSnapshot(ctx, accountID)
	if err != nil {
		return finance.Production{}, err
	}
	return finance.BuildProduction(snap, s.now(), s.horizon), nil
}

// History lists archived digests for the account, newest first.
func (s *Service) History(ctx context.Context, accountID string, limit int64) ([]models.ReportArchive, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.RecentReports(ctx, accountID, limit)
}

// WeekToDate is the period from the most recent Monday at midnight until now.
func (s *Service) WeekToDate() finance.Period {
	now := s.now().In(s.location)
	offset := (int(now.Weekday()) + 6) % 7
	start := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, s.location)
	return finance.Period{From: start, To: now}
}

// LastSevenDays is the period covering the six previous days and today.
func (s *Service) LastSevenDays() finance.Period {
	now := s.now().In(s.location)
	start := time.Date(now.Year(), now.Month(), now.Day()-6, 0, 0, 0, 0, s.location)
	return finance.Period{From: start, To: now}
}

// Digest renders the financial report for a period as a WhatsApp message.
func (s *Service) Digest(ctx context.Context, accountID string, period finance.Period) (string, finance.Report, error) {
	snap, err := s.snapshots.LoadSnapshot(ctx, accountID)
	if err != nil {
		return "", finance.Report{}, fmt.Errorf("load digest data: %w", err)
	}
	report := finance.BuildReport(snap, period)
	alerts := finance.SupplyAlerts(snap, s.now(), s.horizon)
	return renderDigest(report, alerts), report, nil
}

// PublishWeekly builds the digest for the last seven days, archives and exports
// it when those sinks are configured, and returns the message text. Sink
// failures are logged and do not fail the digest.
func (s *Service) PublishWeekly(ctx context.Context, account models.Account) (string, error) {
	period := s.LastSevenDays()
	text, report, err := s.Digest(ctx, account.ID, period)
	if err != nil {
		return "", err
	}

	record := archiveRecord(account.ID, report, text, s.now())
	if s.archive != nil {
		if err := s.archive.SaveReport(ctx, record); err != nil {
			s.logger.Warn("archive weekly report failed", zap.String("account_id", account.ID), zap.Error(err))
		}
	}
	if s.exporter != nil {
		if err := s.exporter.AppendReport(ctx, record); err != nil {
			s.logger.Warn("export weekly report failed", zap.String("account_id", account.ID), zap.Error(err))
		}
	}
	return text, nil
}

func archiveRecord(accountID string, r finance.Report, digest string, now time.Time) models.ReportArchive {
	sum := r.Summary
	return models.ReportArchive{
		AccountID:     accountID,
		PeriodStart:   r.Period.From,
		PeriodEnd:     r.Period.To,
		ActiveAnimals: sum.ActiveAnimals,
		SoldAnimals:   sum.SoldAnimals,
		Revenue:       round(sum.TotalRevenue),
		FeedCost:      round(sum.FeedCost),
		HealthCost:    round(sum.HealthCost),
		Operational:   round(sum.OperationalCost),
		Commission:    round(sum.CommissionCost),
		TotalCost:     round(sum.TotalCost),
		GrossProfit:   round(sum.GrossProfit),
		Margin:        round(sum.Margin),
		Digest:        digest,
		CreatedAt:     now,
	}
}

func renderDigest(r finance.Report, alerts []finance.SupplyAlert) string {
	sum := r.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "Resumo (%s a %s)\n", r.Period.From.Format(dateLayout), r.Period.To.Format(dateLayout))
	fmt.Fprintf(&b, "Animais: %d ativos, %d vendidos, %d mortos\n", sum.ActiveAnimals, sum.SoldAnimals, sum.DeadAnimals)
	fmt.Fprintf(&b, "Receita: %s\n", brl(sum.TotalRevenue))
	fmt.Fprintf(&b, "Custos: %s (compra %s, ração %s, sanidade %s, operacional %s, comissão %s)\n",
		brl(sum.TotalCost), brl(sum.PurchaseCost), brl(sum.FeedCost), brl(sum.HealthCost), brl(sum.OperationalCost), brl(sum.CommissionCost))
	if sum.TotalRevenue > 0 {
		fmt.Fprintf(&b, "Lucro bruto: %s (margem %s%%)\n", brl(sum.GrossProfit), comma(sum.Margin))
	} else {
		fmt.Fprintf(&b, "Lucro bruto: %s\n", brl(sum.GrossProfit))
	}

	var crowded []string
	for _, o := range r.Occupancy {
		if o.AtRisk {
			crowded = append(crowded, fmt.Sprintf("%s %s%%", o.Name, comma(o.Percent)))
		}
	}
	if len(crowded) > 0 {
		fmt.Fprintf(&b, "Baias acima de %.0f%%: %s\n", finance.AtRiskOccupancy, strings.Join(crowded, ", "))
	}

	var low []string
	for _, a := range alerts {
		if a.LowStock {
			low = append(low, a.Name)
		}
	}
	if len(low) > 0 {
		fmt.Fprintf(&b, "Estoque baixo: %s\n", strings.Join(low, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// comma formats v with two decimals and a decimal comma.
func comma(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1)
}

func brl(v float64) string {
	return "R$ " + comma(v)
}
