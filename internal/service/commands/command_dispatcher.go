package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/service/finance"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const dateFormat = "2006-01-02"

// Usage lists the accepted commands with an example each.
const Usage = "Comandos: /peso <brinco> <kg>, /custo <valor> <descrição>, /resumo, /estoque."

// Livestock is the subset of the livestock service the worker commands write through.
type Livestock interface {
	FindAnimalByIdentifier(ctx context.Context, accountID, identifier string) (models.Animal, error)
	RecordWeighing(ctx context.Context, accountID string, in models.WeighingInput) (models.WeighingRecord, models.Changes, error)
	CreateCost(ctx context.Context, accountID string, in models.CostInput) (models.Cost, models.Changes, error)
	LowStockSupplies(ctx context.Context, accountID string) ([]models.Supply, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	WeekToDate() finance.Period
	Digest(ctx context.Context, accountID string, period finance.Period) (string, finance.Report, error)
}

// Dispatcher executes parsed commands on behalf of an account.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, account models.Account) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	livestock Livestock
	reporting ReportingAdapter
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(livestock Livestock, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		livestock: livestock,
		reporting: reporting,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs the command and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, account models.Account) (string, error) {
	now := s.now().UTC()

	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("account_id", account.ID), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandWeigh:
		tag, weight, err := parseWeigh(cmd)
		if err != nil {
			return "", err
		}
		animal, err := s.livestock.FindAnimalByIdentifier(ctx, account.ID, tag)
		if err != nil {
			return "", err
		}
		record, changes, err := s.livestock.RecordWeighing(ctx, account.ID, models.WeighingInput{
			AnimalID: animal.ID,
			Date:     now,
			Weight:   weight,
			Notes:    "whatsapp",
		})
		if err != nil {
			return "", err
		}
		message := fmt.Sprintf("Pesagem registrada: %s com %s kg em %s.", animal.Identifier, formatNumber(record.Weight), record.Date.Format(dateFormat))
		if len(changes.Animals) == 0 {
			message += " Peso atual mantido: existe pesagem mais recente."
		}
		return message, nil
	case models.CommandCost:
		amount, description, err := parseCost(cmd)
		if err != nil {
			return "", err
		}
		cost, _, err := s.livestock.CreateCost(ctx, account.ID, models.CostInput{
			Category:    models.CostOperational,
			Description: description,
			Amount:      amount,
			Date:        now,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Custo registrado: %s R$ %s em %s.", cost.Description, formatNumber(cost.Amount), cost.Date.Format(dateFormat)), nil
	case models.CommandSummary:
		if s.reporting == nil {
			return "", ErrUnsupportedCommand
		}
		text, _, err := s.reporting.Digest(ctx, account.ID, s.reporting.WeekToDate())
		if err != nil {
			return "", err
		}
		return text, nil
	case models.CommandStock:
		supplies, err := s.livestock.LowStockSupplies(ctx, account.ID)
		if err != nil {
			return "", err
		}
		if len(supplies) == 0 {
			return "Nenhum insumo abaixo do estoque mínimo.", nil
		}
		lines := make([]string, 0, len(supplies)+1)
		lines = append(lines, "Insumos abaixo do estoque mínimo:")
		for _, sup := range supplies {
			lines = append(lines, fmt.Sprintf("- %s: %s %s (mínimo %s)", sup.Name, formatNumber(sup.Stock), sup.Unit, formatNumber(*sup.MinimumStock)))
		}
		return strings.Join(lines, "\n"), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func parseWeigh(cmd models.Command) (string, float64, error) {
	if len(cmd.Args) < 2 {
		return "", 0, ErrInvalidArguments
	}
	weight, err := parseNumber(cmd.Args[1])
	if err != nil || weight <= 0 {
		return "", 0, ErrInvalidArguments
	}
	return cmd.Args[0], weight, nil
}

func parseCost(cmd models.Command) (float64, string, error) {
	if len(cmd.Args) < 2 {
		return 0, "", ErrInvalidArguments
	}
	amount, err := parseNumber(cmd.Args[0])
	if err != nil || amount < 0 {
		return 0, "", ErrInvalidArguments
	}
	return amount, strings.Join(cmd.Args[1:], " "), nil
}

// parseNumber accepts both "84.5" and "84,5". NaN and the infinities are
// rejected.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrInvalidArguments
	}
	return v, nil
}

func formatNumber(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}
