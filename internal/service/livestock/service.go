// Package livestock applies farm commands to the record store. Every mutation
// runs in one transaction and reports the entities it wrote, including the
// status and weight changes it makes to animals as a side effect.
package livestock

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/repository/store"
)

// Service owns the record store and the command validator.
type Service struct {
	store    *store.Store
	validate *validator.Validate
	metrics  *Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithMetrics records every reconciled operation on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a livestock service.
func NewService(st *store.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:    st,
		validate: NewValidator(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

// NewValidator returns a validator reporting fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("finite", finite)
	return v
}

// finite rejects NaN and the infinities, which the range tags let through.
func finite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return true
}

func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Invalid("body", "invalid")
	}
	fields := make([]errs.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, errs.FieldError{Field: fieldPath(fe.Namespace()), Rule: fe.Tag(), Param: fe.Param()})
	}
	return &errs.ValidationError{Fields: fields}
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func (s *Service) run(ctx context.Context, op string, fn func(tx *store.Tx) error) error {
	err := errs.Storage(op, s.store.RunInTx(ctx, fn))
	s.metrics.observe(op, err)
	if errors.Is(err, errs.ErrStorage) {
		s.logger.Error("operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}

// money multiplies with decimal arithmetic so sums of many records do not drift.
func money(quantity, unitCost float64) float64 {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitCost)).InexactFloat64()
}
