package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/service/finance"
	"github.com/mamadbah2/proporco/internal/service/reporting"
)

const (
	dateLayout   = "2006-01-02"
	defaultLimit = 10
	maxLimit     = 100
)

// Reports is the read side exposed over HTTP.
type Reports interface {
	Financial(ctx context.Context, accountID string, period finance.Period) (finance.Report, error)
	Ranking(ctx context.Context, accountID string, period finance.Period, limit int) ([]finance.AnimalFinancials, error)
	Occupancy(ctx context.Context, accountID string) ([]finance.Occupancy, error)
	Production(ctx context.Context, accountID string) (finance.Production, error)
	History(ctx context.Context, accountID string, limit int64) ([]models.ReportArchive, error)
	Digest(ctx context.Context, accountID string, period finance.Period) (string, finance.Report, error)
}

// ReportHandler serves the financial and production reports.
type ReportHandler struct {
	reports Reports
	logger  *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(reports Reports, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, logger: logger}
}

// Register mounts the report routes on g.
func (h *ReportHandler) Register(g *gin.RouterGroup) {
	g.GET("/reports/financial", h.Financial)
	g.GET("/reports/ranking", h.Ranking)
	g.GET("/reports/occupancy", h.Occupancy)
	g.GET("/reports/production", h.Production)
	g.GET("/reports/digest", h.Digest)
	g.GET("/reports/history", h.History)
}

// Financial returns the farm summary and per-animal rows for ?from&to.
func (h *ReportHandler) Financial(c *gin.Context) {
	period, err := periodQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	report, err := h.reports.Financial(c.Request.Context(), accountID(c), period)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// Ranking returns the top ?limit profitable animals sold in ?from&to.
func (h *ReportHandler) Ranking(c *gin.Context) {
	period, err := periodQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	limit, err := limitQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rows, err := h.reports.Ranking(c.Request.Context(), accountID(c), period, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *ReportHandler) Occupancy(c *gin.Context) {
	rows, err := h.reports.Occupancy(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *ReportHandler) Production(c *gin.Context) {
	prod, err := h.reports.Production(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prod})
}

// Digest renders the WhatsApp digest text for ?from&to.
func (h *ReportHandler) Digest(c *gin.Context) {
	period, err := periodQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	text, _, err := h.reports.Digest(c.Request.Context(), accountID(c), period)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": text})
}

// History lists archived weekly digests.
func (h *ReportHandler) History(c *gin.Context) {
	limit, err := limitQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rows, err := h.reports.History(c.Request.Context(), accountID(c), int64(limit))
	if errors.Is(err, reporting.ErrArchiveDisabled) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// periodQuery reads ?from and ?to as calendar days in UTC. Both are optional
// and inclusive.
func periodQuery(c *gin.Context) (finance.Period, error) {
	var p finance.Period
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return p, &errs.ValidationError{Fields: []errs.FieldError{{Field: "from", Rule: "datetime", Param: dateLayout}}}
		}
		p.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return p, &errs.ValidationError{Fields: []errs.FieldError{{Field: "to", Rule: "datetime", Param: dateLayout}}}
		}
		p.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	if !p.From.IsZero() && !p.To.IsZero() && p.To.Before(p.From) {
		return p, &errs.ValidationError{Fields: []errs.FieldError{{Field: "to", Rule: "gtefield", Param: "from"}}}
	}
	return p, nil
}

func limitQuery(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, &errs.ValidationError{Fields: []errs.FieldError{{Field: "limit", Rule: "range", Param: "1-" + strconv.Itoa(maxLimit)}}}
	}
	return n, nil
}
