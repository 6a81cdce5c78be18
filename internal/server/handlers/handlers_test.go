package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store/storetest"
	"github.com/mamadbah2/proporco/internal/service/finance"
	"github.com/mamadbah2/proporco/internal/service/livestock"
	"github.com/mamadbah2/proporco/internal/service/reporting"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Data    json.RawMessage   `json:"data"`
	Changes models.Changes    `json:"changes"`
	Error   string            `json:"error"`
	Fields  []errs.FieldError `json:"fields"`
}

// testEngine authenticates requests from the X-Account header.
func testEngine() (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	g := r.Group("/api/v1", func(c *gin.Context) {
		c.Set(AccountKey, c.GetHeader("X-Account"))
		c.Next()
	})
	return r, g
}

func do(t *testing.T, r http.Handler, method, path, account string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Account", account)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func livestockEngine(t *testing.T) (*gin.Engine, string, string) {
	t.Helper()
	st := storetest.New(t)
	a := storetest.Account(t, st, "granja-a")
	b := storetest.Account(t, st, "granja-b")
	r, g := testEngine()
	RegisterLivestock(g, livestock.NewService(st, nil), nil)
	return r, a.ID, b.ID
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

var birth = time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

func TestAnimalLifecycleOverHTTP(t *testing.T) {
	r, acc, _ := livestockEngine(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/enclosures", acc, models.EnclosureInput{Name: "Baia 1", Capacity: 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	enclosure := decode[models.Enclosure](t, env.Data)

	w, env = do(t, r, http.MethodPost, "/api/v1/animals", acc, models.AnimalInput{
		Identifier: "P-001", BirthDate: birth, PurchasePrice: 350, EnclosureID: &enclosure.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	animal := decode[models.Animal](t, env.Data)
	assert.Equal(t, models.AnimalActive, animal.Status)

	w, env = do(t, r, http.MethodGet, "/api/v1/animals", acc, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Animal](t, env.Data), 1)

	w, env = do(t, r, http.MethodPost, "/api/v1/sales", acc, models.SaleInput{
		Date:       birth.AddDate(0, 4, 0),
		TotalValue: 900,
		Lines:      []models.SaleLineInput{{AnimalID: animal.ID, Value: 900}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, env.Changes.Animals, 1)
	assert.Equal(t, models.AnimalSold, env.Changes.Animals[0].Status)
	sale := decode[models.Sale](t, env.Data)

	w, env = do(t, r, http.MethodDelete, "/api/v1/sales/"+sale.ID, acc, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, env.Changes.Animals, 1)
	assert.Equal(t, models.AnimalActive, env.Changes.Animals[0].Status)
}

func TestValidationErrorsListFields(t *testing.T) {
	r, acc, _ := livestockEngine(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/enclosures", acc, models.EnclosureInput{Capacity: 0})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", env.Error)
	assert.Contains(t, env.Fields, errs.FieldError{Field: "name", Rule: "required"})
	assert.Contains(t, env.Fields, errs.FieldError{Field: "capacity", Rule: "gt", Param: "0"})
}

func TestMalformedBody(t *testing.T) {
	r, acc, _ := livestockEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/costs", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Account", acc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())
}

func TestForeignRecordIsNotFound(t *testing.T) {
	r, acc, other := livestockEngine(t)

	_, env := do(t, r, http.MethodPost, "/api/v1/enclosures", acc, models.EnclosureInput{Name: "Baia 1", Capacity: 10})
	enclosure := decode[models.Enclosure](t, env.Data)

	w, foreign := do(t, r, http.MethodGet, "/api/v1/enclosures/"+enclosure.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, missing := do(t, r, http.MethodGet, "/api/v1/enclosures/00000000-0000-0000-0000-000000000000", acc, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "enclosure "+enclosure.ID+" not found", foreign.Error)
	assert.Equal(t, "enclosure 00000000-0000-0000-0000-000000000000 not found", missing.Error)

	w, env = do(t, r, http.MethodGet, "/api/v1/enclosures", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Enclosure](t, env.Data))
}

func TestSellingTwiceConflicts(t *testing.T) {
	r, acc, _ := livestockEngine(t)

	_, env := do(t, r, http.MethodPost, "/api/v1/animals", acc, models.AnimalInput{Identifier: "P-1", BirthDate: birth})
	animal := decode[models.Animal](t, env.Data)
	sale := models.SaleInput{Date: birth.AddDate(0, 3, 0), Lines: []models.SaleLineInput{{AnimalID: animal.ID}}}

	w, _ := do(t, r, http.MethodPost, "/api/v1/sales", acc, sale)
	require.Equal(t, http.StatusCreated, w.Code)
	w, env = do(t, r, http.MethodPost, "/api/v1/sales", acc, sale)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, env.Error, "sold")
}

func TestWeighingsFilterByAnimal(t *testing.T) {
	r, acc, _ := livestockEngine(t)

	var ids []string
	for _, tag := range []string{"P-1", "P-2"} {
		_, env := do(t, r, http.MethodPost, "/api/v1/animals", acc, models.AnimalInput{Identifier: tag, BirthDate: birth})
		ids = append(ids, decode[models.Animal](t, env.Data).ID)
	}
	for i, id := range ids {
		w, env := do(t, r, http.MethodPost, "/api/v1/weighings", acc, models.WeighingInput{AnimalID: id, Date: birth.AddDate(0, 1, 0), Weight: float64(20 + i)})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.Len(t, env.Changes.Animals, 1)
	}

	_, env := do(t, r, http.MethodGet, "/api/v1/weighings?animal_id="+ids[1], acc, nil)
	got := decode[[]models.WeighingRecord](t, env.Data)
	require.Len(t, got, 1)
	assert.Equal(t, 21.0, got[0].Weight)

	_, env = do(t, r, http.MethodGet, "/api/v1/weighings", acc, nil)
	assert.Len(t, decode[[]models.WeighingRecord](t, env.Data), 2)
}

type fakeReports struct {
	period  finance.Period
	limit   int
	history error
}

func (f *fakeReports) Financial(_ context.Context, _ string, p finance.Period) (finance.Report, error) {
	f.period = p
	return finance.Report{Period: p}, nil
}

func (f *fakeReports) Ranking(_ context.Context, _ string, p finance.Period, limit int) ([]finance.AnimalFinancials, error) {
	f.period, f.limit = p, limit
	return nil, nil
}

func (f *fakeReports) Occupancy(context.Context, string) ([]finance.Occupancy, error) {
	return nil, errors.New("database is locked")
}

func (f *fakeReports) Production(context.Context, string) (finance.Production, error) {
	return finance.Production{}, nil
}

func (f *fakeReports) History(context.Context, string, int64) ([]models.ReportArchive, error) {
	return nil, f.history
}

func (f *fakeReports) Digest(context.Context, string, finance.Period) (string, finance.Report, error) {
	return "Resumo", finance.Report{}, nil
}

func reportEngine(f *fakeReports) *gin.Engine {
	r, g := testEngine()
	NewReportHandler(f, nil).Register(g)
	return r
}

func TestFinancialPeriodQuery(t *testing.T) {
	f := &fakeReports{}
	r := reportEngine(f)

	w, _ := do(t, r, http.MethodGet, "/api/v1/reports/financial?from=2026-03-01&to=2026-03-31", "acc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), f.period.From)
	assert.True(t, f.period.Contains(time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC)))
	assert.False(t, f.period.Contains(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)))

	w, env := do(t, r, http.MethodGet, "/api/v1/reports/financial?from=01/03/2026", "acc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []errs.FieldError{{Field: "from", Rule: "datetime", Param: "2006-01-02"}}, env.Fields)

	w, _ = do(t, r, http.MethodGet, "/api/v1/reports/financial?from=2026-03-10&to=2026-03-01", "acc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRankingLimit(t *testing.T) {
	f := &fakeReports{}
	r := reportEngine(f)

	w, _ := do(t, r, http.MethodGet, "/api/v1/reports/ranking", "acc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultLimit, f.limit)

	w, _ = do(t, r, http.MethodGet, "/api/v1/reports/ranking?limit=3", "acc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, f.limit)

	w, _ = do(t, r, http.MethodGet, "/api/v1/reports/ranking?limit=0", "acc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportFailuresAreGeneric(t *testing.T) {
	r := reportEngine(&fakeReports{})

	w, env := do(t, r, http.MethodGet, "/api/v1/reports/occupancy", "acc", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", env.Error)
}

func TestHistoryWithoutArchive(t *testing.T) {
	r := reportEngine(&fakeReports{history: reporting.ErrArchiveDisabled})

	w, _ := do(t, r, http.MethodGet, "/api/v1/reports/history", "acc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
