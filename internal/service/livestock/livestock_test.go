package livestock

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
	"github.com/mamadbah2/proporco/internal/repository/store/storetest"
)

var ctx = context.Background()

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func setup(t *testing.T) (*Service, *store.Store, string) {
	t.Helper()
	st := storetest.New(t)
	acc := storetest.Account(t, st, "granja")
	svc := NewService(st, zap.NewNop(), WithClock(func() time.Time { return day(20) }))
	return svc, st, acc.ID
}

func newAnimal(t *testing.T, svc *Service, accountID, tag string) models.Animal {
	t.Helper()
	a, _, err := svc.CreateAnimal(ctx, accountID, models.AnimalInput{Identifier: tag, BirthDate: day(1), PurchasePrice: 100})
	require.NoError(t, err)
	return a
}

func newSupply(t *testing.T, svc *Service, accountID string, category models.SupplyCategory, unitCost float64) models.Supply {
	t.Helper()
	sup, _, err := svc.CreateSupply(ctx, accountID, models.SupplyInput{Name: "supply-" + string(category), Category: category, UnitCost: unitCost, Stock: 100})
	require.NoError(t, err)
	return sup
}

func weigh(t *testing.T, svc *Service, accountID, animalID string, d int, kg float64) (models.WeighingRecord, models.Changes) {
	t.Helper()
	w, changes, err := svc.RecordWeighing(ctx, accountID, models.WeighingInput{AnimalID: animalID, Date: day(d), Weight: kg})
	require.NoError(t, err)
	return w, changes
}

func currentWeight(t *testing.T, svc *Service, accountID, animalID string) *float64 {
	t.Helper()
	a, err := svc.GetAnimal(ctx, accountID, animalID)
	require.NoError(t, err)
	return a.CurrentWeight
}

func sell(t *testing.T, svc *Service, accountID string, ids ...string) models.Sale {
	t.Helper()
	in := models.SaleInput{Date: day(15), TotalValue: 1000, CommissionPercentage: 5, Buyer: "Frigorífico"}
	for _, id := range ids {
		in.Lines = append(in.Lines, models.SaleLineInput{AnimalID: id, Value: 500})
	}
	sale, _, err := svc.CreateSale(ctx, accountID, in)
	require.NoError(t, err)
	return sale
}

func TestCurrentWeightFollowsLatestDateInEitherOrder(t *testing.T) {
	orders := map[string][][2]float64{
		"in order":     {{1, 30}, {10, 40}},
		"out of order": {{10, 40}, {1, 30}},
	}
	for name, weighings := range orders {
		t.Run(name, func(t *testing.T) {
			svc, _, accountID := setup(t)
			x := newAnimal(t, svc, accountID, "X")
			for _, w := range weighings {
				weigh(t, svc, accountID, x.ID, int(w[0]), w[1])
			}
			got := currentWeight(t, svc, accountID, x.ID)
			require.NotNil(t, got)
			assert.Equal(t, 40.0, *got)
		})
	}
}

func TestRecordWeighingReportsTouchedAnimal(t *testing.T) {
	svc, _, accountID := setup(t)
	x := newAnimal(t, svc, accountID, "X")

	_, changes := weigh(t, svc, accountID, x.ID, 10, 40)
	require.Len(t, changes.Weighings, 1)
	require.Len(t, changes.Animals, 1)
	assert.Equal(t, 40.0, *changes.Animals[0].CurrentWeight)

	_, changes = weigh(t, svc, accountID, x.ID, 1, 30)
	assert.Len(t, changes.Weighings, 1)
	assert.Empty(t, changes.Animals)
}

func TestDeleteWeighingRecomputesCurrentWeight(t *testing.T) {
	svc, _, accountID := setup(t)
	x := newAnimal(t, svc, accountID, "X")
	first, _ := weigh(t, svc, accountID, x.ID, 1, 30)
	latest, _ := weigh(t, svc, accountID, x.ID, 10, 40)

	changes, err := svc.DeleteWeighing(ctx, accountID, latest.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{latest.ID}, changes.Deleted)
	assert.Equal(t, 30.0, *currentWeight(t, svc, accountID, x.ID))

	changes, err = svc.DeleteWeighing(ctx, accountID, first.ID)
	require.NoError(t, err)
	assert.Nil(t, currentWeight(t, svc, accountID, x.ID))
	require.Len(t, changes.Animals, 1)
	assert.Nil(t, changes.Animals[0].CurrentWeight)
}

func TestUpdateWeighing(t *testing.T) {
	svc, _, accountID := setup(t)
	x := newAnimal(t, svc, accountID, "X")
	early, _ := weigh(t, svc, accountID, x.ID, 1, 30)
	late, _ := weigh(t, svc, accountID, x.ID, 10, 40)

	// editing an older record leaves the current weight alone
	_, changes, err := svc.UpdateWeighing(ctx, accountID, early.ID, models.WeighingInput{AnimalID: x.ID, Date: day(2), Weight: 32})
	require.NoError(t, err)
	assert.Empty(t, changes.Animals)
	assert.Equal(t, 40.0, *currentWeight(t, svc, accountID, x.ID))

	// moving it past the latest makes it current
	_, _, err = svc.UpdateWeighing(ctx, accountID, early.ID, models.WeighingInput{AnimalID: x.ID, Date: day(12), Weight: 45})
	require.NoError(t, err)
	assert.Equal(t, 45.0, *currentWeight(t, svc, accountID, x.ID))

	// the other record is now behind; correcting its weight does not win
	_, _, err = svc.UpdateWeighing(ctx, accountID, late.ID, models.WeighingInput{AnimalID: x.ID, Date: day(10), Weight: 41})
	require.NoError(t, err)
	assert.Equal(t, 45.0, *currentWeight(t, svc, accountID, x.ID))

	// back-dating the current record restores the next latest
	_, _, err = svc.UpdateWeighing(ctx, accountID, early.ID, models.WeighingInput{AnimalID: x.ID, Date: day(3), Weight: 45})
	require.NoError(t, err)
	assert.Equal(t, 41.0, *currentWeight(t, svc, accountID, x.ID))
}

func TestUpdateWeighingDateTieGoesToNewestRecord(t *testing.T) {
	svc, _, accountID := setup(t)
	x := newAnimal(t, svc, accountID, "X")
	older, _ := weigh(t, svc, accountID, x.ID, 1, 30)
	newer, _ := weigh(t, svc, accountID, x.ID, 10, 40)
	spare, _ := weigh(t, svc, accountID, x.ID, 2, 35)

	// same date as the newer record; the newer one stays current
	_, changes, err := svc.UpdateWeighing(ctx, accountID, older.ID, models.WeighingInput{AnimalID: x.ID, Date: day(10), Weight: 38})
	require.NoError(t, err)
	assert.Empty(t, changes.Animals)
	assert.Equal(t, 40.0, *currentWeight(t, svc, accountID, x.ID))

	// dropping an unrelated record keeps the same answer
	_, err = svc.DeleteWeighing(ctx, accountID, spare.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, *currentWeight(t, svc, accountID, x.ID))

	_, err = svc.DeleteWeighing(ctx, accountID, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, 38.0, *currentWeight(t, svc, accountID, x.ID))
}

func TestNonFiniteNumbersAreRejected(t *testing.T) {
	svc, _, accountID := setup(t)
	x := newAnimal(t, svc, accountID, "X")

	_, _, err := svc.CreateCost(ctx, accountID, models.CostInput{
		Category: models.CostOperational, Description: "energia", Date: day(2), Amount: math.Inf(1),
	})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, errs.FieldError{Field: "amount", Rule: "finite"}, verr.Fields[0])

	_, _, err = svc.RecordWeighing(ctx, accountID, models.WeighingInput{AnimalID: x.ID, Date: day(2), Weight: math.NaN()})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, errs.FieldError{Field: "weight", Rule: "finite"}, verr.Fields[0])

	costs, err := svc.ListCosts(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, costs)
	assert.Nil(t, currentWeight(t, svc, accountID, x.ID))
}

func TestUpdateWeighingRejectsAnimalChange(t *testing.T) {
	svc, _, accountID := setup(t)
	x := newAnimal(t, svc, accountID, "X")
	y := newAnimal(t, svc, accountID, "Y")
	w, _ := weigh(t, svc, accountID, x.ID, 1, 30)

	_, _, err := svc.UpdateWeighing(ctx, accountID, w.ID, models.WeighingInput{AnimalID: y.ID, Date: day(1), Weight: 30})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Nil(t, currentWeight(t, svc, accountID, y.ID))
}

func TestSaleMarksAnimalsSoldAndDeleteRestoresThem(t *testing.T) {
	svc, _, accountID := setup(t)
	a := newAnimal(t, svc, accountID, "A")
	b := newAnimal(t, svc, accountID, "B")

	in := models.SaleInput{
		Date: day(15), TotalValue: 1000, CommissionPercentage: 5,
		Lines: []models.SaleLineInput{{AnimalID: a.ID, Value: 500}, {AnimalID: b.ID, Value: 500}},
	}
	sale, changes, err := svc.CreateSale(ctx, accountID, in)
	require.NoError(t, err)
	assert.Len(t, sale.Lines, 2)
	require.Len(t, changes.Animals, 2)
	for _, touched := range changes.Animals {
		assert.Equal(t, models.AnimalSold, touched.Status)
	}

	loaded, err := svc.GetSale(ctx, accountID, sale.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Lines, 2)
	for _, id := range []string{a.ID, b.ID} {
		got, err := svc.GetAnimal(ctx, accountID, id)
		require.NoError(t, err)
		assert.Equal(t, models.AnimalSold, got.Status)
	}

	changes, err = svc.DeleteSale(ctx, accountID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{sale.ID}, changes.Deleted)
	assert.Len(t, changes.Animals, 2)
	for _, id := range []string{a.ID, b.ID} {
		got, err := svc.GetAnimal(ctx, accountID, id)
		require.NoError(t, err)
		assert.Equal(t, models.AnimalActive, got.Status)
	}
	_, err = svc.GetSale(ctx, accountID, sale.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCreateSaleRejectsAnimalAlreadySold(t *testing.T) {
	svc, _, accountID := setup(t)
	a := newAnimal(t, svc, accountID, "A")
	sell(t, svc, accountID, a.ID)

	_, _, err := svc.CreateSale(ctx, accountID, models.SaleInput{
		Date: day(16), Lines: []models.SaleLineInput{{AnimalID: a.ID, Value: 1}},
	})
	var conflict *errs.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, a.ID, conflict.ID)

	sales, err := svc.ListSales(ctx, accountID)
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestCreateSaleWithForeignAnimalWritesNothing(t *testing.T) {
	svc, st, accountID := setup(t)
	other := storetest.Account(t, st, "vizinho")
	mine := newAnimal(t, svc, accountID, "A")
	theirs := newAnimal(t, svc, other.ID, "Z")

	_, _, err := svc.CreateSale(ctx, accountID, models.SaleInput{
		Date: day(15),
		Lines: []models.SaleLineInput{
			{AnimalID: mine.ID, Value: 500},
			{AnimalID: theirs.ID, Value: 500},
		},
	})
	require.ErrorIs(t, err, errs.ErrNotFound)
	var ownership *errs.OwnershipError
	assert.ErrorAs(t, err, &ownership)

	sales, err := svc.ListSales(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, sales)
	got, err := svc.GetAnimal(ctx, accountID, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnimalActive, got.Status)
	got, err = svc.GetAnimal(ctx, other.ID, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnimalActive, got.Status)
}

func TestGetForeignRecordLooksMissing(t *testing.T) {
	svc, st, accountID := setup(t)
	other := storetest.Account(t, st, "vizinho")
	theirs := newAnimal(t, svc, other.ID, "Z")

	_, foreignErr := svc.GetAnimal(ctx, accountID, theirs.ID)
	missing := uuid.NewString()
	_, missingErr := svc.GetAnimal(ctx, accountID, missing)

	require.ErrorIs(t, foreignErr, errs.ErrNotFound)
	require.ErrorIs(t, missingErr, errs.ErrNotFound)
	assert.Equal(t, "animal "+theirs.ID+" not found", foreignErr.Error())
	assert.Equal(t, "animal "+missing+" not found", missingErr.Error())
}

func TestUpdateSaleSwapsAnimals(t *testing.T) {
	svc, _, accountID := setup(t)
	a := newAnimal(t, svc, accountID, "A")
	b := newAnimal(t, svc, accountID, "B")
	c := newAnimal(t, svc, accountID, "C")
	sale := sell(t, svc, accountID, a.ID, b.ID)

	updated, changes, err := svc.UpdateSale(ctx, accountID, sale.ID, models.SaleInput{
		Date: day(15), TotalValue: 900, CommissionPercentage: 3,
		Lines: []models.SaleLineInput{{AnimalID: b.ID, Value: 450}, {AnimalID: c.ID, Value: 450}},
	})
	require.NoError(t, err)
	assert.Equal(t, 900.0, updated.TotalValue)
	assert.Len(t, changes.Animals, 2)

	want := map[string]models.AnimalStatus{a.ID: models.AnimalActive, b.ID: models.AnimalSold, c.ID: models.AnimalSold}
	for id, status := range want {
		got, err := svc.GetAnimal(ctx, accountID, id)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status, id)
	}
	loaded, err := svc.GetSale(ctx, accountID, sale.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b.ID, c.ID}, lineAnimalIDs(loaded.Lines))
}

func TestUpdateAnimalStatus(t *testing.T) {
	svc, _, accountID := setup(t)
	a := newAnimal(t, svc, accountID, "A")
	b := newAnimal(t, svc, accountID, "B")
	sell(t, svc, accountID, b.ID)

	dead, _, err := svc.UpdateAnimal(ctx, accountID, a.ID, models.AnimalInput{Identifier: "A", BirthDate: day(1), Status: models.AnimalDead})
	require.NoError(t, err)
	assert.Equal(t, models.AnimalDead, dead.Status)

	_, _, err = svc.UpdateAnimal(ctx, accountID, b.ID, models.AnimalInput{Identifier: "B", BirthDate: day(1), Status: models.AnimalActive})
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, _, err = svc.UpdateAnimal(ctx, accountID, b.ID, models.AnimalInput{Identifier: "B", BirthDate: day(1), Status: models.AnimalSold})
	assert.ErrorIs(t, err, errs.ErrValidation)

	renamed, _, err := svc.UpdateAnimal(ctx, accountID, b.ID, models.AnimalInput{Identifier: "B-2", BirthDate: day(1)})
	require.NoError(t, err)
	assert.Equal(t, models.AnimalSold, renamed.Status)
}

func TestHealthRecordReplacesAnimalSet(t *testing.T) {
	svc, _, accountID := setup(t)
	a := newAnimal(t, svc, accountID, "A")
	b := newAnimal(t, svc, accountID, "B")
	c := newAnimal(t, svc, accountID, "C")
	vaccine := newSupply(t, svc, accountID, models.SupplyVaccine, 10)

	rec, changes, err := svc.CreateHealthRecord(ctx, accountID, models.HealthInput{
		Date: day(3), SupplyID: vaccine.ID, Quantity: 5, AnimalIDs: []string{a.ID, b.ID},
	})
	require.NoError(t, err)
	require.Len(t, changes.Health, 1)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, rec.AnimalIDs)

	_, _, err = svc.UpdateHealthRecord(ctx, accountID, rec.ID, models.HealthInput{
		Date: day(3), SupplyID: vaccine.ID, Quantity: 5, AnimalIDs: []string{c.ID},
	})
	require.NoError(t, err)

	loaded, err := svc.GetHealthRecord(ctx, accountID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, loaded.AnimalIDs)

	_, err = svc.DeleteHealthRecord(ctx, accountID, rec.ID)
	require.NoError(t, err)
	records, err := svc.ListHealthRecords(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHealthRecordWithForeignAnimalFails(t *testing.T) {
	svc, st, accountID := setup(t)
	other := storetest.Account(t, st, "vizinho")
	a := newAnimal(t, svc, accountID, "A")
	theirs := newAnimal(t, svc, other.ID, "Z")
	vaccine := newSupply(t, svc, accountID, models.SupplyVaccine, 10)

	_, _, err := svc.CreateHealthRecord(ctx, accountID, models.HealthInput{
		Date: day(3), SupplyID: vaccine.ID, Quantity: 1, AnimalIDs: []string{a.ID, theirs.ID},
	})
	require.ErrorIs(t, err, errs.ErrNotFound)

	records, err := svc.ListHealthRecords(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCompoundPricing(t *testing.T) {
	svc, _, accountID := setup(t)
	corn := newSupply(t, svc, accountID, models.SupplyFeed, 1.2)
	soy := newSupply(t, svc, accountID, models.SupplyFeed, 2.5)

	c, changes, err := svc.CreateCompound(ctx, accountID, models.FeedCompoundInput{
		Name: "Engorda",
		Ingredients: []models.IngredientInput{
			{SupplyID: corn.ID, Quantity: 70},
			{SupplyID: soy.ID, Quantity: 30},
		},
	})
	require.NoError(t, err)
	require.Len(t, changes.Compounds, 1)
	assert.InDelta(t, 159, c.TotalCost, 1e-9)
	assert.InDelta(t, 1.59, c.CostPerKg, 1e-9)
	assert.InDelta(t, c.TotalCost, c.CostPerKg*100, 1e-9)

	loaded, err := svc.GetCompound(ctx, accountID, c.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Ingredients, 2)
	assert.Equal(t, corn.ID, loaded.Ingredients[0].SupplyID)
	assert.Equal(t, soy.ID, loaded.Ingredients[1].SupplyID)

	empty, _, err := svc.UpdateCompound(ctx, accountID, c.ID, models.FeedCompoundInput{
		Name:        "Vazio",
		Ingredients: []models.IngredientInput{{SupplyID: corn.ID, Quantity: 0}},
	})
	require.NoError(t, err)
	assert.Zero(t, empty.TotalCost)
	assert.Zero(t, empty.CostPerKg)

	loaded, err = svc.GetCompound(ctx, accountID, c.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Ingredients, 1)
}

func TestFeedingRequiresExactlyOneSource(t *testing.T) {
	svc, _, accountID := setup(t)
	corn := newSupply(t, svc, accountID, models.SupplyFeed, 1.5)
	c, _, err := svc.CreateCompound(ctx, accountID, models.FeedCompoundInput{
		Name: "Mix", Ingredients: []models.IngredientInput{{SupplyID: corn.ID, Quantity: 10}},
	})
	require.NoError(t, err)

	_, _, err = svc.CreateFeeding(ctx, accountID, models.FeedingInput{Date: day(2), Quantity: 10})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "supply_id", verr.Fields[0].Field)

	_, _, err = svc.CreateFeeding(ctx, accountID, models.FeedingInput{Date: day(2), Quantity: 10, SupplyID: &corn.ID, CompoundID: &c.ID})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "compound_id", verr.Fields[0].Field)

	bySupply, _, err := svc.CreateFeeding(ctx, accountID, models.FeedingInput{Date: day(2), Quantity: 10, SupplyID: &corn.ID})
	require.NoError(t, err)
	assert.InDelta(t, 15, bySupply.TotalCost, 1e-9)

	byCompound, _, err := svc.CreateFeeding(ctx, accountID, models.FeedingInput{Date: day(2), Quantity: 4, CompoundID: &c.ID})
	require.NoError(t, err)
	assert.InDelta(t, 6, byCompound.TotalCost, 1e-9)
}

func TestDeleteAnimal(t *testing.T) {
	svc, _, accountID := setup(t)
	corn := newSupply(t, svc, accountID, models.SupplyFeed, 1)
	vaccine := newSupply(t, svc, accountID, models.SupplyVaccine, 1)
	a := newAnimal(t, svc, accountID, "A")
	sold := newAnimal(t, svc, accountID, "S")
	sell(t, svc, accountID, sold.ID)

	_, err := svc.DeleteAnimal(ctx, accountID, sold.ID)
	require.ErrorIs(t, err, errs.ErrConflict)

	weigh(t, svc, accountID, a.ID, 1, 30)
	feeding, _, err := svc.CreateFeeding(ctx, accountID, models.FeedingInput{Date: day(2), Quantity: 3, SupplyID: &corn.ID, AnimalID: &a.ID})
	require.NoError(t, err)
	rec, _, err := svc.CreateHealthRecord(ctx, accountID, models.HealthInput{Date: day(2), SupplyID: vaccine.ID, Quantity: 1, AnimalIDs: []string{a.ID}})
	require.NoError(t, err)

	changes, err := svc.DeleteAnimal(ctx, accountID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, changes.Deleted)

	weighings, err := svc.ListWeighings(ctx, accountID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, weighings)
	f, err := svc.GetFeeding(ctx, accountID, feeding.ID)
	require.NoError(t, err)
	assert.Nil(t, f.AnimalID)
	assert.InDelta(t, 3, f.TotalCost, 1e-9)
	h, err := svc.GetHealthRecord(ctx, accountID, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, h.AnimalIDs)
}

func TestDeleteEnclosureClearsReferences(t *testing.T) {
	svc, _, accountID := setup(t)
	pen, _, err := svc.CreateEnclosure(ctx, accountID, models.EnclosureInput{Name: "Baia 1", Capacity: 10})
	require.NoError(t, err)
	a, _, err := svc.CreateAnimal(ctx, accountID, models.AnimalInput{Identifier: "A", BirthDate: day(1), EnclosureID: &pen.ID})
	require.NoError(t, err)

	changes, err := svc.DeleteEnclosure(ctx, accountID, pen.ID)
	require.NoError(t, err)
	require.Len(t, changes.Animals, 1)
	assert.Nil(t, changes.Animals[0].EnclosureID)

	got, err := svc.GetAnimal(ctx, accountID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.EnclosureID)
}

func TestDeleteEnclosureWithEnclosureFeedingsConflicts(t *testing.T) {
	svc, _, accountID := setup(t)
	corn := newSupply(t, svc, accountID, models.SupplyFeed, 1)
	pen, _, err := svc.CreateEnclosure(ctx, accountID, models.EnclosureInput{Name: "Baia 1", Capacity: 10})
	require.NoError(t, err)
	a, _, err := svc.CreateAnimal(ctx, accountID, models.AnimalInput{Identifier: "A", BirthDate: day(1), EnclosureID: &pen.ID})
	require.NoError(t, err)
	perAnimal, _, err := svc.CreateFeeding(ctx, accountID, models.FeedingInput{Date: day(2), Quantity: 2, SupplyID: &corn.ID, AnimalID: &a.ID, EnclosureID: &pen.ID})
	require.NoError(t, err)
	shared, _, err := svc.CreateFeeding(ctx, accountID, models.FeedingInput{Date: day(2), Quantity: 10, SupplyID: &corn.ID, EnclosureID: &pen.ID})
	require.NoError(t, err)

	_, err = svc.DeleteEnclosure(ctx, accountID, pen.ID)
	require.ErrorIs(t, err, errs.ErrConflict)
	got, err := svc.GetAnimal(ctx, accountID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, &pen.ID, got.EnclosureID)

	_, err = svc.DeleteFeeding(ctx, accountID, shared.ID)
	require.NoError(t, err)
	_, err = svc.DeleteEnclosure(ctx, accountID, pen.ID)
	require.NoError(t, err)

	f, err := svc.GetFeeding(ctx, accountID, perAnimal.ID)
	require.NoError(t, err)
	assert.Nil(t, f.EnclosureID)
	assert.Equal(t, &a.ID, f.AnimalID)
}

func TestDeleteSupplyInUseConflicts(t *testing.T) {
	svc, _, accountID := setup(t)
	corn := newSupply(t, svc, accountID, models.SupplyFeed, 1)
	spare := newSupply(t, svc, accountID, models.SupplyMedicine, 1)
	_, _, err := svc.CreateCompound(ctx, accountID, models.FeedCompoundInput{
		Name: "Mix", Ingredients: []models.IngredientInput{{SupplyID: corn.ID, Quantity: 10}},
	})
	require.NoError(t, err)

	_, err = svc.DeleteSupply(ctx, accountID, corn.ID)
	require.ErrorIs(t, err, errs.ErrConflict)

	_, err = svc.DeleteSupply(ctx, accountID, spare.ID)
	require.NoError(t, err)
}

func TestCreateAnimalWithForeignEnclosureFails(t *testing.T) {
	svc, st, accountID := setup(t)
	other := storetest.Account(t, st, "vizinho")
	pen, _, err := svc.CreateEnclosure(ctx, other.ID, models.EnclosureInput{Name: "Baia", Capacity: 5})
	require.NoError(t, err)

	_, _, err = svc.CreateAnimal(ctx, accountID, models.AnimalInput{Identifier: "A", BirthDate: day(1), EnclosureID: &pen.ID})
	require.ErrorIs(t, err, errs.ErrNotFound)

	animals, err := svc.ListAnimals(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, animals)
}

func TestValidationReportsJSONFieldNames(t *testing.T) {
	svc, _, accountID := setup(t)

	_, _, err := svc.CreateAnimal(ctx, accountID, models.AnimalInput{InitialWeight: -1})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	var fields []string
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"identifier", "birth_date", "initial_weight"}, fields)

	_, _, err = svc.CreateSale(ctx, accountID, models.SaleInput{
		Date:  day(1),
		Lines: []models.SaleLineInput{{AnimalID: "not-a-uuid", Value: 1}},
	})
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, errs.FieldError{Field: "lines[0].animal_id", Rule: "uuid"}, verr.Fields[0])

	id := uuid.NewString()
	_, _, err = svc.CreateSale(ctx, accountID, models.SaleInput{
		Date:  day(1),
		Lines: []models.SaleLineInput{{AnimalID: id, Value: 1}, {AnimalID: id, Value: 2}},
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lines", verr.Fields[0].Field)
	assert.Equal(t, "unique", verr.Fields[0].Rule)

	_, _, err = svc.CreateSale(ctx, accountID, models.SaleInput{Date: day(1)})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestLowStockSupplies(t *testing.T) {
	svc, _, accountID := setup(t)
	_, _, err := svc.CreateSupply(ctx, accountID, models.SupplyInput{Name: "Milho", Category: models.SupplyFeed, Stock: 5, MinimumStock: ptr(10.0)})
	require.NoError(t, err)
	_, _, err = svc.CreateSupply(ctx, accountID, models.SupplyInput{Name: "Soja", Category: models.SupplyFeed, Stock: 50, MinimumStock: ptr(10.0)})
	require.NoError(t, err)
	_, _, err = svc.CreateSupply(ctx, accountID, models.SupplyInput{Name: "Sal", Category: models.SupplyFeed, Stock: 0})
	require.NoError(t, err)

	low, err := svc.LowStockSupplies(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Milho", low[0].Name)
}

func TestFindAnimalByIdentifier(t *testing.T) {
	svc, _, accountID := setup(t)
	a := newAnimal(t, svc, accountID, "BR-001")

	got, err := svc.FindAnimalByIdentifier(ctx, accountID, "BR-001")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.FindAnimalByIdentifier(ctx, accountID, "BR-999")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMetricsCountOutcomes(t *testing.T) {
	st := storetest.New(t)
	acc := storetest.Account(t, st, "granja")
	reg := prometheus.NewRegistry()
	svc := NewService(st, zap.NewNop(), WithMetrics(NewMetrics(reg)))

	newAnimal(t, svc, acc.ID, "A")
	_, err := svc.DeleteAnimal(ctx, acc.ID, uuid.NewString())
	require.Error(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			key := ""
			for _, l := range m.GetLabel() {
				key += l.GetValue() + "/"
			}
			counts[key] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, counts["animal.create/ok/"])
	assert.Equal(t, 1.0, counts["animal.delete/not_found/"])
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "conflict", outcome(&errs.ConflictError{}))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}
