package livestock

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
)

func (s *Service) ListSales(ctx context.Context, accountID string) ([]models.Sale, error) {
	out, err := s.store.Read(ctx).ListSales(accountID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return out, nil
}

func (s *Service) GetSale(ctx context.Context, accountID, id string) (models.Sale, error) {
	return s.store.Read(ctx).LoadSale(accountID, id)
}

// CreateSale stores the sale with one line per animal and marks every listed
// animal sold. Each animal must belong to the account and be active.
func (s *Service) CreateSale(ctx context.Context, accountID string, in models.SaleInput) (models.Sale, models.Changes, error) {
	var changes models.Changes
	if err := s.check(in); err != nil {
		return models.Sale{}, changes, err
	}

	sale := models.Sale{ID: uuid.NewString(), AccountID: accountID}
	applySale(&sale, in)
	lines := saleLines(in.Lines)

	err := s.run(ctx, "sale.create", func(tx *store.Tx) error {
		animals, err := activeAnimals(tx, accountID, lineAnimalIDs(lines))
		if err != nil {
			return err
		}
		if err := tx.Insert(&sale); err != nil {
			return err
		}
		if err := tx.ReplaceSaleLines(sale.ID, lines); err != nil {
			return err
		}
		sale.Lines = lines
		if err := markAnimals(tx, animals, models.AnimalSold, &changes); err != nil {
			return err
		}
		changes.Sales = append(changes.Sales, sale)
		return nil
	})
	if err != nil {
		return models.Sale{}, models.Changes{}, err
	}
	return sale, changes, nil
}

// UpdateSale replaces the header fields and the full line set. Animals dropped
// from the sale return to active; animals added are checked as on create.
func (s *Service) UpdateSale(ctx context.Context, accountID, id string, in models.SaleInput) (models.Sale, models.Changes, error) {
	var changes models.Changes
	if err := s.check(in); err != nil {
		return models.Sale{}, changes, err
	}
	lines := saleLines(in.Lines)

	var sale models.Sale
	err := s.run(ctx, "sale.update", func(tx *store.Tx) error {
		var err error
		if sale, err = tx.LoadSale(accountID, id); err != nil {
			return err
		}

		before := lineAnimalIDs(sale.Lines)
		after := lineAnimalIDs(lines)
		dropped := difference(before, after)
		added := difference(after, before)

		addedAnimals, err := activeAnimals(tx, accountID, added)
		if err != nil {
			return err
		}
		droppedAnimals, err := tx.LoadAnimals(accountID, dropped)
		if err != nil {
			return err
		}

		applySale(&sale, in)
		if err := tx.Save(&sale); err != nil {
			return err
		}
		if err := tx.ReplaceSaleLines(sale.ID, lines); err != nil {
			return err
		}
		sale.Lines = lines
		if err := markAnimals(tx, droppedAnimals, models.AnimalActive, &changes); err != nil {
			return err
		}
		if err := markAnimals(tx, addedAnimals, models.AnimalSold, &changes); err != nil {
			return err
		}
		changes.Sales = append(changes.Sales, sale)
		return nil
	})
	if err != nil {
		return models.Sale{}, models.Changes{}, err
	}
	return sale, changes, nil
}

// DeleteSale removes the sale and its lines and returns every listed animal to
// active. No other animal field is restored.
func (s *Service) DeleteSale(ctx context.Context, accountID, id string) (models.Changes, error) {
	var changes models.Changes
	err := s.run(ctx, "sale.delete", func(tx *store.Tx) error {
		sale, err := tx.LoadSale(accountID, id)
		if err != nil {
			return err
		}
		animals, err := tx.LoadAnimals(accountID, lineAnimalIDs(sale.Lines))
		if err != nil {
			return err
		}
		if err := tx.ReplaceSaleLines(sale.ID, nil); err != nil {
			return err
		}
		if err := tx.Delete(&sale); err != nil {
			return err
		}
		if err := markAnimals(tx, animals, models.AnimalActive, &changes); err != nil {
			return err
		}
		changes.Deleted = append(changes.Deleted, id)
		return nil
	})
	if err != nil {
		return models.Changes{}, err
	}
	return changes, nil
}

func applySale(sale *models.Sale, in models.SaleInput) {
	sale.Date = in.Date
	sale.TotalWeight = in.TotalWeight
	sale.TotalValue = in.TotalValue
	sale.CommissionPercentage = in.CommissionPercentage
	sale.Buyer = in.Buyer
	sale.Notes = in.Notes
}

// saleLines converts the input lines, ordered by animal id.
func saleLines(in []models.SaleLineInput) []models.SaleLine {
	lines := make([]models.SaleLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, models.SaleLine{AnimalID: l.AnimalID, Value: l.Value})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].AnimalID < lines[j].AnimalID })
	return lines
}

func lineAnimalIDs(lines []models.SaleLine) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.AnimalID)
	}
	return ids
}

// difference returns the ids of a missing from b, in a's order.
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, id := range b {
		seen[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// activeAnimals loads ids through the ownership guard and rejects any animal
// that is not active.
func activeAnimals(tx *store.Tx, accountID string, ids []string) ([]models.Animal, error) {
	animals, err := tx.LoadAnimals(accountID, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range animals {
		if a.Status != models.AnimalActive {
			return nil, &errs.ConflictError{Entity: store.EntityAnimal, ID: a.ID, Reason: "animal is " + string(a.Status)}
		}
	}
	return animals, nil
}

func markAnimals(tx *store.Tx, animals []models.Animal, status models.AnimalStatus, changes *models.Changes) error {
	ids := make([]string, 0, len(animals))
	for _, a := range animals {
		ids = append(ids, a.ID)
	}
	if err := tx.SetAnimalStatus(ids, status); err != nil {
		return err
	}
	for _, a := range animals {
		a.Status = status
		changes.TouchAnimal(a)
	}
	return nil
}
