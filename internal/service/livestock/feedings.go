package livestock

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
)

func (s *Service) ListFeedings(ctx context.Context, accountID string) ([]models.FeedingRecord, error) {
	var out []models.FeedingRecord
	if err := s.store.Read(ctx).List(&out, accountID, "date DESC"); err != nil {
		return nil, fmt.Errorf("list feedings: %w", err)
	}
	return out, nil
}

func (s *Service) GetFeeding(ctx context.Context, accountID, id string) (models.FeedingRecord, error) {
	var f models.FeedingRecord
	if err := s.store.Read(ctx).Load(&f, store.EntityFeeding, accountID, id); err != nil {
		return models.FeedingRecord{}, err
	}
	return f, nil
}

// CreateFeeding logs feed given to an enclosure or an animal and prices it from
// the supply unit cost or the compound cost per kg.
func (s *Service) CreateFeeding(ctx context.Context, accountID string, in models.FeedingInput) (models.FeedingRecord, models.Changes, error) {
	var changes models.Changes
	if err := s.checkFeeding(in); err != nil {
		return models.FeedingRecord{}, changes, err
	}

	f := models.FeedingRecord{ID: uuid.NewString(), AccountID: accountID}
	err := s.run(ctx, "feeding.create", func(tx *store.Tx) error {
		if err := applyFeeding(tx, accountID, &f, in); err != nil {
			return err
		}
		if err := tx.Insert(&f); err != nil {
			return err
		}
		changes.Feedings = append(changes.Feedings, f)
		return nil
	})
	if err != nil {
		return models.FeedingRecord{}, models.Changes{}, err
	}
	return f, changes, nil
}

func (s *Service) UpdateFeeding(ctx context.Context, accountID, id string, in models.FeedingInput) (models.FeedingRecord, models.Changes, error) {
	var changes models.Changes
	if err := s.checkFeeding(in); err != nil {
		return models.FeedingRecord{}, changes, err
	}

	var f models.FeedingRecord
	err := s.run(ctx, "feeding.update", func(tx *store.Tx) error {
		if err := tx.Load(&f, store.EntityFeeding, accountID, id); err != nil {
			return err
		}
		if err := applyFeeding(tx, accountID, &f, in); err != nil {
			return err
		}
		if err := tx.Save(&f); err != nil {
			return err
		}
		changes.Feedings = append(changes.Feedings, f)
		return nil
	})
	if err != nil {
		return models.FeedingRecord{}, models.Changes{}, err
	}
	return f, changes, nil
}

func (s *Service) DeleteFeeding(ctx context.Context, accountID, id string) (models.Changes, error) {
	err := s.run(ctx, "feeding.delete", func(tx *store.Tx) error {
		var f models.FeedingRecord
		if err := tx.Load(&f, store.EntityFeeding, accountID, id); err != nil {
			return err
		}
		return tx.Delete(&f)
	})
	if err != nil {
		return models.Changes{}, err
	}
	return models.Changes{Deleted: []string{id}}, nil
}

// checkFeeding adds the supply/compound exclusivity rule to the tag checks.
func (s *Service) checkFeeding(in models.FeedingInput) error {
	if err := s.check(in); err != nil {
		return err
	}
	switch {
	case in.SupplyID == nil && in.CompoundID == nil:
		return &errs.ValidationError{Fields: []errs.FieldError{{Field: "supply_id", Rule: "required_without", Param: "compound_id"}}}
	case in.SupplyID != nil && in.CompoundID != nil:
		return &errs.ValidationError{Fields: []errs.FieldError{{Field: "compound_id", Rule: "excluded_with", Param: "supply_id"}}}
	}
	return nil
}

func applyFeeding(tx *store.Tx, accountID string, f *models.FeedingRecord, in models.FeedingInput) error {
	if err := ownedEnclosure(tx, accountID, in.EnclosureID); err != nil {
		return err
	}
	if err := ownedAnimal(tx, accountID, in.AnimalID); err != nil {
		return err
	}

	var unitCost float64
	if in.SupplyID != nil {
		var sup models.Supply
		if err := tx.Load(&sup, store.EntitySupply, accountID, *in.SupplyID); err != nil {
			return err
		}
		unitCost = sup.UnitCost
	} else {
		var c models.FeedCompound
		if err := tx.Load(&c, store.EntityCompound, accountID, *in.CompoundID); err != nil {
			return err
		}
		unitCost = c.CostPerKg
	}

	f.Date = in.Date
	f.EnclosureID = in.EnclosureID
	f.AnimalID = in.AnimalID
	f.SupplyID = in.SupplyID
	f.CompoundID = in.CompoundID
	f.Quantity = in.Quantity
	f.TotalCost = money(in.Quantity, unitCost)
	f.Notes = in.Notes
	return nil
}
