package livestock

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
)

func (s *Service) ListEnclosures(ctx context.Context, accountID string) ([]models.Enclosure, error) {
	var out []models.Enclosure
	if err := s.store.Read(ctx).List(&out, accountID, "name"); err != nil {
		return nil, fmt.Errorf("list enclosures: %w", err)
	}
	return out, nil
}

func (s *Service) GetEnclosure(ctx context.Context, accountID, id string) (models.Enclosure, error) {
	var e models.Enclosure
	if err := s.store.Read(ctx).Load(&e, store.EntityEnclosure, accountID, id); err != nil {
		return models.Enclosure{}, err
	}
	return e, nil
}

func (s *Service) CreateEnclosure(ctx context.Context, accountID string, in models.EnclosureInput) (models.Enclosure, models.Changes, error) {
	if err := s.check(in); err != nil {
		return models.Enclosure{}, models.Changes{}, err
	}
	e := models.Enclosure{ID: uuid.NewString(), AccountID: accountID}
	applyEnclosure(&e, in)
	err := s.run(ctx, "enclosure.create", func(tx *store.Tx) error {
		return tx.Insert(&e)
	})
	if err != nil {
		return models.Enclosure{}, models.Changes{}, err
	}
	return e, models.Changes{}, nil
}

func (s *Service) UpdateEnclosure(ctx context.Context, accountID, id string, in models.EnclosureInput) (models.Enclosure, models.Changes, error) {
	if err := s.check(in); err != nil {
		return models.Enclosure{}, models.Changes{}, err
	}
	var e models.Enclosure
	err := s.run(ctx, "enclosure.update", func(tx *store.Tx) error {
		if err := tx.Load(&e, store.EntityEnclosure, accountID, id); err != nil {
			return err
		}
		applyEnclosure(&e, in)
		return tx.Save(&e)
	})
	if err != nil {
		return models.Enclosure{}, models.Changes{}, err
	}
	return e, models.Changes{}, nil
}

// DeleteEnclosure removes the enclosure and clears the reference on every
// animal and animal-level feeding record that pointed at it. Feedings charged
// to the enclosure alone would lose their target, so while any exist the
// delete is refused.
func (s *Service) DeleteEnclosure(ctx context.Context, accountID, id string) (models.Changes, error) {
	var changes models.Changes
	err := s.run(ctx, "enclosure.delete", func(tx *store.Tx) error {
		var e models.Enclosure
		if err := tx.Load(&e, store.EntityEnclosure, accountID, id); err != nil {
			return err
		}
		n, err := tx.Count(&models.FeedingRecord{}, "enclosure_id = ? AND animal_id IS NULL", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &errs.ConflictError{Entity: store.EntityEnclosure, ID: id, Reason: fmt.Sprintf("used by %d enclosure feeding records", n)}
		}
		var housed []models.Animal
		if err := tx.Find(&housed, accountID, "identifier", "enclosure_id = ?", id); err != nil {
			return err
		}
		if err := tx.Nullify(&models.Animal{}, "enclosure_id", "enclosure_id = ?", id); err != nil {
			return err
		}
		if err := tx.Nullify(&models.FeedingRecord{}, "enclosure_id", "enclosure_id = ?", id); err != nil {
			return err
		}
		if err := tx.Delete(&e); err != nil {
			return err
		}
		for _, a := range housed {
			a.EnclosureID = nil
			changes.TouchAnimal(a)
		}
		changes.Deleted = append(changes.Deleted, id)
		return nil
	})
	if err != nil {
		return models.Changes{}, err
	}
	return changes, nil
}

func applyEnclosure(e *models.Enclosure, in models.EnclosureInput) {
	e.Name = in.Name
	e.Capacity = in.Capacity
	e.Area = in.Area
	e.Type = in.Type
	e.Notes = in.Notes
}
