package livestock

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
)

// ListWeighings lists weighings newest first, optionally for one animal.
func (s *Service) ListWeighings(ctx context.Context, accountID, animalID string) ([]models.WeighingRecord, error) {
	var out []models.WeighingRecord
	var err error
	if animalID == "" {
		err = s.store.Read(ctx).List(&out, accountID, "date DESC")
	} else {
		err = s.store.Read(ctx).Find(&out, accountID, "date DESC", "animal_id = ?", animalID)
	}
	if err != nil {
		return nil, fmt.Errorf("list weighings: %w", err)
	}
	return out, nil
}

func (s *Service) GetWeighing(ctx context.Context, accountID, id string) (models.WeighingRecord, error) {
	var w models.WeighingRecord
	if err := s.store.Read(ctx).Load(&w, store.EntityWeighing, accountID, id); err != nil {
		return models.WeighingRecord{}, err
	}
	return w, nil
}

// RecordWeighing stores a weighing. The animal's current weight follows the
// weighing with the latest date, so a back-dated record leaves it untouched.
func (s *Service) RecordWeighing(ctx context.Context, accountID string, in models.WeighingInput) (models.WeighingRecord, models.Changes, error) {
	var changes models.Changes
	if err := s.check(in); err != nil {
		return models.WeighingRecord{}, changes, err
	}

	w := models.WeighingRecord{
		ID:        uuid.NewString(),
		AccountID: accountID,
		AnimalID:  in.AnimalID,
		Date:      in.Date,
		Weight:    in.Weight,
		Notes:     in.Notes,
	}
	err := s.run(ctx, "weighing.create", func(tx *store.Tx) error {
		var a models.Animal
		if err := tx.Load(&a, store.EntityAnimal, accountID, in.AnimalID); err != nil {
			return err
		}
		latest, err := tx.LatestWeighing(a.ID, "")
		if err != nil {
			return err
		}
		if err := tx.Insert(&w); err != nil {
			return err
		}
		changes.Weighings = append(changes.Weighings, w)

		if latest != nil && w.Date.Before(latest.Date) {
			return nil
		}
		return setCurrentWeight(tx, &a, &w.Weight, &changes)
	})
	if err != nil {
		return models.WeighingRecord{}, models.Changes{}, err
	}
	return w, changes, nil
}

// UpdateWeighing edits date, weight and notes; the animal cannot change.
// Afterwards the current weight is that of the latest record, with date ties
// going to the most recently created one, as on delete.
func (s *Service) UpdateWeighing(ctx context.Context, accountID, id string, in models.WeighingInput) (models.WeighingRecord, models.Changes, error) {
	var changes models.Changes
	if err := s.check(in); err != nil {
		return models.WeighingRecord{}, changes, err
	}

	var w models.WeighingRecord
	err := s.run(ctx, "weighing.update", func(tx *store.Tx) error {
		if err := tx.Load(&w, store.EntityWeighing, accountID, id); err != nil {
			return err
		}
		if in.AnimalID != w.AnimalID {
			return &errs.ValidationError{Fields: []errs.FieldError{{Field: "animal_id", Rule: "immutable"}}}
		}
		w.Date = in.Date
		w.Weight = in.Weight
		w.Notes = in.Notes
		if err := tx.Save(&w); err != nil {
			return err
		}
		changes.Weighings = append(changes.Weighings, w)

		latest, err := tx.LatestWeighing(w.AnimalID, "")
		if err != nil {
			return err
		}
		weight := w.Weight
		if latest != nil {
			weight = latest.Weight
		}
		var a models.Animal
		if err := tx.Load(&a, store.EntityAnimal, accountID, w.AnimalID); err != nil {
			return err
		}
		if a.CurrentWeight != nil && *a.CurrentWeight == weight {
			return nil
		}
		return setCurrentWeight(tx, &a, &weight, &changes)
	})
	if err != nil {
		return models.WeighingRecord{}, models.Changes{}, err
	}
	return w, changes, nil
}

// DeleteWeighing removes a weighing and recomputes the animal's current weight
// from the remaining records. With none left the current weight is cleared.
func (s *Service) DeleteWeighing(ctx context.Context, accountID, id string) (models.Changes, error) {
	var changes models.Changes
	err := s.run(ctx, "weighing.delete", func(tx *store.Tx) error {
		var w models.WeighingRecord
		if err := tx.Load(&w, store.EntityWeighing, accountID, id); err != nil {
			return err
		}
		if err := tx.Delete(&w); err != nil {
			return err
		}
		changes.Deleted = append(changes.Deleted, id)

		latest, err := tx.LatestWeighing(w.AnimalID, "")
		if err != nil {
			return err
		}
		var a models.Animal
		if err := tx.Load(&a, store.EntityAnimal, accountID, w.AnimalID); err != nil {
			return err
		}
		var weight *float64
		if latest != nil {
			weight = &latest.Weight
		}
		return setCurrentWeight(tx, &a, weight, &changes)
	})
	if err != nil {
		return models.Changes{}, err
	}
	return changes, nil
}

func setCurrentWeight(tx *store.Tx, a *models.Animal, weight *float64, changes *models.Changes) error {
	if err := tx.SetCurrentWeight(a.ID, weight); err != nil {
		return err
	}
	if weight != nil {
		v := *weight
		weight = &v
	}
	a.CurrentWeight = weight
	changes.TouchAnimal(*a)
	return nil
}
