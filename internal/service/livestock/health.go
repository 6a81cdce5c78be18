package livestock

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
)

func (s *Service) ListHealthRecords(ctx context.Context, accountID string) ([]models.HealthRecord, error) {
	out, err := s.store.Read(ctx).ListHealthRecords(accountID)
	if err != nil {
		return nil, fmt.Errorf("list health records: %w", err)
	}
	return out, nil
}

func (s *Service) GetHealthRecord(ctx context.Context, accountID, id string) (models.HealthRecord, error) {
	return s.store.Read(ctx).LoadHealthRecord(accountID, id)
}

// CreateHealthRecord logs an application to a set of animals. The supply and
// every animal must belong to the account.
func (s *Service) CreateHealthRecord(ctx context.Context, accountID string, in models.HealthInput) (models.HealthRecord, models.Changes, error) {
	var changes models.Changes
	if err := s.check(in); err != nil {
		return models.HealthRecord{}, changes, err
	}

	rec := models.HealthRecord{ID: uuid.NewString(), AccountID: accountID}
	err := s.run(ctx, "health.create", func(tx *store.Tx) error {
		if err := applyHealth(tx, accountID, &rec, in); err != nil {
			return err
		}
		if err := tx.Insert(&rec); err != nil {
			return err
		}
		if err := tx.ReplaceHealthAnimals(rec.ID, rec.AnimalIDs); err != nil {
			return err
		}
		changes.Health = append(changes.Health, rec)
		return nil
	})
	if err != nil {
		return models.HealthRecord{}, models.Changes{}, err
	}
	return rec, changes, nil
}

// UpdateHealthRecord replaces the record fields and its whole animal set.
func (s *Service) UpdateHealthRecord(ctx context.Context, accountID, id string, in models.HealthInput) (models.HealthRecord, models.Changes, error) {
	var changes models.Changes
	if err := s.check(in); err != nil {
		return models.HealthRecord{}, changes, err
	}

	var rec models.HealthRecord
	err := s.run(ctx, "health.update", func(tx *store.Tx) error {
		var err error
		if rec, err = tx.LoadHealthRecord(accountID, id); err != nil {
			return err
		}
		if err := applyHealth(tx, accountID, &rec, in); err != nil {
			return err
		}
		if err := tx.Save(&rec); err != nil {
			return err
		}
		if err := tx.ReplaceHealthAnimals(rec.ID, rec.AnimalIDs); err != nil {
			return err
		}
		changes.Health = append(changes.Health, rec)
		return nil
	})
	if err != nil {
		return models.HealthRecord{}, models.Changes{}, err
	}
	return rec, changes, nil
}

func (s *Service) DeleteHealthRecord(ctx context.Context, accountID, id string) (models.Changes, error) {
	err := s.run(ctx, "health.delete", func(tx *store.Tx) error {
		rec, err := tx.LoadHealthRecord(accountID, id)
		if err != nil {
			return err
		}
		if err := tx.ReplaceHealthAnimals(rec.ID, nil); err != nil {
			return err
		}
		return tx.Delete(&rec)
	})
	if err != nil {
		return models.Changes{}, err
	}
	return models.Changes{Deleted: []string{id}}, nil
}

func applyHealth(tx *store.Tx, accountID string, rec *models.HealthRecord, in models.HealthInput) error {
	var sup models.Supply
	if err := tx.Load(&sup, store.EntitySupply, accountID, in.SupplyID); err != nil {
		return err
	}
	if _, err := tx.LoadAnimals(accountID, in.AnimalIDs); err != nil {
		return err
	}

	ids := append([]string(nil), in.AnimalIDs...)
	sort.Strings(ids)

	rec.Date = in.Date
	rec.SupplyID = in.SupplyID
	rec.Quantity = in.Quantity
	rec.Responsible = in.Responsible
	rec.Notes = in.Notes
	rec.NextApplicationDate = in.NextApplicationDate
	rec.AnimalIDs = ids
	return nil
}
