package livestock

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
)

func (s *Service) ListAnimals(ctx context.Context, accountID string) ([]models.Animal, error) {
	var out []models.Animal
	if err := s.store.Read(ctx).List(&out, accountID, "identifier"); err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}
	return out, nil
}

func (s *Service) GetAnimal(ctx context.Context, accountID, id string) (models.Animal, error) {
	var a models.Animal
	if err := s.store.Read(ctx).Load(&a, store.EntityAnimal, accountID, id); err != nil {
		return models.Animal{}, err
	}
	return a, nil
}

// FindAnimalByIdentifier resolves an ear tag within the account.
func (s *Service) FindAnimalByIdentifier(ctx context.Context, accountID, identifier string) (models.Animal, error) {
	var found []models.Animal
	if err := s.store.Read(ctx).Find(&found, accountID, "created_at", "identifier = ?", identifier); err != nil {
		return models.Animal{}, fmt.Errorf("find animal: %w", err)
	}
	if len(found) == 0 {
		return models.Animal{}, &errs.NotFoundError{Entity: store.EntityAnimal, ID: identifier}
	}
	return found[0], nil
}

// CreateAnimal registers an active animal. Status and current weight are not
// taken from the input.
func (s *Service) CreateAnimal(ctx context.Context, accountID string, in models.AnimalInput) (models.Animal, models.Changes, error) {
	var changes models.Changes
	if err := s.check(in); err != nil {
		return models.Animal{}, changes, err
	}

	a := models.Animal{ID: uuid.NewString(), AccountID: accountID, Status: models.AnimalActive}
	applyAnimal(&a, in)

	err := s.run(ctx, "animal.create", func(tx *store.Tx) error {
		if err := ownedEnclosure(tx, accountID, in.EnclosureID); err != nil {
			return err
		}
		if err := tx.Insert(&a); err != nil {
			return err
		}
		changes.TouchAnimal(a)
		return nil
	})
	if err != nil {
		return models.Animal{}, models.Changes{}, err
	}
	return a, changes, nil
}

// UpdateAnimal replaces the writable fields. A status in the input may move an
// animal between active and dead; sold animals only change status through
// their sale.
func (s *Service) UpdateAnimal(ctx context.Context, accountID, id string, in models.AnimalInput) (models.Animal, models.Changes, error) {
	var changes models.Changes
	if err := s.check(in); err != nil {
		return models.Animal{}, changes, err
	}

	var a models.Animal
	err := s.run(ctx, "animal.update", func(tx *store.Tx) error {
		if err := tx.Load(&a, store.EntityAnimal, accountID, id); err != nil {
			return err
		}
		if err := ownedEnclosure(tx, accountID, in.EnclosureID); err != nil {
			return err
		}
		if in.Status != "" && in.Status != a.Status {
			if a.Status == models.AnimalSold {
				return &errs.ConflictError{Entity: store.EntityAnimal, ID: id, Reason: "sold animals change status through their sale"}
			}
			a.Status = in.Status
		}
		applyAnimal(&a, in)
		if err := tx.Save(&a); err != nil {
			return err
		}
		changes.TouchAnimal(a)
		return nil
	})
	if err != nil {
		return models.Animal{}, models.Changes{}, err
	}
	return a, changes, nil
}

// DeleteAnimal removes an animal with its weighings and health associations.
// Feeding records keep their cost but lose the animal reference. Animals on a
// sale line cannot be deleted.
func (s *Service) DeleteAnimal(ctx context.Context, accountID, id string) (models.Changes, error) {
	var changes models.Changes
	err := s.run(ctx, "animal.delete", func(tx *store.Tx) error {
		var a models.Animal
		if err := tx.Load(&a, store.EntityAnimal, accountID, id); err != nil {
			return err
		}
		line, err := tx.SaleLineForAnimal(id)
		if err != nil {
			return err
		}
		if line != nil {
			return &errs.ConflictError{Entity: store.EntityAnimal, ID: id, Reason: "animal is listed on sale " + line.SaleID}
		}
		if err := tx.DeleteWhere(&models.WeighingRecord{}, "animal_id = ?", id); err != nil {
			return err
		}
		if err := tx.DeleteWhere(&models.HealthRecordAnimal{}, "animal_id = ?", id); err != nil {
			return err
		}
		if err := tx.Nullify(&models.FeedingRecord{}, "animal_id", "animal_id = ?", id); err != nil {
			return err
		}
		if err := tx.Delete(&a); err != nil {
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

func applyAnimal(a *models.Animal, in models.AnimalInput) {
	a.Identifier = in.Identifier
	a.BirthDate = in.BirthDate
	a.InitialWeight = in.InitialWeight
	a.TargetWeight = in.TargetWeight
	a.EnclosureID = in.EnclosureID
	a.PurchasePrice = in.PurchasePrice
	a.SalePrice = in.SalePrice
	a.SaleDate = in.SaleDate
	a.Breed = in.Breed
	a.Sex = in.Sex
	a.Origin = in.Origin
	a.Notes = in.Notes
}

func ownedEnclosure(tx *store.Tx, accountID string, id *string) error {
	if id == nil {
		return nil
	}
	var e models.Enclosure
	return tx.Load(&e, store.EntityEnclosure, accountID, *id)
}

func ownedAnimal(tx *store.Tx, accountID string, id *string) error {
	if id == nil {
		return nil
	}
	var a models.Animal
	return tx.Load(&a, store.EntityAnimal, accountID, *id)
}
