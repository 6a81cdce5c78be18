package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
)

// Entity names used in errors.
const (
	EntityAnimal    = "animal"
	EntityEnclosure = "enclosure"
	EntitySupply    = "supply"
	EntityCompound  = "feed compound"
	EntityFeeding   = "feeding record"
	EntityHealth    = "health record"
	EntityWeighing  = "weighing record"
	EntitySale      = "sale"
	EntityCost      = "cost"
)

// Load fetches dest by id and checks it belongs to accountID. A missing row is a
// NotFoundError; a row owned by someone else is an OwnershipError, which callers
// see as not found.
func (t *Tx) Load(dest models.Owned, entity, accountID, id string) error {
	err := t.db.Where("id = ?", id).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &errs.NotFoundError{Entity: entity, ID: id}
	}
	if err != nil {
		return errs.Storage("load "+entity, err)
	}
	if dest.OwnerID() != accountID {
		return &errs.OwnershipError{Entity: entity, ID: id}
	}
	return nil
}

// LoadAnimals loads every listed animal, failing on the first id that is missing
// or foreign. The result follows ids order.
func (t *Tx) LoadAnimals(accountID string, ids []string) ([]models.Animal, error) {
	out := make([]models.Animal, 0, len(ids))
	for _, id := range ids {
		var a models.Animal
		if err := t.Load(&a, EntityAnimal, accountID, id); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
