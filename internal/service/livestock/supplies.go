package livestock

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
)

func (s *Service) ListSupplies(ctx context.Context, accountID string) ([]models.Supply, error) {
	var out []models.Supply
	if err := s.store.Read(ctx).List(&out, accountID, "name"); err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	return out, nil
}

// LowStockSupplies lists supplies at or below their minimum stock.
func (s *Service) LowStockSupplies(ctx context.Context, accountID string) ([]models.Supply, error) {
	var out []models.Supply
	err := s.store.Read(ctx).Find(&out, accountID, "name", "minimum_stock IS NOT NULL AND stock <= minimum_stock")
	if err != nil {
		return nil, fmt.Errorf("list low stock supplies: %w", err)
	}
	return out, nil
}

func (s *Service) GetSupply(ctx context.Context, accountID, id string) (models.Supply, error) {
	var sup models.Supply
	if err := s.store.Read(ctx).Load(&sup, store.EntitySupply, accountID, id); err != nil {
		return models.Supply{}, err
	}
	return sup, nil
}

func (s *Service) CreateSupply(ctx context.Context, accountID string, in models.SupplyInput) (models.Supply, models.Changes, error) {
	if err := s.check(in); err != nil {
		return models.Supply{}, models.Changes{}, err
	}
	sup := models.Supply{ID: uuid.NewString(), AccountID: accountID}
	applySupply(&sup, in)
	err := s.run(ctx, "supply.create", func(tx *store.Tx) error {
		return tx.Insert(&sup)
	})
	if err != nil {
		return models.Supply{}, models.Changes{}, err
	}
	return sup, models.Changes{}, nil
}

// UpdateSupply replaces the supply fields. Costs already stored on compounds
// and feeding records keep the unit cost they were computed with.
func (s *Service) UpdateSupply(ctx context.Context, accountID, id string, in models.SupplyInput) (models.Supply, models.Changes, error) {
	if err := s.check(in); err != nil {
		return models.Supply{}, models.Changes{}, err
	}
	var sup models.Supply
	err := s.run(ctx, "supply.update", func(tx *store.Tx) error {
		if err := tx.Load(&sup, store.EntitySupply, accountID, id); err != nil {
			return err
		}
		applySupply(&sup, in)
		return tx.Save(&sup)
	})
	if err != nil {
		return models.Supply{}, models.Changes{}, err
	}
	return sup, models.Changes{}, nil
}

// DeleteSupply refuses while any compound, feeding or health record uses the supply.
func (s *Service) DeleteSupply(ctx context.Context, accountID, id string) (models.Changes, error) {
	var changes models.Changes
	err := s.run(ctx, "supply.delete", func(tx *store.Tx) error {
		var sup models.Supply
		if err := tx.Load(&sup, store.EntitySupply, accountID, id); err != nil {
			return err
		}
		refs := []struct {
			model any
			what  string
		}{
			{&models.CompoundIngredient{}, "feed compounds"},
			{&models.FeedingRecord{}, "feeding records"},
			{&models.HealthRecord{}, "health records"},
		}
		for _, ref := range refs {
			n, err := tx.Count(ref.model, "supply_id = ?", id)
			if err != nil {
				return err
			}
			if n > 0 {
				return &errs.ConflictError{Entity: store.EntitySupply, ID: id, Reason: fmt.Sprintf("used by %d %s", n, ref.what)}
			}
		}
		if err := tx.Delete(&sup); err != nil {
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

func applySupply(sup *models.Supply, in models.SupplyInput) {
	sup.Name = in.Name
	sup.Category = in.Category
	sup.Unit = in.Unit
	sup.UnitCost = in.UnitCost
	sup.Stock = in.Stock
	sup.MinimumStock = in.MinimumStock
	sup.Supplier = in.Supplier
	sup.ExpiresAt = in.ExpiresAt
	sup.Notes = in.Notes
}
