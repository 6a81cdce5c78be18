package livestock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
)

func (s *Service) ListCompounds(ctx context.Context, accountID string) ([]models.FeedCompound, error) {
	out, err := s.store.Read(ctx).ListCompounds(accountID)
	if err != nil {
		return nil, fmt.Errorf("list compounds: %w", err)
	}
	return out, nil
}

func (s *Service) GetCompound(ctx context.Context, accountID, id string) (models.FeedCompound, error) {
	return s.store.Read(ctx).LoadCompound(accountID, id)
}

// CreateCompound stores a compound priced from its ingredient supplies.
func (s *Service) CreateCompound(ctx context.Context, accountID string, in models.FeedCompoundInput) (models.FeedCompound, models.Changes, error) {
	var changes models.Changes
	if err := s.check(in); err != nil {
		return models.FeedCompound{}, changes, err
	}

	c := models.FeedCompound{ID: uuid.NewString(), AccountID: accountID, Name: in.Name}
	err := s.run(ctx, "compound.create", func(tx *store.Tx) error {
		ingredients, err := priceCompound(tx, accountID, &c, in.Ingredients)
		if err != nil {
			return err
		}
		if err := tx.Insert(&c); err != nil {
			return err
		}
		if err := tx.ReplaceIngredients(c.ID, ingredients); err != nil {
			return err
		}
		c.Ingredients = ingredients
		changes.Compounds = append(changes.Compounds, c)
		return nil
	})
	if err != nil {
		return models.FeedCompound{}, models.Changes{}, err
	}
	return c, changes, nil
}

// UpdateCompound replaces the name and the full ingredient list, then reprices.
func (s *Service) UpdateCompound(ctx context.Context, accountID, id string, in models.FeedCompoundInput) (models.FeedCompound, models.Changes, error) {
	var changes models.Changes
	if err := s.check(in); err != nil {
		return models.FeedCompound{}, changes, err
	}

	var c models.FeedCompound
	err := s.run(ctx, "compound.update", func(tx *store.Tx) error {
		var err error
		if c, err = tx.LoadCompound(accountID, id); err != nil {
			return err
		}
		c.Name = in.Name
		ingredients, err := priceCompound(tx, accountID, &c, in.Ingredients)
		if err != nil {
			return err
		}
		if err := tx.Save(&c); err != nil {
			return err
		}
		if err := tx.ReplaceIngredients(c.ID, ingredients); err != nil {
			return err
		}
		c.Ingredients = ingredients
		changes.Compounds = append(changes.Compounds, c)
		return nil
	})
	if err != nil {
		return models.FeedCompound{}, models.Changes{}, err
	}
	return c, changes, nil
}

// DeleteCompound refuses while feeding records reference the compound.
func (s *Service) DeleteCompound(ctx context.Context, accountID, id string) (models.Changes, error) {
	err := s.run(ctx, "compound.delete", func(tx *store.Tx) error {
		c, err := tx.LoadCompound(accountID, id)
		if err != nil {
			return err
		}
		n, err := tx.Count(&models.FeedingRecord{}, "compound_id = ?", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &errs.ConflictError{Entity: store.EntityCompound, ID: id, Reason: fmt.Sprintf("used by %d feeding records", n)}
		}
		if err := tx.DeleteWhere(&models.CompoundIngredient{}, "compound_id = ?", id); err != nil {
			return err
		}
		return tx.Delete(&c)
	})
	if err != nil {
		return models.Changes{}, err
	}
	return models.Changes{Deleted: []string{id}}, nil
}

// priceCompound loads every ingredient supply through the ownership guard and
// sets TotalCost and CostPerKg on c. CostPerKg is 0 when the ingredients weigh nothing.
func priceCompound(tx *store.Tx, accountID string, c *models.FeedCompound, in []models.IngredientInput) ([]models.CompoundIngredient, error) {
	supplies := make(map[string]models.Supply, len(in))
	ingredients := make([]models.CompoundIngredient, 0, len(in))
	total := decimal.Zero
	weight := decimal.Zero

	for _, line := range in {
		sup, ok := supplies[line.SupplyID]
		if !ok {
			if err := tx.Load(&sup, store.EntitySupply, accountID, line.SupplyID); err != nil {
				return nil, err
			}
			supplies[line.SupplyID] = sup
		}
		qty := decimal.NewFromFloat(line.Quantity)
		total = total.Add(qty.Mul(decimal.NewFromFloat(sup.UnitCost)))
		weight = weight.Add(qty)
		ingredients = append(ingredients, models.CompoundIngredient{SupplyID: line.SupplyID, Quantity: line.Quantity})
	}

	c.TotalCost = total.InexactFloat64()
	c.CostPerKg = 0
	if !weight.IsZero() {
		c.CostPerKg = total.Div(weight).InexactFloat64()
	}
	return ingredients, nil
}
