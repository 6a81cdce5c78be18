package livestock

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/repository/store"
)

func (s *Service) ListCosts(ctx context.Context, accountID string) ([]models.Cost, error) {
	var out []models.Cost
	if err := s.store.Read(ctx).List(&out, accountID, "date DESC"); err != nil {
		return nil, fmt.Errorf("list costs: %w", err)
	}
	return out, nil
}

func (s *Service) GetCost(ctx context.Context, accountID, id string) (models.Cost, error) {
	var c models.Cost
	if err := s.store.Read(ctx).Load(&c, store.EntityCost, accountID, id); err != nil {
		return models.Cost{}, err
	}
	return c, nil
}

func (s *Service) CreateCost(ctx context.Context, accountID string, in models.CostInput) (models.Cost, models.Changes, error) {
	if err := s.check(in); err != nil {
		return models.Cost{}, models.Changes{}, err
	}
	c := models.Cost{ID: uuid.NewString(), AccountID: accountID}
	applyCost(&c, in)
	err := s.run(ctx, "cost.create", func(tx *store.Tx) error {
		return tx.Insert(&c)
	})
	if err != nil {
		return models.Cost{}, models.Changes{}, err
	}
	return c, models.Changes{}, nil
}

func (s *Service) UpdateCost(ctx context.Context, accountID, id string, in models.CostInput) (models.Cost, models.Changes, error) {
	if err := s.check(in); err != nil {
		return models.Cost{}, models.Changes{}, err
	}
	var c models.Cost
	err := s.run(ctx, "cost.update", func(tx *store.Tx) error {
		if err := tx.Load(&c, store.EntityCost, accountID, id); err != nil {
			return err
		}
		applyCost(&c, in)
		return tx.Save(&c)
	})
	if err != nil {
		return models.Cost{}, models.Changes{}, err
	}
	return c, models.Changes{}, nil
}

func (s *Service) DeleteCost(ctx context.Context, accountID, id string) (models.Changes, error) {
	err := s.run(ctx, "cost.delete", func(tx *store.Tx) error {
		var c models.Cost
		if err := tx.Load(&c, store.EntityCost, accountID, id); err != nil {
			return err
		}
		return tx.Delete(&c)
	})
	if err != nil {
		return models.Changes{}, err
	}
	return models.Changes{Deleted: []string{id}}, nil
}

func applyCost(c *models.Cost, in models.CostInput) {
	c.Category = in.Category
	c.Description = in.Description
	c.Amount = in.Amount
	c.Date = in.Date
	c.Notes = in.Notes
}
