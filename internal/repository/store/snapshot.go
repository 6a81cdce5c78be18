package store

import (
	"context"
	"fmt"

	"github.com/mamadbah2/proporco/internal/service/finance"
)

// LoadSnapshot reads every record owned by the account in one read transaction.
func (s *Store) LoadSnapshot(ctx context.Context, accountID string) (finance.Snapshot, error) {
	var snap finance.Snapshot
	err := s.RunInTx(ctx, func(tx *Tx) error {
		var err error
		if err = tx.List(&snap.Animals, accountID, "created_at"); err != nil {
			return err
		}
		if err = tx.List(&snap.Enclosures, accountID, "name"); err != nil {
			return err
		}
		if err = tx.List(&snap.Supplies, accountID, "name"); err != nil {
			return err
		}
		if snap.Compounds, err = tx.ListCompounds(accountID); err != nil {
			return err
		}
		if err = tx.List(&snap.Feedings, accountID, "date"); err != nil {
			return err
		}
		if snap.Health, err = tx.ListHealthRecords(accountID); err != nil {
			return err
		}
		if err = tx.List(&snap.Weighings, accountID, "date"); err != nil {
			return err
		}
		if snap.Sales, err = tx.ListSales(accountID); err != nil {
			return err
		}
		return tx.List(&snap.Costs, accountID, "date")
	})
	if err != nil {
		return finance.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}
