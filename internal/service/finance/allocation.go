package finance

import (
	"sort"

	"github.com/mamadbah2/proporco/internal/domain/models"
)

// AnimalFinancials is the cost and revenue allocated to one animal.
type AnimalFinancials struct {
	AnimalID       string   `json:"animal_id"`
	Identifier     string   `json:"identifier"`
	Status         string   `json:"status"`
	PurchaseCost   float64  `json:"purchase_cost"`
	FeedCost       float64  `json:"feed_cost"`
	HealthCost     float64  `json:"health_cost"`
	CommissionCost float64  `json:"commission_cost"`
	TotalCost      float64  `json:"total_cost"`
	Revenue        float64  `json:"revenue"`
	Profit         float64  `json:"profit"`
	ProfitMargin   *float64 `json:"profit_margin,omitempty"`
}

// AllocateAnimals computes AnimalFinancials for every animal in the snapshot,
// in snapshot order.
//
// Enclosure-level feeding (no animal set) is split evenly across the active
// animals housed in that enclosure when this runs, not when the feed was given.
// Health records are split evenly across the animals they name.
func AllocateAnimals(s Snapshot) []AnimalFinancials {
	population := s.activePopulation()
	supplies := s.supplyIndex()

	feed := make(map[string]float64)
	for _, r := range s.Feedings {
		if r.AnimalID != nil {
			feed[*r.AnimalID] += r.TotalCost
			continue
		}
		if r.EnclosureID == nil {
			continue
		}
		n := population[*r.EnclosureID]
		if n == 0 {
			continue
		}
		share := r.TotalCost / float64(n)
		for _, a := range s.Animals {
			if a.Status == models.AnimalActive && a.InEnclosure(*r.EnclosureID) {
				feed[a.ID] += share
			}
		}
	}

	health := make(map[string]float64)
	for _, r := range s.Health {
		if len(r.AnimalIDs) == 0 {
			continue
		}
		share := HealthRecordCost(r, supplies) / float64(len(r.AnimalIDs))
		for _, id := range r.AnimalIDs {
			health[id] += share
		}
	}

	type saleShare struct {
		value float64
		pct   float64
	}
	sold := make(map[string]saleShare)
	for _, sale := range s.Sales {
		for _, line := range sale.Lines {
			sold[line.AnimalID] = saleShare{value: line.Value, pct: sale.CommissionPercentage}
		}
	}

	out := make([]AnimalFinancials, 0, len(s.Animals))
	for _, a := range s.Animals {
		f := AnimalFinancials{
			AnimalID:     a.ID,
			Identifier:   a.Identifier,
			Status:       string(a.Status),
			PurchaseCost: a.PurchasePrice,
			FeedCost:     feed[a.ID],
			HealthCost:   health[a.ID],
		}
		if line, ok := sold[a.ID]; ok {
			f.CommissionCost = line.value * line.pct / 100
			f.Revenue = line.value
		}
		f.TotalCost = f.PurchaseCost + f.FeedCost + f.HealthCost + f.CommissionCost
		f.Profit = f.Revenue - f.TotalCost
		if f.Revenue > 0 {
			margin := f.Profit / f.Revenue * 100
			f.ProfitMargin = &margin
		}
		out = append(out, f)
	}
	return out
}

// TopProfitable returns up to n animals with revenue, ordered by profit
// descending. Ties keep snapshot order. n <= 0 returns every candidate.
func TopProfitable(rows []AnimalFinancials, n int) []AnimalFinancials {
	ranked := make([]AnimalFinancials, 0, len(rows))
	for _, r := range rows {
		if r.Revenue > 0 {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Profit > ranked[j].Profit })
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
