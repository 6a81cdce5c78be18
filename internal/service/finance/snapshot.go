// Package finance derives cost, revenue and production metrics from a loaded
// snapshot of one account's records. Every function is pure.
package finance

import (
	"time"

	"github.com/mamadbah2/proporco/internal/domain/models"
)

// Period bounds date-bearing records. Zero bounds are open; both ends are inclusive.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && t.After(p.To) {
		return false
	}
	return true
}

// Snapshot is every record of one account at one point in time.
type Snapshot struct {
	Animals    []models.Animal
	Enclosures []models.Enclosure
	Supplies   []models.Supply
	Compounds  []models.FeedCompound
	Feedings   []models.FeedingRecord
	Health     []models.HealthRecord
	Weighings  []models.WeighingRecord
	Sales      []models.Sale
	Costs      []models.Cost
}

// Within returns a copy whose feeding, health, sale and cost records fall inside p.
// Animals, enclosures, supplies, compounds and weighings are kept whole.
func (s Snapshot) Within(p Period) Snapshot {
	out := s
	out.Feedings = filter(s.Feedings, func(r models.FeedingRecord) bool { return p.Contains(r.Date) })
	out.Health = filter(s.Health, func(r models.HealthRecord) bool { return p.Contains(r.Date) })
	out.Sales = filter(s.Sales, func(r models.Sale) bool { return p.Contains(r.Date) })
	out.Costs = filter(s.Costs, func(r models.Cost) bool { return p.Contains(r.Date) })
	return out
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// activePopulation counts active animals per enclosure id.
func (s Snapshot) activePopulation() map[string]int {
	pop := make(map[string]int)
	for _, a := range s.Animals {
		if a.Status == models.AnimalActive && a.EnclosureID != nil {
			pop[*a.EnclosureID]++
		}
	}
	return pop
}

func (s Snapshot) supplyIndex() map[string]models.Supply {
	idx := make(map[string]models.Supply, len(s.Supplies))
	for _, sup := range s.Supplies {
		idx[sup.ID] = sup
	}
	return idx
}

// HealthRecordCost is the supply unit cost times the applied quantity. Records
// whose supply is missing from the snapshot cost nothing.
func HealthRecordCost(r models.HealthRecord, supplies map[string]models.Supply) float64 {
	sup, ok := supplies[r.SupplyID]
	if !ok {
		return 0
	}
	return sup.UnitCost * r.Quantity
}
