package finance

import "github.com/mamadbah2/proporco/internal/domain/models"

// AtRiskOccupancy is the occupancy percentage above which an enclosure is flagged.
const AtRiskOccupancy = 90.0

// FarmSummary is the farm-wide financial position for a snapshot.
type FarmSummary struct {
	TotalRevenue    float64 `json:"total_revenue"`
	FeedCost        float64 `json:"feed_cost"`
	HealthCost      float64 `json:"health_cost"`
	OperationalCost float64 `json:"operational_cost"`
	PurchaseCost    float64 `json:"purchase_cost"`
	CommissionCost  float64 `json:"commission_cost"`
	TotalCost       float64 `json:"total_cost"`
	GrossProfit     float64 `json:"gross_profit"`
	Margin          float64 `json:"margin"`
	ActiveAnimals   int     `json:"active_animals"`
	SoldAnimals     int     `json:"sold_animals"`
	DeadAnimals     int     `json:"dead_animals"`
	// AnimalTotals sums the per-animal allocation. Its commission comes from
	// sale lines and can differ from CommissionCost, which uses sale totals.
	AnimalTotals AnimalTotals `json:"animal_totals"`
}

// AnimalTotals is the sum of AnimalFinancials over every animal.
type AnimalTotals struct {
	PurchaseCost   float64 `json:"purchase_cost"`
	FeedCost       float64 `json:"feed_cost"`
	HealthCost     float64 `json:"health_cost"`
	CommissionCost float64 `json:"commission_cost"`
	TotalCost      float64 `json:"total_cost"`
	Revenue        float64 `json:"revenue"`
	Profit         float64 `json:"profit"`
}

// Summarize computes the farm-wide summary. rows must come from AllocateAnimals
// on the same snapshot.
func Summarize(s Snapshot, rows []AnimalFinancials) FarmSummary {
	supplies := s.supplyIndex()
	var sum FarmSummary

	for _, sale := range s.Sales {
		sum.TotalRevenue += sale.TotalValue
		sum.CommissionCost += sale.Commission()
	}
	for _, r := range s.Feedings {
		sum.FeedCost += r.TotalCost
	}
	for _, r := range s.Health {
		sum.HealthCost += HealthRecordCost(r, supplies)
	}
	for _, c := range s.Costs {
		sum.OperationalCost += c.Amount
	}
	for _, a := range s.Animals {
		sum.PurchaseCost += a.PurchasePrice
		switch a.Status {
		case models.AnimalActive:
			sum.ActiveAnimals++
		case models.AnimalSold:
			sum.SoldAnimals++
		case models.AnimalDead:
			sum.DeadAnimals++
		}
	}

	sum.TotalCost = sum.FeedCost + sum.HealthCost + sum.OperationalCost + sum.PurchaseCost + sum.CommissionCost
	sum.GrossProfit = sum.TotalRevenue - sum.TotalCost
	if sum.TotalRevenue > 0 {
		sum.Margin = sum.GrossProfit / sum.TotalRevenue * 100
	}

	for _, r := range rows {
		sum.AnimalTotals.PurchaseCost += r.PurchaseCost
		sum.AnimalTotals.FeedCost += r.FeedCost
		sum.AnimalTotals.HealthCost += r.HealthCost
		sum.AnimalTotals.CommissionCost += r.CommissionCost
		sum.AnimalTotals.TotalCost += r.TotalCost
		sum.AnimalTotals.Revenue += r.Revenue
		sum.AnimalTotals.Profit += r.Profit
	}
	return sum
}

// Occupancy describes how full one enclosure is.
type Occupancy struct {
	EnclosureID string  `json:"enclosure_id"`
	Name        string  `json:"name"`
	Capacity    int     `json:"capacity"`
	Active      int     `json:"active"`
	Percent     float64 `json:"percent"`
	AtRisk      bool    `json:"at_risk"`
}

// EnclosureOccupancy reports occupancy for every enclosure in snapshot order.
func EnclosureOccupancy(s Snapshot) []Occupancy {
	population := s.activePopulation()
	out := make([]Occupancy, 0, len(s.Enclosures))
	for _, e := range s.Enclosures {
		o := Occupancy{
			EnclosureID: e.ID,
			Name:        e.Name,
			Capacity:    e.Capacity,
			Active:      population[e.ID],
		}
		if e.Capacity > 0 {
			o.Percent = float64(o.Active) / float64(e.Capacity) * 100
		}
		o.AtRisk = o.Percent > AtRiskOccupancy
		out = append(out, o)
	}
	return out
}

// Report bundles everything derived for one account and period.
type Report struct {
	Period    Period             `json:"period"`
	Summary   FarmSummary        `json:"summary"`
	Animals   []AnimalFinancials `json:"animals"`
	Occupancy []Occupancy        `json:"occupancy"`
}

// BuildReport filters the snapshot to p and derives the full report.
func BuildReport(s Snapshot, p Period) Report {
	scoped := s.Within(p)
	rows := AllocateAnimals(scoped)
	return Report{
		Period:    p,
		Summary:   Summarize(scoped, rows),
		Animals:   rows,
		Occupancy: EnclosureOccupancy(scoped),
	}
}
