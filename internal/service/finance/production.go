package finance

import (
	"sort"
	"time"

	"github.com/mamadbah2/proporco/internal/domain/models"
)

const day = 24 * time.Hour

// Growth summarizes the weighing history of one animal.
type Growth struct {
	AnimalID         string  `json:"animal_id"`
	Identifier       string  `json:"identifier"`
	FirstWeight      float64 `json:"first_weight"`
	LastWeight       float64 `json:"last_weight"`
	Days             float64 `json:"days"`
	AverageDailyGain float64 `json:"average_daily_gain"`
	TargetWeight     float64 `json:"target_weight"`
	ReadyForSale     bool    `json:"ready_for_sale"`
}

// SupplyAlert flags a supply that is low or expiring.
type SupplyAlert struct {
	SupplyID  string     `json:"supply_id"`
	Name      string     `json:"name"`
	Stock     float64    `json:"stock"`
	Minimum   *float64   `json:"minimum_stock,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	LowStock  bool       `json:"low_stock"`
	Expiring  bool       `json:"expiring"`
}

// Production is the herd and inventory status at a point in time.
type Production struct {
	Growth         []Growth              `json:"growth"`
	ReadyForSale   int                   `json:"ready_for_sale"`
	AverageWeight  float64               `json:"average_weight"`
	SupplyAlerts   []SupplyAlert         `json:"supply_alerts"`
	UpcomingHealth []models.HealthRecord `json:"upcoming_health"`
}

// AnimalGrowth computes average daily gain for every active animal, from its
// earliest to its latest weighing. Fewer than two weighings, or both on the same
// day, yield a gain of 0.
func AnimalGrowth(s Snapshot) []Growth {
	byAnimal := make(map[string][]models.WeighingRecord)
	for _, w := range s.Weighings {
		byAnimal[w.AnimalID] = append(byAnimal[w.AnimalID], w)
	}

	out := make([]Growth, 0, len(s.Animals))
	for _, a := range s.Animals {
		if a.Status != models.AnimalActive {
			continue
		}
		g := Growth{AnimalID: a.ID, Identifier: a.Identifier, TargetWeight: a.TargetWeight}
		history := byAnimal[a.ID]
		if len(history) > 0 {
			sort.SliceStable(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })
			first, last := history[0], history[len(history)-1]
			g.FirstWeight, g.LastWeight = first.Weight, last.Weight
			g.Days = last.Date.Sub(first.Date).Hours() / 24
			if g.Days > 0 {
				g.AverageDailyGain = (last.Weight - first.Weight) / g.Days
			}
		} else if a.CurrentWeight != nil {
			g.LastWeight = *a.CurrentWeight
		}
		g.ReadyForSale = a.TargetWeight > 0 && g.LastWeight >= a.TargetWeight
		out = append(out, g)
	}
	return out
}

// SupplyAlerts lists supplies at or below minimum stock, or expiring before now+horizon.
func SupplyAlerts(s Snapshot, now time.Time, horizon time.Duration) []SupplyAlert {
	limit := now.Add(horizon)
	var out []SupplyAlert
	for _, sup := range s.Supplies {
		alert := SupplyAlert{
			SupplyID:  sup.ID,
			Name:      sup.Name,
			Stock:     sup.Stock,
			Minimum:   sup.MinimumStock,
			ExpiresAt: sup.ExpiresAt,
			LowStock:  sup.LowStock(),
			Expiring:  sup.ExpiresAt != nil && !sup.ExpiresAt.After(limit),
		}
		if alert.LowStock || alert.Expiring {
			out = append(out, alert)
		}
	}
	return out
}

// UpcomingApplications lists health records whose next application falls
// between now and now+horizon, earliest first.
func UpcomingApplications(s Snapshot, now time.Time, horizon time.Duration) []models.HealthRecord {
	limit := now.Add(horizon)
	var out []models.HealthRecord
	for _, r := range s.Health {
		if r.NextApplicationDate == nil {
			continue
		}
		next := *r.NextApplicationDate
		if next.Before(now.Truncate(day)) || next.After(limit) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextApplicationDate.Before(*out[j].NextApplicationDate)
	})
	return out
}

// BuildProduction derives the production view at now.
func BuildProduction(s Snapshot, now time.Time, horizon time.Duration) Production {
	growth := AnimalGrowth(s)
	p := Production{
		Growth:         growth,
		SupplyAlerts:   SupplyAlerts(s, now, horizon),
		UpcomingHealth: UpcomingApplications(s, now, horizon),
	}
	var weighed int
	var total float64
	for _, g := range growth {
		if g.ReadyForSale {
			p.ReadyForSale++
		}
		if g.LastWeight > 0 {
			weighed++
			total += g.LastWeight
		}
	}
	if weighed > 0 {
		p.AverageWeight = total / float64(weighed)
	}
	return p
}
