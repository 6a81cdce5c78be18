package models

import "time"

// The input types below are the commands accepted by the livestock service.
// Create and update share one shape; updates replace every writable field.

type AnimalInput struct {
	Identifier    string       `json:"identifier" validate:"required,max=60"`
	BirthDate     time.Time    `json:"birth_date" validate:"required"`
	InitialWeight float64      `json:"initial_weight" validate:"finite,gte=0"`
	TargetWeight  float64      `json:"target_weight" validate:"finite,gte=0"`
	EnclosureID   *string      `json:"enclosure_id" validate:"omitempty,uuid"`
	PurchasePrice float64      `json:"purchase_price" validate:"finite,gte=0"`
	SalePrice     *float64     `json:"sale_price" validate:"omitempty,finite,gte=0"`
	SaleDate      *time.Time   `json:"sale_date"`
	Breed         string       `json:"breed" validate:"max=60"`
	Sex           string       `json:"sex" validate:"omitempty,oneof=male female"`
	Origin        string       `json:"origin" validate:"max=120"`
	Status        AnimalStatus `json:"status" validate:"omitempty,oneof=active dead"`
	Notes         string       `json:"notes"`
}

type EnclosureInput struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Capacity int     `json:"capacity" validate:"gt=0"`
	Area     float64 `json:"area" validate:"finite,gte=0"`
	Type     string  `json:"type" validate:"max=60"`
	Notes    string  `json:"notes"`
}

type SupplyInput struct {
	Name         string         `json:"name" validate:"required,max=120"`
	Category     SupplyCategory `json:"category" validate:"required,oneof=vaccine medicine feed"`
	Unit         string         `json:"unit" validate:"max=20"`
	UnitCost     float64        `json:"unit_cost" validate:"finite,gte=0"`
	Stock        float64        `json:"stock" validate:"finite,gte=0"`
	MinimumStock *float64       `json:"minimum_stock" validate:"omitempty,finite,gte=0"`
	Supplier     string         `json:"supplier" validate:"max=120"`
	ExpiresAt    *time.Time     `json:"expires_at"`
	Notes        string         `json:"notes"`
}

type IngredientInput struct {
	SupplyID string  `json:"supply_id" validate:"required,uuid"`
	Quantity float64 `json:"quantity" validate:"finite,gte=0"`
}

type FeedCompoundInput struct {
	Name        string            `json:"name" validate:"required,max=120"`
	Ingredients []IngredientInput `json:"ingredients" validate:"dive"`
}

type FeedingInput struct {
	Date        time.Time `json:"date" validate:"required"`
	EnclosureID *string   `json:"enclosure_id" validate:"omitempty,uuid"`
	AnimalID    *string   `json:"animal_id" validate:"omitempty,uuid"`
	SupplyID    *string   `json:"supply_id" validate:"omitempty,uuid"`
	CompoundID  *string   `json:"compound_id" validate:"omitempty,uuid"`
	Quantity    float64   `json:"quantity" validate:"finite,gt=0"`
	Notes       string    `json:"notes"`
}

type HealthInput struct {
	Date                time.Time  `json:"date" validate:"required"`
	SupplyID            string     `json:"supply_id" validate:"required,uuid"`
	Quantity            float64    `json:"quantity" validate:"finite,gt=0"`
	Responsible         string     `json:"responsible" validate:"max=120"`
	Notes               string     `json:"notes"`
	NextApplicationDate *time.Time `json:"next_application_date"`
	AnimalIDs           []string   `json:"animal_ids" validate:"required,min=1,unique,dive,uuid"`
}

type WeighingInput struct {
	AnimalID string    `json:"animal_id" validate:"required,uuid"`
	Date     time.Time `json:"date" validate:"required"`
	Weight   float64   `json:"weight" validate:"finite,gt=0"`
	Notes    string    `json:"notes"`
}

type SaleLineInput struct {
	AnimalID string  `json:"animal_id" validate:"required,uuid"`
	Value    float64 `json:"value" validate:"finite,gte=0"`
}

type SaleInput struct {
	Date                 time.Time       `json:"date" validate:"required"`
	TotalWeight          float64         `json:"total_weight" validate:"finite,gte=0"`
	TotalValue           float64         `json:"total_value" validate:"finite,gte=0"`
	CommissionPercentage float64         `json:"commission_percentage" validate:"finite,gte=0,lte=100"`
	Buyer                string          `json:"buyer" validate:"max=120"`
	Notes                string          `json:"notes"`
	Lines                []SaleLineInput `json:"lines" validate:"required,min=1,unique=AnimalID,dive"`
}

type CostInput struct {
	Category    CostCategory `json:"category" validate:"required,oneof=commission operational administrative other"`
	Description string       `json:"description" validate:"required,max=255"`
	Amount      float64      `json:"amount" validate:"finite,gte=0"`
	Date        time.Time    `json:"date" validate:"required"`
	Notes       string       `json:"notes"`
}

// Changes lists every entity written by a reconciled operation, including side effects.
type Changes struct {
	Animals   []Animal         `json:"animals,omitempty"`
	Weighings []WeighingRecord `json:"weighings,omitempty"`
	Sales     []Sale           `json:"sales,omitempty"`
	Health    []HealthRecord   `json:"health_records,omitempty"`
	Compounds []FeedCompound   `json:"compounds,omitempty"`
	Feedings  []FeedingRecord  `json:"feedings,omitempty"`
	Deleted   []string         `json:"deleted,omitempty"`
}

// TouchAnimal records an animal write, replacing an earlier entry for the same id.
func (c *Changes) TouchAnimal(a Animal) {
	for i := range c.Animals {
		if c.Animals[i].ID == a.ID {
			c.Animals[i] = a
			return
		}
	}
	c.Animals = append(c.Animals, a)
}
