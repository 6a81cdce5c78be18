package models

import "time"

// ReportArchive is the weekly financial digest persisted to MongoDB.
type ReportArchive struct {
	AccountID     string    `bson:"account_id" json:"account_id"`
	PeriodStart   time.Time `bson:"period_start" json:"period_start"`
	PeriodEnd     time.Time `bson:"period_end" json:"period_end"`
	ActiveAnimals int       `bson:"active_animals" json:"active_animals"`
	SoldAnimals   int       `bson:"sold_animals" json:"sold_animals"`
	Revenue       float64   `bson:"revenue" json:"revenue"`
	FeedCost      float64   `bson:"feed_cost" json:"feed_cost"`
	HealthCost    float64   `bson:"health_cost" json:"health_cost"`
	Operational   float64   `bson:"operational_cost" json:"operational_cost"`
	Commission    float64   `bson:"commission" json:"commission"`
	TotalCost     float64   `bson:"total_cost" json:"total_cost"`
	GrossProfit   float64   `bson:"gross_profit" json:"gross_profit"`
	Margin        float64   `bson:"margin" json:"margin"`
	Digest        string    `bson:"digest" json:"digest"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
