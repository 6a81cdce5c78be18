package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/proporco/internal/domain/models"
)

const reportsCollection = "weekly_reports"

// ReportArchive stores the weekly financial digests sent to each account.
type ReportArchive interface {
	SaveReport(ctx context.Context, report models.ReportArchive) error
	RecentReports(ctx context.Context, accountID string, limit int64) ([]models.ReportArchive, error)
}

// MongoDBRepository implements ReportArchive on a MongoDB collection.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects and pings the server.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: reportsCollection,
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return repo, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "period_end", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create report index: %w", err)
	}
	return nil
}

// SaveReport inserts one archived digest.
func (r *MongoDBRepository) SaveReport(ctx context.Context, report models.ReportArchive) error {
	if _, err := r.collection().InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert weekly report: %w", err)
	}
	return nil
}

// RecentReports returns the account's latest digests, newest period first.
func (r *MongoDBRepository) RecentReports(ctx context.Context, accountID string, limit int64) ([]models.ReportArchive, error) {
	opts := options.Find().SetSort(bson.D{{Key: "period_end", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection().Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly reports: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.ReportArchive
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode weekly reports: %w", err)
	}
	return out, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
