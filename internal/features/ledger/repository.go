package ledger

import (
	"context"

	"go-payables/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ExportRunRepository interface {
	Create(ctx context.Context, run *ExportRun) error
	Update(ctx context.Context, run *ExportRun) error
	List(ctx context.Context, limit int64) ([]ExportRun, error)
}

type ExportRunRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewExportRunRepository(mongodb *database.MongodbDB) ExportRunRepository {
	return &ExportRunRepositoryImpl{
		Collection: mongodb.DB.Collection("ledger_export_runs"),
	}
}

func (r *ExportRunRepositoryImpl) Create(ctx context.Context, run *ExportRun) error {
	if run.ID.IsZero() {
		run.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, run)
	return err
}

func (r *ExportRunRepositoryImpl) Update(ctx context.Context, run *ExportRun) error {
	_, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": run.ID}, run)
	return err
}

func (r *ExportRunRepositoryImpl) List(ctx context.Context, limit int64) ([]ExportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []ExportRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
