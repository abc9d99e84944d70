package payment

import (
	"context"

	"go-payables/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	FindByPayable(ctx context.Context, payableID string) (*Payment, error)
	ListByOrganization(ctx context.Context, orgID string) ([]Payment, error)
}

type PaymentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewPaymentRepository(mongodb *database.MongodbDB) PaymentRepository {
	return &PaymentRepositoryImpl{
		Collection: mongodb.DB.Collection("payments"),
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, p *Payment) error {
	_, err := r.Collection.InsertOne(ctx, p)
	return err
}

func (r *PaymentRepositoryImpl) FindByPayable(ctx context.Context, payableID string) (*Payment, error) {
	var p Payment
	err := r.Collection.FindOne(ctx, bson.M{"payable_id": payableID}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepositoryImpl) ListByOrganization(ctx context.Context, orgID string) ([]Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "paid_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}
