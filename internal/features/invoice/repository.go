package invoice

import (
	"context"
	"time"

	"go-payables/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, id string) (*Invoice, error)
	ListByOrganization(ctx context.Context, orgID string) ([]Invoice, error)
	CountByOrganization(ctx context.Context, orgID string) (int64, error)
	Update(ctx context.Context, id string, fields bson.M) error
}

type InvoiceRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewInvoiceRepository(mongodb *database.MongodbDB) InvoiceRepository {
	return &InvoiceRepositoryImpl{
		Collection: mongodb.DB.Collection("invoices"),
	}
}

func (r *InvoiceRepositoryImpl) Create(ctx context.Context, inv *Invoice) error {
	_, err := r.Collection.InsertOne(ctx, inv)
	return err
}

func (r *InvoiceRepositoryImpl) FindByID(ctx context.Context, id string) (*Invoice, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var inv Invoice
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&inv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepositoryImpl) ListByOrganization(ctx context.Context, orgID string) ([]Invoice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invoices []Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *InvoiceRepositoryImpl) CountByOrganization(ctx context.Context, orgID string) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"organization_id": orgID})
}

func (r *InvoiceRepositoryImpl) Update(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	fields["updated_at"] = time.Now()
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	return err
}
