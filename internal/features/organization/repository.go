package organization

import (
	"context"
	"time"

	"go-payables/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id string) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	ListByMember(ctx context.Context, userID string) ([]Organization, error)
	UpdateMembers(ctx context.Context, id string, members []Member) error
	UpdateApprovalSettings(ctx context.Context, id string, settings ApprovalSettings) error
}

type OrganizationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewOrganizationRepository(mongodb *database.MongodbDB) OrganizationRepository {
	return &OrganizationRepositoryImpl{
		Collection: mongodb.DB.Collection("organizations"),
	}
}

func (r *OrganizationRepositoryImpl) Create(ctx context.Context, org *Organization) error {
	_, err := r.Collection.InsertOne(ctx, org)
	return err
}

func (r *OrganizationRepositoryImpl) FindByID(ctx context.Context, id string) (*Organization, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var org Organization
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&org)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepositoryImpl) FindBySlug(ctx context.Context, slug string) (*Organization, error) {
	var org Organization
	err := r.Collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&org)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepositoryImpl) ListByMember(ctx context.Context, userID string) ([]Organization, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"members.user_id": oid})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orgs []Organization
	if err = cursor.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *OrganizationRepositoryImpl) UpdateMembers(ctx context.Context, id string, members []Member) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"members":    members,
		"updated_at": time.Now(),
	}}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *OrganizationRepositoryImpl) UpdateApprovalSettings(ctx context.Context, id string, settings ApprovalSettings) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"approval_settings": settings,
		"updated_at":        time.Now(),
	}}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}
