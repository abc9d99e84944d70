package email

import (
	"context"
	"time"

	"go-payables/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type EmailRepository struct {
	Collection *mongo.Collection
}

func NewEmailRepository(mongodb *database.MongodbDB) *EmailRepository {
	return &EmailRepository{
		Collection: mongodb.DB.Collection("emails"),
	}
}

func (r *EmailRepository) Create(ctx context.Context, e *Email) error {
	_, err := r.Collection.InsertOne(ctx, e)
	return err
}

func (r *EmailRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status EmailStatus, errMsg string) error {
	set := bson.M{"status": status, "error": errMsg}
	if status == EmailSent {
		set["sent_at"] = time.Now()
	}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}
