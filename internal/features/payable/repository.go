package payable

import (
	"context"
	"time"

	"go-payables/internal/database"
	"go-payables/internal/features/approval"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PayableRepository interface {
	Create(ctx context.Context, p *Payable) error
	FindByID(ctx context.Context, id string) (*Payable, error)
	ListByOrganization(ctx context.Context, orgID string) ([]Payable, error)
	ListApprovedUnsynced(ctx context.Context, limit int64) ([]Payable, error)
	Update(ctx context.Context, id string, fields bson.M) error

	// SetApprovalOutcome implements the evaluator's payable boundary:
	// called when a workflow reaches a terminal state
	SetApprovalOutcome(ctx context.Context, payableID string, outcome approval.WorkflowStatus, actorID string) error

	MarkPaid(ctx context.Context, id string, method PaymentMethod, paidBy string) error
	MarkLedgerSynced(ctx context.Context, id string, at time.Time) error
}

type PayableRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewPayableRepository(mongodb *database.MongodbDB) PayableRepository {
	return &PayableRepositoryImpl{
		Collection: mongodb.DB.Collection("payables"),
	}
}

func (r *PayableRepositoryImpl) Create(ctx context.Context, p *Payable) error {
	_, err := r.Collection.InsertOne(ctx, p)
	return err
}

func (r *PayableRepositoryImpl) FindByID(ctx context.Context, id string) (*Payable, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var p Payable
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PayableRepositoryImpl) ListByOrganization(ctx context.Context, orgID string) ([]Payable, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.Collection.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payables []Payable
	if err = cursor.All(ctx, &payables); err != nil {
		return nil, err
	}
	return payables, nil
}

func (r *PayableRepositoryImpl) ListApprovedUnsynced(ctx context.Context, limit int64) ([]Payable, error) {
	filter := bson.M{
		"status":           bson.M{"$in": []PayableStatus{StatusApproved, StatusPaid}},
		"ledger_synced_at": bson.M{"$exists": false},
	}
	opts := options.Find().SetSort(bson.M{"updated_at": 1}).SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payables []Payable
	if err = cursor.All(ctx, &payables); err != nil {
		return nil, err
	}
	return payables, nil
}

func (r *PayableRepositoryImpl) Update(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	fields["updated_at"] = time.Now()
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	return err
}

func (r *PayableRepositoryImpl) SetApprovalOutcome(ctx context.Context, payableID string, outcome approval.WorkflowStatus, actorID string) error {
	status := StatusApproved
	if outcome == approval.StatusRejected {
		status = StatusRejected
	}
	return r.Update(ctx, payableID, bson.M{
		"status":          status,
		"approval_status": string(outcome),
	})
}

func (r *PayableRepositoryImpl) MarkPaid(ctx context.Context, id string, method PaymentMethod, paidBy string) error {
	now := time.Now()
	return r.Update(ctx, id, bson.M{
		"status":         StatusPaid,
		"payment_method": method,
		"paid_at":        now,
		"paid_by":        paidBy,
	})
}

func (r *PayableRepositoryImpl) MarkLedgerSynced(ctx context.Context, id string, at time.Time) error {
	return r.Update(ctx, id, bson.M{"ledger_synced_at": at})
}
