package approval

import (
	"context"
	"time"

	"go-payables/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApprovalRepository interface {
	Create(ctx context.Context, workflow *ApprovalWorkflow) error
	FindByID(ctx context.Context, id string) (*ApprovalWorkflow, error)
	FindByPayableID(ctx context.Context, payableID string) (*ApprovalWorkflow, error)
	ListPendingForApprover(ctx context.Context, userID string) ([]ApprovalWorkflow, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]ApprovalWorkflow, error)

	// ApplyDecision commits a decision atomically: the update only matches
	// while the workflow is still pending at expectedStep, so two approvers
	// racing on the same step cannot both win. Returns false when nothing
	// matched.
	ApplyDecision(ctx context.Context, id string, expectedStep int, workflow *ApprovalWorkflow) (bool, error)

	MarkStepReminded(ctx context.Context, id string, stepNumber int, at time.Time) error
	EnsureIndexes(ctx context.Context) error
}

type ApprovalRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewApprovalRepository(mongodb *database.MongodbDB) ApprovalRepository {
	return &ApprovalRepositoryImpl{
		Collection: mongodb.DB.Collection("approval_workflows"),
	}
}

func (r *ApprovalRepositoryImpl) Create(ctx context.Context, workflow *ApprovalWorkflow) error {
	_, err := r.Collection.InsertOne(ctx, workflow)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyRouted
	}
	return err
}

func (r *ApprovalRepositoryImpl) FindByID(ctx context.Context, id string) (*ApprovalWorkflow, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var workflow ApprovalWorkflow
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&workflow)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &workflow, nil
}

func (r *ApprovalRepositoryImpl) FindByPayableID(ctx context.Context, payableID string) (*ApprovalWorkflow, error) {
	var workflow ApprovalWorkflow
	err := r.Collection.FindOne(ctx, bson.M{"payable_id": payableID}).Decode(&workflow)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &workflow, nil
}

func (r *ApprovalRepositoryImpl) ListPendingForApprover(ctx context.Context, userID string) ([]ApprovalWorkflow, error) {
	filter := bson.M{
		"status":                StatusPending,
		"approvals.approver_id": userID,
		"approvals.decision":    DecisionPending,
	}

	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workflows []ApprovalWorkflow
	if err = cursor.All(ctx, &workflows); err != nil {
		return nil, err
	}
	return workflows, nil
}

func (r *ApprovalRepositoryImpl) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]ApprovalWorkflow, error) {
	filter := bson.M{
		"status":     StatusPending,
		"updated_at": bson.M{"$lt": cutoff},
	}

	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workflows []ApprovalWorkflow
	if err = cursor.All(ctx, &workflows); err != nil {
		return nil, err
	}
	return workflows, nil
}

func (r *ApprovalRepositoryImpl) ApplyDecision(ctx context.Context, id string, expectedStep int, workflow *ApprovalWorkflow) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, err
	}

	filter := bson.M{
		"_id":          oid,
		"status":       StatusPending,
		"current_step": expectedStep,
	}
	update := bson.M{"$set": bson.M{
		"status":       workflow.Status,
		"current_step": workflow.CurrentStep,
		"approvals":    workflow.Approvals,
		"updated_at":   time.Now(),
	}}

	res, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *ApprovalRepositoryImpl) MarkStepReminded(ctx context.Context, id string, stepNumber int, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "approvals.step_number": stepNumber}
	update := bson.M{"$set": bson.M{"approvals.$.last_reminded_at": at}}
	_, err = r.Collection.UpdateOne(ctx, filter, update)
	return err
}

func (r *ApprovalRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		// One workflow per payable; concurrent submissions race to this index
		{Keys: bson.D{{Key: "payable_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "approvals.approver_id", Value: 1}}},
		{Keys: bson.D{{Key: "organization_id", Value: 1}}},
	}
	_, err := r.Collection.Indexes().CreateMany(ctx, models)
	return err
}
