package notification

import (
	"context"
	"testing"

	"go-payables/internal/features/approval"
	"go-payables/internal/features/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeNotificationRepo struct {
	created []Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *Notification) error {
	r.created = append(r.created, *n)
	return nil
}
func (r *fakeNotificationRepo) GetByUserID(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error) {
	return nil, 0, nil
}
func (r *fakeNotificationRepo) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}
func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	return nil
}
func (r *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID string) error { return nil }

type fakeEmailService struct {
	sent [][]string
}

func (s *fakeEmailService) SendEmail(ctx context.Context, orgID string, to []string, subject, body string) error {
	s.sent = append(s.sent, to)
	return nil
}

type fakeUserRepo struct{}

func (fakeUserRepo) Create(ctx context.Context, u *user.User) error { return nil }
func (fakeUserRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	return &user.User{Email: id + "@example.com"}, nil
}
func (fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, nil
}
func (fakeUserRepo) FindByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	return nil, nil
}
func (fakeUserRepo) Update(ctx context.Context, id string, u *user.User) error { return nil }

func resolvedWorkflow(issuer, first, second string) *approval.ApprovalWorkflow {
	return &approval.ApprovalWorkflow{
		ID:             primitive.NewObjectID(),
		PayableID:      primitive.NewObjectID().Hex(),
		OrganizationID: primitive.NewObjectID().Hex(),
		CreatedBy:      issuer,
		Status:         approval.StatusApproved,
		CurrentStep:    3,
		Approvals: []approval.ApprovalStep{
			{StepNumber: 1, ApproverID: first, Decision: approval.DecisionApproved},
			{StepNumber: 2, ApproverID: second, Decision: approval.DecisionApproved},
		},
	}
}

// Terminal outcomes fan out to the issuer and every approver who decided,
// the final actor among them
func TestApprovalResolvedNotifiesAllDeciders(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, NewHub(zap.NewNop()), &fakeEmailService{}, fakeUserRepo{}, zap.NewNop())

	issuer := primitive.NewObjectID().Hex()
	first := primitive.NewObjectID().Hex()
	actor := primitive.NewObjectID().Hex()
	wf := resolvedWorkflow(issuer, first, actor)

	svc.ApprovalResolved(context.Background(), wf, actor, "looks fine")

	got := make(map[string]int)
	for _, n := range repo.created {
		got[n.UserID]++
	}
	for _, id := range []string{issuer, first, actor} {
		if got[id] != 1 {
			t.Errorf("user %s received %d notifications, want 1", id, got[id])
		}
	}
	if len(repo.created) != 3 {
		t.Errorf("got %d notifications, want 3", len(repo.created))
	}
}

// A still-pending step approver hears nothing about the outcome
func TestApprovalResolvedSkipsPendingSteps(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, NewHub(zap.NewNop()), &fakeEmailService{}, fakeUserRepo{}, zap.NewNop())

	issuer := primitive.NewObjectID().Hex()
	actor := primitive.NewObjectID().Hex()
	pending := primitive.NewObjectID().Hex()

	wf := resolvedWorkflow(issuer, actor, pending)
	wf.Status = approval.StatusRejected
	wf.Approvals[1].Decision = approval.DecisionPending

	svc.ApprovalResolved(context.Background(), wf, actor, "")

	for _, n := range repo.created {
		if n.UserID == pending {
			t.Errorf("pending step approver was notified of the outcome")
		}
	}
	if len(repo.created) != 2 {
		t.Errorf("got %d notifications, want 2 (issuer and actor)", len(repo.created))
	}
}
