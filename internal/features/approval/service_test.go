package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-payables/internal/features/audit"
	"go-payables/internal/features/organization"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeApprovalRepo struct {
	workflows     map[string]*ApprovalWorkflow
	forceConflict bool
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{workflows: make(map[string]*ApprovalWorkflow)}
}

func cloneWorkflow(wf *ApprovalWorkflow) *ApprovalWorkflow {
	cp := *wf
	cp.Approvals = append([]ApprovalStep(nil), wf.Approvals...)
	return &cp
}

func (r *fakeApprovalRepo) Create(ctx context.Context, workflow *ApprovalWorkflow) error {
	for _, wf := range r.workflows {
		if wf.PayableID == workflow.PayableID {
			return ErrAlreadyRouted
		}
	}
	r.workflows[workflow.ID.Hex()] = cloneWorkflow(workflow)
	return nil
}

func (r *fakeApprovalRepo) FindByID(ctx context.Context, id string) (*ApprovalWorkflow, error) {
	wf, ok := r.workflows[id]
	if !ok {
		return nil, nil
	}
	return cloneWorkflow(wf), nil
}

func (r *fakeApprovalRepo) FindByPayableID(ctx context.Context, payableID string) (*ApprovalWorkflow, error) {
	for _, wf := range r.workflows {
		if wf.PayableID == payableID {
			return cloneWorkflow(wf), nil
		}
	}
	return nil, nil
}

func (r *fakeApprovalRepo) ListPendingForApprover(ctx context.Context, userID string) ([]ApprovalWorkflow, error) {
	var out []ApprovalWorkflow
	for _, wf := range r.workflows {
		if wf.Status != StatusPending {
			continue
		}
		for i := range wf.Approvals {
			if wf.Approvals[i].ApproverID == userID {
				out = append(out, *cloneWorkflow(wf))
				break
			}
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]ApprovalWorkflow, error) {
	var out []ApprovalWorkflow
	for _, wf := range r.workflows {
		if wf.Status == StatusPending && wf.UpdatedAt.Before(cutoff) {
			out = append(out, *cloneWorkflow(wf))
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) ApplyDecision(ctx context.Context, id string, expectedStep int, workflow *ApprovalWorkflow) (bool, error) {
	if r.forceConflict {
		return false, nil
	}
	stored, ok := r.workflows[id]
	if !ok || stored.Status != StatusPending || stored.CurrentStep != expectedStep {
		return false, nil
	}
	r.workflows[id] = cloneWorkflow(workflow)
	return true, nil
}

func (r *fakeApprovalRepo) MarkStepReminded(ctx context.Context, id string, stepNumber int, at time.Time) error {
	wf, ok := r.workflows[id]
	if !ok {
		return nil
	}
	for i := range wf.Approvals {
		if wf.Approvals[i].StepNumber == stepNumber {
			wf.Approvals[i].LastRemindedAt = &at
		}
	}
	return nil
}

func (r *fakeApprovalRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeOrgRepo struct {
	org *organization.Organization
}

func (r *fakeOrgRepo) Create(ctx context.Context, org *organization.Organization) error { return nil }
func (r *fakeOrgRepo) FindByID(ctx context.Context, id string) (*organization.Organization, error) {
	if r.org != nil && r.org.ID.Hex() == id {
		return r.org, nil
	}
	return nil, nil
}
func (r *fakeOrgRepo) FindBySlug(ctx context.Context, slug string) (*organization.Organization, error) {
	return nil, nil
}
func (r *fakeOrgRepo) ListByMember(ctx context.Context, userID string) ([]organization.Organization, error) {
	return nil, nil
}
func (r *fakeOrgRepo) UpdateMembers(ctx context.Context, id string, members []organization.Member) error {
	return nil
}
func (r *fakeOrgRepo) UpdateApprovalSettings(ctx context.Context, id string, settings organization.ApprovalSettings) error {
	return nil
}

type fakePayableStore struct {
	outcomes map[string]WorkflowStatus
}

func newFakePayableStore() *fakePayableStore {
	return &fakePayableStore{outcomes: make(map[string]WorkflowStatus)}
}

func (s *fakePayableStore) SetApprovalOutcome(ctx context.Context, payableID string, outcome WorkflowStatus, actorID string) error {
	s.outcomes[payableID] = outcome
	return nil
}

type fakeNotifier struct {
	requested []int // step numbers, in call order
	resolved  int
}

func (n *fakeNotifier) ApprovalRequested(ctx context.Context, wf *ApprovalWorkflow, step *ApprovalStep) {
	n.requested = append(n.requested, step.StepNumber)
}

func (n *fakeNotifier) ApprovalResolved(ctx context.Context, wf *ApprovalWorkflow, actorID string, comments string) {
	n.resolved++
}

type noopAudit struct{}

func (noopAudit) Log(ctx context.Context, orgID, userID string, action audit.Action, entityType audit.EntityType, entityID, description string, metadata map[string]interface{}) {
}
func (noopAudit) List(ctx context.Context, orgID string, limit int64) ([]audit.AuditLog, error) {
	return nil, nil
}

type testEnv struct {
	service  ApprovalService
	repo     *fakeApprovalRepo
	payables *fakePayableStore
	notifier *fakeNotifier
	org      *organization.Organization
	issuer   primitive.ObjectID
	approver primitive.ObjectID
	second   primitive.ObjectID
}

func newTestEnv(t *testing.T, mutate func(*organization.Organization)) *testEnv {
	t.Helper()

	issuer := primitive.NewObjectID()
	approver := primitive.NewObjectID()
	second := primitive.NewObjectID()

	org := &organization.Organization{
		ID:               primitive.NewObjectID(),
		Name:             "Test Org",
		ApprovalSettings: organization.DefaultApprovalSettings(),
		Members: []organization.Member{
			{UserID: issuer, Email: "issuer@example.com", Role: organization.RoleOwner, Status: organization.MemberActive},
			{UserID: approver, Email: "approver@example.com", Role: organization.RoleAdmin, Status: organization.MemberActive},
			{UserID: second, Email: "second@example.com", Role: organization.RoleApprover, Status: organization.MemberActive},
		},
	}
	if mutate != nil {
		mutate(org)
	}

	repo := newFakeApprovalRepo()
	payables := newFakePayableStore()
	notifier := &fakeNotifier{}
	service := NewApprovalService(repo, &fakeOrgRepo{org: org}, payables, notifier, noopAudit{}, zap.NewNop())

	return &testEnv{
		service:  service,
		repo:     repo,
		payables: payables,
		notifier: notifier,
		org:      org,
		issuer:   issuer,
		approver: approver,
		second:   second,
	}
}

func (e *testEnv) payableInfo(amount float64) PayableInfo {
	return PayableInfo{
		ID:             primitive.NewObjectID().Hex(),
		OrganizationID: e.org.ID.Hex(),
		IssuerID:       e.issuer.Hex(),
		Vendor:         "Acme Supplies",
		Category:       "office",
		Amount:         amount,
		Currency:       "USD",
	}
}

func TestCreateForPayableAutoApproved(t *testing.T) {
	env := newTestEnv(t, func(org *organization.Organization) {
		org.ApprovalSettings.AutoApprove.Enabled = true
		org.ApprovalSettings.AutoApprove.AmountLimit = 100
	})
	p := env.payableInfo(50)

	wf, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.Status != StatusApproved {
		t.Errorf("status = %v, want approved", wf.Status)
	}
	if len(wf.Approvals) != 0 {
		t.Errorf("auto-approved workflow has %d steps, want 0", len(wf.Approvals))
	}
	if !wf.AppliedRules.AutoApproved {
		t.Errorf("appliedRules.autoApproved not set")
	}
	if env.payables.outcomes[p.ID] != StatusApproved {
		t.Errorf("payable outcome not synced to approved")
	}
	if len(env.notifier.requested) != 0 {
		t.Errorf("no approval request should be sent for an auto-approved workflow")
	}
}

// Auto-approval only applies in the low tier, whatever the amount limit says
func TestCreateForPayableAutoApproveOnlyLowTier(t *testing.T) {
	env := newTestEnv(t, func(org *organization.Organization) {
		org.ApprovalSettings.AutoApprove.Enabled = true
		org.ApprovalSettings.AutoApprove.AmountLimit = 10000
	})
	p := env.payableInfo(500) // medium tier

	wf, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.Status != StatusPending {
		t.Errorf("status = %v, want pending", wf.Status)
	}
	if wf.AppliedRules.AutoApproved {
		t.Errorf("medium-tier payable must not auto-approve")
	}
}

func TestCreateForPayableNoApprovalRequired(t *testing.T) {
	env := newTestEnv(t, func(org *organization.Organization) {
		org.ApprovalSettings.RequireApproval = false
	})

	wf, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), env.payableInfo(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf != nil {
		t.Errorf("expected no workflow when approval is not required, got %+v", wf)
	}
}

func TestCreateForPayablePending(t *testing.T) {
	env := newTestEnv(t, nil)
	p := env.payableInfo(500) // medium tier, 1 approver

	wf, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.Status != StatusPending || wf.CurrentStep != 1 {
		t.Fatalf("got status=%v currentStep=%d, want pending at step 1", wf.Status, wf.CurrentStep)
	}
	if len(wf.Approvals) != 1 {
		t.Fatalf("got %d steps, want 1", len(wf.Approvals))
	}
	if wf.Approvals[0].ApproverID == env.issuer.Hex() {
		t.Errorf("issuer selected while other approvers exist")
	}
	if len(env.notifier.requested) != 1 || env.notifier.requested[0] != 1 {
		t.Errorf("first step approver should be notified once, got %v", env.notifier.requested)
	}
}

// Two submissions of the same payable collapse onto one workflow; the
// loser gets the winner's workflow back and triggers no extra side effects
func TestCreateForPayableDuplicateSubmission(t *testing.T) {
	env := newTestEnv(t, nil)
	p := env.payableInfo(500)

	first, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), p)
	if err != nil {
		t.Fatalf("unexpected error on duplicate submission: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate submission created a second workflow: %v vs %v", second.ID, first.ID)
	}
	if len(env.repo.workflows) != 1 {
		t.Errorf("got %d stored workflows, want 1", len(env.repo.workflows))
	}
	if len(env.notifier.requested) != 1 {
		t.Errorf("approver notified %d times, want 1", len(env.notifier.requested))
	}
}

func TestCreateForPayableNoEligibleApprovers(t *testing.T) {
	env := newTestEnv(t, func(org *organization.Organization) {
		for i := range org.Members {
			org.Members[i].Role = organization.RoleMember
		}
		// issuer keeps no approval rights either, and there are no fallbacks
	})

	_, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), env.payableInfo(500))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("got error %v, want ErrConfiguration", err)
	}
}

func TestRecordDecisionSequence(t *testing.T) {
	env := newTestEnv(t, nil)
	p := env.payableInfo(5000) // high tier, 2 approvers

	wf, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wf.Approvals) != 2 {
		t.Fatalf("got %d steps, want 2", len(wf.Approvals))
	}
	first := wf.Approvals[0].ApproverID
	second := wf.Approvals[1].ApproverID

	// First approval advances without terminating
	wf, err = env.service.RecordDecision(context.Background(), wf.ID.Hex(), first, DecisionApproved, "lgtm")
	if err != nil {
		t.Fatalf("first decision: %v", err)
	}
	if wf.Status != StatusPending || wf.CurrentStep != 2 {
		t.Fatalf("after first approval: status=%v currentStep=%d", wf.Status, wf.CurrentStep)
	}
	if _, ok := env.payables.outcomes[p.ID]; ok {
		t.Errorf("payable outcome synced before the workflow was terminal")
	}

	// Second approval terminates
	wf, err = env.service.RecordDecision(context.Background(), wf.ID.Hex(), second, DecisionApproved, "")
	if err != nil {
		t.Fatalf("second decision: %v", err)
	}
	if wf.Status != StatusApproved {
		t.Fatalf("after second approval: status=%v, want approved", wf.Status)
	}
	if env.payables.outcomes[p.ID] != StatusApproved {
		t.Errorf("payable outcome not synced to approved")
	}
	if env.notifier.resolved != 1 {
		t.Errorf("resolved notifications = %d, want 1", env.notifier.resolved)
	}

	// The workflow is immutable once terminal
	_, err = env.service.RecordDecision(context.Background(), wf.ID.Hex(), second, DecisionApproved, "")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("decision on terminal workflow: got %v, want ErrInvalidState", err)
	}
}

func TestRecordDecisionRejectIsAbsorbing(t *testing.T) {
	env := newTestEnv(t, nil)
	p := env.payableInfo(5000)

	wf, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := wf.Approvals[0].ApproverID
	second := wf.Approvals[1].ApproverID

	wf, err = env.service.RecordDecision(context.Background(), wf.ID.Hex(), first, DecisionRejected, "too expensive")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if wf.Status != StatusRejected {
		t.Fatalf("status = %v, want rejected", wf.Status)
	}
	if env.payables.outcomes[p.ID] != StatusRejected {
		t.Errorf("payable outcome not synced to rejected")
	}

	// The second approver's slot never activates
	_, err = env.service.RecordDecision(context.Background(), wf.ID.Hex(), second, DecisionApproved, "")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("decision after rejection: got %v, want ErrInvalidState", err)
	}
}

func TestRecordDecisionOutOfOrder(t *testing.T) {
	env := newTestEnv(t, nil)

	wf, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), env.payableInfo(5000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := wf.Approvals[1].ApproverID

	_, err = env.service.RecordDecision(context.Background(), wf.ID.Hex(), second, DecisionApproved, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("later-step approver acting early: got %v, want ErrUnauthorized", err)
	}
}

func TestRecordDecisionStranger(t *testing.T) {
	env := newTestEnv(t, nil)

	wf, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), env.payableInfo(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = env.service.RecordDecision(context.Background(), wf.ID.Hex(), primitive.NewObjectID().Hex(), DecisionApproved, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stranger decision: got %v, want ErrUnauthorized", err)
	}
}

func TestRecordDecisionNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.service.RecordDecision(context.Background(), primitive.NewObjectID().Hex(), env.approver.Hex(), DecisionApproved, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

// A decision whose conditional commit loses the race reports ErrInvalidState
// and applies nothing
func TestRecordDecisionConflict(t *testing.T) {
	env := newTestEnv(t, nil)

	wf, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), env.payableInfo(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := wf.Approvals[0].ApproverID

	env.repo.forceConflict = true
	_, err = env.service.RecordDecision(context.Background(), wf.ID.Hex(), first, DecisionApproved, "")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("lost commit race: got %v, want ErrInvalidState", err)
	}

	stored, _ := env.repo.FindByID(context.Background(), wf.ID.Hex())
	if stored.Status != StatusPending || stored.CurrentStep != 1 {
		t.Errorf("conflicting decision mutated stored state: %+v", stored)
	}
}

func TestPendingForUserOnlyCurrentStep(t *testing.T) {
	env := newTestEnv(t, nil)

	wf, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), env.payableInfo(5000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := wf.Approvals[0].ApproverID
	second := wf.Approvals[1].ApproverID

	got, err := env.service.PendingForUser(context.Background(), first)
	if err != nil || len(got) != 1 {
		t.Fatalf("current-step approver: got %d workflows, err %v", len(got), err)
	}

	got, err = env.service.PendingForUser(context.Background(), second)
	if err != nil || len(got) != 0 {
		t.Fatalf("later-step approver: got %d workflows, err %v, want 0", len(got), err)
	}
}

func TestRemindStalePending(t *testing.T) {
	env := newTestEnv(t, nil)

	wf, err := env.service.CreateForPayable(context.Background(), env.issuer.Hex(), env.payableInfo(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Make the stored workflow look old
	stored := env.repo.workflows[wf.ID.Hex()]
	stored.UpdatedAt = time.Now().Add(-48 * time.Hour)

	before := len(env.notifier.requested)
	reminded, err := env.service.RemindStalePending(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reminded != 1 {
		t.Fatalf("reminded = %d, want 1", reminded)
	}
	if len(env.notifier.requested) != before+1 {
		t.Errorf("expected one more approval request notification")
	}

	// A second sweep inside the window stays quiet
	reminded, err = env.service.RemindStalePending(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reminded != 0 {
		t.Errorf("second sweep reminded = %d, want 0", reminded)
	}
}
