package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-payables/internal/features/audit"
	"go-payables/internal/features/organization"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// sideEffectTimeout bounds post-commit collaborator calls so a slow
// notification or payable sync cannot stall the caller's response
const sideEffectTimeout = 10 * time.Second

// PayableStore is the payable feature's surface as seen from the evaluator.
// Implemented by the payable service; wired in main.
type PayableStore interface {
	SetApprovalOutcome(ctx context.Context, payableID string, outcome WorkflowStatus, actorID string) error
}

// Notifier delivers approval lifecycle notifications. Implementations are
// best-effort: they log failures and never return them.
type Notifier interface {
	ApprovalRequested(ctx context.Context, wf *ApprovalWorkflow, step *ApprovalStep)
	ApprovalResolved(ctx context.Context, wf *ApprovalWorkflow, actorID string, comments string)
}

type ApprovalService interface {
	// CreateForPayable classifies the payable, resolves approvers and
	// persists the workflow. A nil result with nil error means the
	// organization does not require approval for this payable.
	CreateForPayable(ctx context.Context, actingUserID string, p PayableInfo) (*ApprovalWorkflow, error)

	// RecordDecision applies one approve/reject decision to the current step
	RecordDecision(ctx context.Context, workflowID, actingUserID string, decision Decision, comments string) (*ApprovalWorkflow, error)

	GetByID(ctx context.Context, actingUserID, workflowID string) (*ApprovalWorkflow, error)
	GetByPayable(ctx context.Context, actingUserID, payableID string) (*ApprovalWorkflow, error)
	PendingForUser(ctx context.Context, actingUserID string) ([]ApprovalWorkflow, error)

	// RemindStalePending re-sends "approval requested" notifications for
	// pending steps that have sat untouched longer than olderThan
	RemindStalePending(ctx context.Context, olderThan time.Duration) (int, error)
}

type ApprovalServiceImpl struct {
	Repo         ApprovalRepository
	OrgRepo      organization.OrganizationRepository
	Payables     PayableStore
	Notifier     Notifier
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewApprovalService(
	repo ApprovalRepository,
	orgRepo organization.OrganizationRepository,
	payables PayableStore,
	notifier Notifier,
	auditService audit.AuditService,
	logger *zap.Logger,
) ApprovalService {
	return &ApprovalServiceImpl{
		Repo:         repo,
		OrgRepo:      orgRepo,
		Payables:     payables,
		Notifier:     notifier,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *ApprovalServiceImpl) CreateForPayable(ctx context.Context, actingUserID string, p PayableInfo) (*ApprovalWorkflow, error) {
	org, err := s.OrgRepo.FindByID(ctx, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}

	settings := org.ApprovalSettings
	if !settings.RequireApproval {
		return nil, nil
	}

	tier := ClassifyAmount(p.Amount, settings.AmountThresholds)
	required := RequiredForTier(settings.RequiredApprovers, tier)

	autoApproved := false
	if tier == TierLow {
		auto, err := ShouldAutoApprove(settings.AutoApprove, p)
		if err != nil {
			s.Logger.Warn("auto-approve condition script failed, routing through approvers",
				zap.String("orgId", p.OrganizationID),
				zap.Error(err))
		}
		autoApproved = auto
	}

	now := time.Now()
	workflow := &ApprovalWorkflow{
		ID:             primitive.NewObjectID(),
		PayableID:      p.ID,
		OrganizationID: p.OrganizationID,
		CreatedBy:      actingUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
		AppliedRules: AppliedRules{
			AmountThreshold:   tier,
			RequiredApprovers: required,
			AutoApproved:      autoApproved,
		},
	}

	if autoApproved || required <= 0 {
		// Zero-step workflow, terminal from birth
		workflow.Status = StatusApproved
		workflow.CurrentStep = 1
		workflow.Approvals = []ApprovalStep{}
		workflow.AppliedRules.AutoApproved = true
		workflow.AppliedRules.Reason = "auto-approved by organization rules"
	} else {
		approvers, err := ResolveApprovers(org, p.IssuerID, required)
		if err != nil {
			return nil, err
		}

		steps := make([]ApprovalStep, 0, len(approvers))
		for i, a := range approvers {
			steps = append(steps, ApprovalStep{
				ID:            uuid.NewString(),
				StepNumber:    i + 1,
				ApproverID:    a.UserID,
				ApproverEmail: a.Email,
				ApproverRole:  a.Role,
				Decision:      DecisionPending,
				IsFallback:    a.IsFallback,
				AssignedAt:    now,
			})
		}

		workflow.Status = StatusPending
		workflow.CurrentStep = 1
		workflow.Approvals = steps
	}

	if err := s.Repo.Create(ctx, workflow); err != nil {
		if errors.Is(err, ErrAlreadyRouted) {
			// Lost a submission race; the winner owns the side effects
			existing, ferr := s.Repo.FindByPayableID(ctx, p.ID)
			if ferr != nil {
				return nil, ferr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	s.afterCreate(workflow, actingUserID, p)
	return workflow, nil
}

// afterCreate runs post-commit side effects: audit, payable sync for
// auto-approved workflows, and the first approval request notification.
// Failures are warnings; the workflow is already persisted.
func (s *ApprovalServiceImpl) afterCreate(workflow *ApprovalWorkflow, actingUserID string, p PayableInfo) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	s.AuditService.Log(ctx, workflow.OrganizationID, actingUserID, audit.ActionCreate, audit.EntityApproval,
		workflow.ID.Hex(), "Approval workflow created", map[string]interface{}{
			"payable_id":         p.ID,
			"amount":             p.Amount,
			"tier":               workflow.AppliedRules.AmountThreshold,
			"required_approvers": workflow.AppliedRules.RequiredApprovers,
			"auto_approved":      workflow.AppliedRules.AutoApproved,
		})

	if workflow.Status == StatusApproved {
		if err := s.Payables.SetApprovalOutcome(ctx, workflow.PayableID, StatusApproved, actingUserID); err != nil {
			s.Logger.Warn("payable status sync failed after auto-approval",
				zap.String("workflowId", workflow.ID.Hex()),
				zap.Error(err))
		}
		return
	}

	if step := workflow.CurrentStepRef(); step != nil {
		s.Notifier.ApprovalRequested(ctx, workflow, step)
	}
}

func (s *ApprovalServiceImpl) RecordDecision(ctx context.Context, workflowID, actingUserID string, decision Decision, comments string) (*ApprovalWorkflow, error) {
	if decision != DecisionApproved && decision != DecisionRejected {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	workflow, err := s.Repo.FindByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if workflow == nil {
		return nil, ErrNotFound
	}
	if workflow.Status != StatusPending {
		return nil, ErrInvalidState
	}

	step := workflow.CurrentStepRef()
	if step == nil {
		return nil, ErrInvalidState
	}
	// Only the approver named at the current step may act; a later-step
	// approver cannot act early
	if step.ApproverID != actingUserID {
		return nil, ErrUnauthorized
	}

	expectedStep := workflow.CurrentStep
	now := time.Now()
	step.Decision = decision
	step.Comments = comments
	step.CompletedAt = &now

	if decision == DecisionRejected {
		// Reject is terminal and absorbing, remaining steps never activate
		workflow.Status = StatusRejected
	} else if workflow.CurrentStep >= len(workflow.Approvals) {
		workflow.Status = StatusApproved
		workflow.CurrentStep++
	} else {
		workflow.CurrentStep++
	}

	committed, err := s.Repo.ApplyDecision(ctx, workflowID, expectedStep, workflow)
	if err != nil {
		return nil, err
	}
	if !committed {
		// Someone else decided this step first
		return nil, ErrInvalidState
	}

	s.afterDecision(workflow, actingUserID, decision, comments)
	return workflow, nil
}

// afterDecision runs post-commit side effects for a recorded decision.
// The state transition has already committed; nothing here can fail it.
func (s *ApprovalServiceImpl) afterDecision(workflow *ApprovalWorkflow, actorID string, decision Decision, comments string) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	action := audit.ActionApprove
	if decision == DecisionRejected {
		action = audit.ActionReject
	}
	s.AuditService.Log(ctx, workflow.OrganizationID, actorID, action, audit.EntityApproval,
		workflow.ID.Hex(), fmt.Sprintf("Payable %s by approver", decision), map[string]interface{}{
			"payable_id": workflow.PayableID,
			"status":     workflow.Status,
			"comments":   comments,
		})

	switch workflow.Status {
	case StatusPending:
		// Advanced to the next approver
		if step := workflow.CurrentStepRef(); step != nil {
			s.Notifier.ApprovalRequested(ctx, workflow, step)
		}
	case StatusApproved, StatusRejected:
		if err := s.Payables.SetApprovalOutcome(ctx, workflow.PayableID, workflow.Status, actorID); err != nil {
			s.Logger.Warn("payable status sync failed after decision",
				zap.String("workflowId", workflow.ID.Hex()),
				zap.String("payableId", workflow.PayableID),
				zap.Error(err))
		}
		s.Notifier.ApprovalResolved(ctx, workflow, actorID, comments)
	}
}

func (s *ApprovalServiceImpl) GetByID(ctx context.Context, actingUserID, workflowID string) (*ApprovalWorkflow, error) {
	workflow, err := s.Repo.FindByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if workflow == nil {
		return nil, ErrNotFound
	}
	if err := s.requireMember(ctx, actingUserID, workflow.OrganizationID); err != nil {
		return nil, err
	}
	return workflow, nil
}

func (s *ApprovalServiceImpl) GetByPayable(ctx context.Context, actingUserID, payableID string) (*ApprovalWorkflow, error) {
	workflow, err := s.Repo.FindByPayableID(ctx, payableID)
	if err != nil {
		return nil, err
	}
	if workflow == nil {
		return nil, ErrNotFound
	}
	if err := s.requireMember(ctx, actingUserID, workflow.OrganizationID); err != nil {
		return nil, err
	}
	return workflow, nil
}

// PendingForUser returns workflows whose current step names the user:
// assignments in later steps are not actionable yet and stay hidden
func (s *ApprovalServiceImpl) PendingForUser(ctx context.Context, actingUserID string) ([]ApprovalWorkflow, error) {
	candidates, err := s.Repo.ListPendingForApprover(ctx, actingUserID)
	if err != nil {
		return nil, err
	}

	actionable := make([]ApprovalWorkflow, 0, len(candidates))
	for _, wf := range candidates {
		step := wf.CurrentStepRef()
		if step != nil && step.ApproverID == actingUserID && step.Decision == DecisionPending {
			actionable = append(actionable, wf)
		}
	}
	return actionable, nil
}

func (s *ApprovalServiceImpl) RemindStalePending(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	stale, err := s.Repo.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	reminded := 0
	for i := range stale {
		wf := &stale[i]
		step := wf.CurrentStepRef()
		if step == nil {
			continue
		}
		if step.LastRemindedAt != nil && step.LastRemindedAt.After(cutoff) {
			continue
		}

		s.Notifier.ApprovalRequested(ctx, wf, step)
		if err := s.Repo.MarkStepReminded(ctx, wf.ID.Hex(), step.StepNumber, time.Now()); err != nil {
			s.Logger.Warn("failed to mark approval step reminded",
				zap.String("workflowId", wf.ID.Hex()),
				zap.Error(err))
			continue
		}
		reminded++
	}
	return reminded, nil
}

func (s *ApprovalServiceImpl) requireMember(ctx context.Context, userID, orgID string) error {
	org, err := s.OrgRepo.FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org == nil || org.FindMember(userID) == nil {
		return ErrUnauthorized
	}
	return nil
}
