package payable

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-payables/internal/features/approval"
	"go-payables/internal/features/audit"
	"go-payables/internal/features/organization"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("payable not found")
	ErrNotMember = errors.New("acting user is not a member of the payable's organization")
	ErrBadState  = errors.New("payable is not in a state that allows this operation")
)

type CreatePayableInput struct {
	OrganizationID string    `json:"organization_id"`
	Vendor         string    `json:"vendor"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	DueDate        time.Time `json:"due_date"`
}

type PayableService interface {
	// Create persists the payable and routes it through approval when the
	// organization requires it
	Create(ctx context.Context, actingUserID string, input CreatePayableInput) (*Payable, error)

	// Submit re-routes a draft payable through approval, used after a
	// ConfigurationError left it in draft
	Submit(ctx context.Context, actingUserID, payableID string) (*Payable, error)

	// IntakeFromInvoice creates a payable on the receiving organization for
	// an invoice it was sent. The receiving organization's owner stands in
	// as the issuer, so the usual membership check does not apply.
	IntakeFromInvoice(ctx context.Context, input CreatePayableInput, invoiceID string) (*Payable, error)

	Get(ctx context.Context, actingUserID, payableID string) (*Payable, error)
	List(ctx context.Context, actingUserID, orgID string) ([]Payable, error)
	Cancel(ctx context.Context, actingUserID, payableID string) error
}

type PayableServiceImpl struct {
	Repo         PayableRepository
	OrgRepo      organization.OrganizationRepository
	Approvals    approval.ApprovalService
	AuditService audit.AuditService
}

func NewPayableService(
	repo PayableRepository,
	orgRepo organization.OrganizationRepository,
	approvals approval.ApprovalService,
	auditService audit.AuditService,
) PayableService {
	return &PayableServiceImpl{
		Repo:         repo,
		OrgRepo:      orgRepo,
		Approvals:    approvals,
		AuditService: auditService,
	}
}

func (s *PayableServiceImpl) Create(ctx context.Context, actingUserID string, input CreatePayableInput) (*Payable, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if err := s.requireMember(ctx, actingUserID, input.OrganizationID); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Payable{
		ID:             primitive.NewObjectID(),
		OrganizationID: input.OrganizationID,
		Vendor:         input.Vendor,
		Category:       input.Category,
		Description:    input.Description,
		Amount:         input.Amount,
		Currency:       input.Currency,
		DueDate:        input.DueDate,
		Status:         StatusDraft,
		CreatedBy:      actingUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.AuditService.Log(ctx, p.OrganizationID, actingUserID, audit.ActionCreate, audit.EntityPayable,
		p.ID.Hex(), fmt.Sprintf("Payable created for %s", p.Vendor), map[string]interface{}{
			"amount":   p.Amount,
			"currency": p.Currency,
		})

	return s.route(ctx, actingUserID, p)
}

func (s *PayableServiceImpl) IntakeFromInvoice(ctx context.Context, input CreatePayableInput, invoiceID string) (*Payable, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	org, err := s.OrgRepo.FindByID(ctx, input.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}

	issuerID := ""
	for i := range org.Members {
		if org.Members[i].Role == organization.RoleOwner {
			issuerID = org.Members[i].UserID.Hex()
			break
		}
	}
	if issuerID == "" {
		return nil, fmt.Errorf("organization %s has no owner", input.OrganizationID)
	}

	now := time.Now()
	p := &Payable{
		ID:             primitive.NewObjectID(),
		OrganizationID: input.OrganizationID,
		Vendor:         input.Vendor,
		Category:       input.Category,
		Description:    input.Description,
		Amount:         input.Amount,
		Currency:       input.Currency,
		DueDate:        input.DueDate,
		Status:         StatusDraft,
		InvoiceID:      invoiceID,
		CreatedBy:      issuerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.AuditService.Log(ctx, p.OrganizationID, issuerID, audit.ActionCreate, audit.EntityPayable,
		p.ID.Hex(), fmt.Sprintf("Payable created from received invoice %s", invoiceID), map[string]interface{}{
			"amount":   p.Amount,
			"currency": p.Currency,
		})

	routed, err := s.route(ctx, issuerID, p)
	if errors.Is(err, approval.ErrConfiguration) {
		// Intake still succeeded, the payable just stays in draft until the
		// receiving organization fixes its approver setup
		return s.Repo.FindByID(ctx, p.ID.Hex())
	}
	return routed, err
}

func (s *PayableServiceImpl) Submit(ctx context.Context, actingUserID, payableID string) (*Payable, error) {
	p, err := s.Repo.FindByID(ctx, payableID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if err := s.requireMember(ctx, actingUserID, p.OrganizationID); err != nil {
		return nil, err
	}
	if p.Status != StatusDraft {
		return nil, ErrBadState
	}
	return s.route(ctx, actingUserID, p)
}

// route runs a payable through the approval evaluator and records the
// resulting status. A ConfigurationError leaves the payable in draft; no
// workflow document is persisted in that case.
func (s *PayableServiceImpl) route(ctx context.Context, actingUserID string, p *Payable) (*Payable, error) {
	workflow, err := s.Approvals.CreateForPayable(ctx, actingUserID, approval.PayableInfo{
		ID:             p.ID.Hex(),
		OrganizationID: p.OrganizationID,
		IssuerID:       p.CreatedBy,
		Vendor:         p.Vendor,
		Category:       p.Category,
		Description:    p.Description,
		Amount:         p.Amount,
		Currency:       p.Currency,
		DueDate:        p.DueDate,
	})
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		// Organization does not require approval
		if err := s.Repo.Update(ctx, p.ID.Hex(), bson.M{
			"status":          StatusApproved,
			"approval_status": string(approval.StatusApproved),
		}); err != nil {
			return nil, err
		}
	} else if workflow.Status == approval.StatusPending {
		if err := s.Repo.Update(ctx, p.ID.Hex(), bson.M{
			"status":          StatusPendingApproval,
			"approval_status": string(approval.StatusPending),
			"workflow_id":     workflow.ID.Hex(),
		}); err != nil {
			return nil, err
		}
	} else {
		// Auto-approved: the evaluator already synced the outcome, only the
		// workflow back-reference is still missing
		if err := s.Repo.Update(ctx, p.ID.Hex(), bson.M{
			"workflow_id": workflow.ID.Hex(),
		}); err != nil {
			return nil, err
		}
	}

	return s.Repo.FindByID(ctx, p.ID.Hex())
}

func (s *PayableServiceImpl) Get(ctx context.Context, actingUserID, payableID string) (*Payable, error) {
	p, err := s.Repo.FindByID(ctx, payableID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if err := s.requireMember(ctx, actingUserID, p.OrganizationID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PayableServiceImpl) List(ctx context.Context, actingUserID, orgID string) ([]Payable, error) {
	if err := s.requireMember(ctx, actingUserID, orgID); err != nil {
		return nil, err
	}
	return s.Repo.ListByOrganization(ctx, orgID)
}

func (s *PayableServiceImpl) Cancel(ctx context.Context, actingUserID, payableID string) error {
	p, err := s.Repo.FindByID(ctx, payableID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNotFound
	}
	if err := s.requireMember(ctx, actingUserID, p.OrganizationID); err != nil {
		return err
	}
	if p.Status == StatusPaid {
		return ErrBadState
	}

	if err := s.Repo.Update(ctx, payableID, bson.M{"status": StatusCancelled}); err != nil {
		return err
	}

	s.AuditService.Log(ctx, p.OrganizationID, actingUserID, audit.ActionCancel, audit.EntityPayable,
		payableID, "Payable cancelled", nil)
	return nil
}

func (s *PayableServiceImpl) requireMember(ctx context.Context, userID, orgID string) error {
	org, err := s.OrgRepo.FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org == nil {
		return ErrNotFound
	}
	if org.FindMember(userID) == nil {
		return ErrNotMember
	}
	return nil
}
