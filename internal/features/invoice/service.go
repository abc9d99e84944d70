package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-payables/internal/features/audit"
	"go-payables/internal/features/organization"
	"go-payables/internal/features/payable"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("invoice not found")
	ErrNotMember = errors.New("acting user is not a member of the invoice's organization")
	ErrBadState  = errors.New("invoice is not in a state that allows this operation")
)

type CreateInvoiceInput struct {
	OrganizationID string     `json:"organization_id"`
	Client         Client     `json:"client"`
	Items          []LineItem `json:"items"`
	Tax            float64    `json:"tax"`
	Currency       string     `json:"currency"`
	DueDate        time.Time  `json:"due_date"`
}

type InvoiceService interface {
	Create(ctx context.Context, actingUserID string, input CreateInvoiceInput) (*Invoice, error)

	// Send marks the invoice sent. When the client is an organization on
	// the platform, a payable is auto-created on its side and routed
	// through that organization's approval rules.
	Send(ctx context.Context, actingUserID, invoiceID string) (*Invoice, error)

	Get(ctx context.Context, actingUserID, invoiceID string) (*Invoice, error)
	List(ctx context.Context, actingUserID, orgID string) ([]Invoice, error)
	Cancel(ctx context.Context, actingUserID, invoiceID string) error
}

type InvoiceServiceImpl struct {
	Repo         InvoiceRepository
	OrgRepo      organization.OrganizationRepository
	Payables     payable.PayableService
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewInvoiceService(
	repo InvoiceRepository,
	orgRepo organization.OrganizationRepository,
	payables payable.PayableService,
	auditService audit.AuditService,
	logger *zap.Logger,
) InvoiceService {
	return &InvoiceServiceImpl{
		Repo:         repo,
		OrgRepo:      orgRepo,
		Payables:     payables,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *InvoiceServiceImpl) Create(ctx context.Context, actingUserID string, input CreateInvoiceInput) (*Invoice, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("invoice needs at least one line item")
	}
	if err := s.requireMember(ctx, actingUserID, input.OrganizationID); err != nil {
		return nil, err
	}

	subtotal := 0.0
	items := make([]LineItem, len(input.Items))
	for i, item := range input.Items {
		item.Total = item.Quantity * item.UnitPrice
		items[i] = item
		subtotal += item.Total
	}

	count, err := s.Repo.CountByOrganization(ctx, input.OrganizationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inv := &Invoice{
		ID:             primitive.NewObjectID(),
		Number:         fmt.Sprintf("INV-%d-%04d", now.Year(), count+1),
		OrganizationID: input.OrganizationID,
		Client:         input.Client,
		Items:          items,
		Subtotal:       subtotal,
		Tax:            input.Tax,
		Total:          subtotal + input.Tax,
		Currency:       input.Currency,
		DueDate:        input.DueDate,
		Status:         StatusDraft,
		CreatedBy:      actingUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.AuditService.Log(ctx, inv.OrganizationID, actingUserID, audit.ActionCreate, audit.EntityInvoice,
		inv.ID.Hex(), fmt.Sprintf("Invoice %s created for %s", inv.Number, inv.Client.Name), map[string]interface{}{
			"total":    inv.Total,
			"currency": inv.Currency,
		})

	return inv, nil
}

func (s *InvoiceServiceImpl) Send(ctx context.Context, actingUserID, invoiceID string) (*Invoice, error) {
	inv, err := s.Repo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	if err := s.requireMember(ctx, actingUserID, inv.OrganizationID); err != nil {
		return nil, err
	}
	if inv.Status != StatusDraft {
		return nil, ErrBadState
	}

	now := time.Now()
	fields := bson.M{"status": StatusSent, "sent_at": now}

	if inv.Client.OrganizationID != "" {
		sender, err := s.OrgRepo.FindByID(ctx, inv.OrganizationID)
		if err != nil {
			return nil, err
		}
		vendor := inv.Client.Name
		if sender != nil {
			vendor = sender.Name
		}

		p, err := s.Payables.IntakeFromInvoice(ctx, payable.CreatePayableInput{
			OrganizationID: inv.Client.OrganizationID,
			Vendor:         vendor,
			Category:       "invoice",
			Description:    fmt.Sprintf("Invoice %s", inv.Number),
			Amount:         inv.Total,
			Currency:       inv.Currency,
			DueDate:        inv.DueDate,
		}, inv.ID.Hex())
		if err != nil {
			s.Logger.Warn("failed to create payable for sent invoice",
				zap.String("invoiceId", inv.ID.Hex()),
				zap.String("clientOrgId", inv.Client.OrganizationID),
				zap.Error(err))
		} else {
			fields["payable_id"] = p.ID.Hex()
		}
	}

	if err := s.Repo.Update(ctx, invoiceID, fields); err != nil {
		return nil, err
	}

	s.AuditService.Log(ctx, inv.OrganizationID, actingUserID, audit.ActionSend, audit.EntityInvoice,
		invoiceID, fmt.Sprintf("Invoice %s sent to %s", inv.Number, inv.Client.Name), nil)

	return s.Repo.FindByID(ctx, invoiceID)
}

func (s *InvoiceServiceImpl) Get(ctx context.Context, actingUserID, invoiceID string) (*Invoice, error) {
	inv, err := s.Repo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	if err := s.requireMember(ctx, actingUserID, inv.OrganizationID); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceServiceImpl) List(ctx context.Context, actingUserID, orgID string) ([]Invoice, error) {
	if err := s.requireMember(ctx, actingUserID, orgID); err != nil {
		return nil, err
	}
	return s.Repo.ListByOrganization(ctx, orgID)
}

func (s *InvoiceServiceImpl) Cancel(ctx context.Context, actingUserID, invoiceID string) error {
	inv, err := s.Repo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrNotFound
	}
	if err := s.requireMember(ctx, actingUserID, inv.OrganizationID); err != nil {
		return err
	}
	if inv.Status == StatusPaid {
		return ErrBadState
	}

	if err := s.Repo.Update(ctx, invoiceID, bson.M{"status": StatusCancelled}); err != nil {
		return err
	}

	s.AuditService.Log(ctx, inv.OrganizationID, actingUserID, audit.ActionCancel, audit.EntityInvoice,
		invoiceID, fmt.Sprintf("Invoice %s cancelled", inv.Number), nil)
	return nil
}

func (s *InvoiceServiceImpl) requireMember(ctx context.Context, userID, orgID string) error {
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
