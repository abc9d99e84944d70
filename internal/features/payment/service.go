package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-payables/internal/features/audit"
	"go-payables/internal/features/notification"
	"go-payables/internal/features/organization"
	"go-payables/internal/features/payable"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("payable not found")
	ErrNotMember   = errors.New("acting user is not a member of the payable's organization")
	ErrForbidden   = errors.New("acting user may not settle payables")
	ErrNotApproved = errors.New("payable has not been approved")
	ErrAlreadyPaid = errors.New("payable is already paid")
)

type SettleInput struct {
	PayableID string                 `json:"payable_id"`
	Method    payable.PaymentMethod  `json:"method"`
	Reference string                 `json:"reference,omitempty"`
	TxHash    string                 `json:"tx_hash,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type PaymentService interface {
	// Settle records a payment against an approved payable and marks it
	// paid. Only approved payables can be settled.
	Settle(ctx context.Context, actingUserID string, input SettleInput) (*Payment, error)

	List(ctx context.Context, actingUserID, orgID string) ([]Payment, error)
	GetForPayable(ctx context.Context, actingUserID, payableID string) (*Payment, error)
}

type PaymentServiceImpl struct {
	Repo          PaymentRepository
	PayableRepo   payable.PayableRepository
	OrgRepo       organization.OrganizationRepository
	AuditService  audit.AuditService
	Notifications notification.NotificationService
	Logger        *zap.Logger
}

func NewPaymentService(
	repo PaymentRepository,
	payableRepo payable.PayableRepository,
	orgRepo organization.OrganizationRepository,
	auditService audit.AuditService,
	notifications notification.NotificationService,
	logger *zap.Logger,
) PaymentService {
	return &PaymentServiceImpl{
		Repo:          repo,
		PayableRepo:   payableRepo,
		OrgRepo:       orgRepo,
		AuditService:  auditService,
		Notifications: notifications,
		Logger:        logger,
	}
}

func (s *PaymentServiceImpl) Settle(ctx context.Context, actingUserID string, input SettleInput) (*Payment, error) {
	if input.Method != payable.PaymentFiat && input.Method != payable.PaymentCrypto {
		return nil, fmt.Errorf("unknown payment method %q", input.Method)
	}

	p, err := s.PayableRepo.FindByID(ctx, input.PayableID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	member, err := s.requireMember(ctx, actingUserID, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !canSettle(member.Role) {
		return nil, ErrForbidden
	}

	switch p.Status {
	case payable.StatusApproved:
	case payable.StatusPaid:
		return nil, ErrAlreadyPaid
	default:
		return nil, ErrNotApproved
	}

	pay := &Payment{
		ID:             primitive.NewObjectID(),
		PayableID:      input.PayableID,
		OrganizationID: p.OrganizationID,
		Method:         input.Method,
		Reference:      input.Reference,
		TxHash:         input.TxHash,
		Amount:         p.Amount,
		Currency:       p.Currency,
		PaidBy:         actingUserID,
		PaidAt:         time.Now(),
		Metadata:       input.Metadata,
	}

	if err := s.Repo.Create(ctx, pay); err != nil {
		return nil, err
	}
	if err := s.PayableRepo.MarkPaid(ctx, input.PayableID, input.Method, actingUserID); err != nil {
		return nil, err
	}

	s.AuditService.Log(ctx, p.OrganizationID, actingUserID, audit.ActionPay, audit.EntityPayment,
		pay.ID.Hex(), fmt.Sprintf("Payable %s settled via %s", input.PayableID, input.Method), map[string]interface{}{
			"amount":   p.Amount,
			"currency": p.Currency,
		})

	if p.CreatedBy != actingUserID {
		s.Notifications.Notify(ctx, p.CreatedBy, p.OrganizationID,
			"Payable paid",
			fmt.Sprintf("Payable for %s (%.2f %s) has been paid", p.Vendor, p.Amount, p.Currency),
			notification.NotificationTypeSuccess,
			"/payables/"+input.PayableID)
	}

	return pay, nil
}

func (s *PaymentServiceImpl) List(ctx context.Context, actingUserID, orgID string) ([]Payment, error) {
	if _, err := s.requireMember(ctx, actingUserID, orgID); err != nil {
		return nil, err
	}
	return s.Repo.ListByOrganization(ctx, orgID)
}

func (s *PaymentServiceImpl) GetForPayable(ctx context.Context, actingUserID, payableID string) (*Payment, error) {
	p, err := s.PayableRepo.FindByID(ctx, payableID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if _, err := s.requireMember(ctx, actingUserID, p.OrganizationID); err != nil {
		return nil, err
	}
	return s.Repo.FindByPayable(ctx, payableID)
}

func canSettle(role organization.MemberRole) bool {
	return role == organization.RoleAccountant || role.CanManageSettings()
}

func (s *PaymentServiceImpl) requireMember(ctx context.Context, userID, orgID string) (*organization.Member, error) {
	org, err := s.OrgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}
	member := org.FindMember(userID)
	if member == nil {
		return nil, ErrNotMember
	}
	return member, nil
}
