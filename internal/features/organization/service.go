package organization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-payables/internal/features/audit"
	"go-payables/internal/features/user"
	"go-payables/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotMember  = errors.New("acting user is not a member of this organization")
	ErrForbidden  = errors.New("acting user may not manage this organization")
	ErrNotFound   = errors.New("organization not found")
	ErrBadSetting = errors.New("invalid approval settings")
)

type OrganizationService interface {
	Create(ctx context.Context, actingUserID, name, billingEmail string) (*Organization, error)
	Get(ctx context.Context, actingUserID, orgID string) (*Organization, error)
	ListForUser(ctx context.Context, actingUserID string) ([]Organization, error)

	AddMember(ctx context.Context, actingUserID, orgID, email string, role MemberRole) error
	UpdateMemberRole(ctx context.Context, actingUserID, orgID, memberUserID string, role MemberRole) error
	RemoveMember(ctx context.Context, actingUserID, orgID, memberUserID string) error

	GetApprovalSettings(ctx context.Context, actingUserID, orgID string) (*ApprovalSettings, error)
	UpdateApprovalSettings(ctx context.Context, actingUserID, orgID string, settings ApprovalSettings) error
}

type OrganizationServiceImpl struct {
	Repo         OrganizationRepository
	UserRepo     user.UserRepository
	AuditService audit.AuditService
}

func NewOrganizationService(repo OrganizationRepository, userRepo user.UserRepository, auditService audit.AuditService) OrganizationService {
	return &OrganizationServiceImpl{
		Repo:         repo,
		UserRepo:     userRepo,
		AuditService: auditService,
	}
}

func (s *OrganizationServiceImpl) Create(ctx context.Context, actingUserID, name, billingEmail string) (*Organization, error) {
	ownerID, err := primitive.ObjectIDFromHex(actingUserID)
	if err != nil {
		return nil, err
	}

	owner, err := s.UserRepo.FindByID(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, errors.New("acting user not found")
	}

	org := &Organization{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Slug:         utils.Slugify(name) + "-" + primitive.NewObjectID().Hex()[:4],
		BillingEmail: billingEmail,
		OwnerID:      ownerID,
		Members: []Member{
			{
				UserID:   ownerID,
				Email:    owner.Email,
				Role:     RoleOwner,
				Status:   MemberActive,
				JoinedAt: time.Now(),
			},
		},
		ApprovalSettings: DefaultApprovalSettings(),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := s.Repo.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *OrganizationServiceImpl) Get(ctx context.Context, actingUserID, orgID string) (*Organization, error) {
	org, err := s.Repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}
	if org.FindMember(actingUserID) == nil {
		return nil, ErrNotMember
	}
	return org, nil
}

func (s *OrganizationServiceImpl) ListForUser(ctx context.Context, actingUserID string) ([]Organization, error) {
	return s.Repo.ListByMember(ctx, actingUserID)
}

// requireManager loads the org and checks the acting user can manage it
func (s *OrganizationServiceImpl) requireManager(ctx context.Context, actingUserID, orgID string) (*Organization, error) {
	org, err := s.Repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}
	member := org.FindMember(actingUserID)
	if member == nil {
		return nil, ErrNotMember
	}
	if !member.Role.CanManageSettings() {
		return nil, ErrForbidden
	}
	return org, nil
}

func (s *OrganizationServiceImpl) AddMember(ctx context.Context, actingUserID, orgID, email string, role MemberRole) error {
	org, err := s.requireManager(ctx, actingUserID, orgID)
	if err != nil {
		return err
	}

	for _, m := range org.Members {
		if m.Email == email {
			return fmt.Errorf("member %s already exists", email)
		}
	}

	newMember := Member{
		Email:    email,
		Role:     role,
		Status:   MemberInvited,
		JoinedAt: time.Now(),
	}

	// Known users join active immediately
	existing, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		newMember.UserID = existing.ID
		newMember.Status = MemberActive
	} else {
		newMember.UserID = primitive.NewObjectID()
	}

	members := append(org.Members, newMember)
	if err := s.Repo.UpdateMembers(ctx, orgID, members); err != nil {
		return err
	}

	s.AuditService.Log(ctx, orgID, actingUserID, audit.ActionSettingsChange, audit.EntityMember, newMember.UserID.Hex(),
		fmt.Sprintf("Member %s added with role %s", email, role), nil)
	return nil
}

func (s *OrganizationServiceImpl) UpdateMemberRole(ctx context.Context, actingUserID, orgID, memberUserID string, role MemberRole) error {
	org, err := s.requireManager(ctx, actingUserID, orgID)
	if err != nil {
		return err
	}

	found := false
	for i := range org.Members {
		if org.Members[i].UserID.Hex() == memberUserID {
			if org.Members[i].Role == RoleOwner {
				return errors.New("owner role cannot be changed")
			}
			org.Members[i].Role = role
			found = true
			break
		}
	}
	if !found {
		return errors.New("member not found")
	}

	if err := s.Repo.UpdateMembers(ctx, orgID, org.Members); err != nil {
		return err
	}

	s.AuditService.Log(ctx, orgID, actingUserID, audit.ActionSettingsChange, audit.EntityMember, memberUserID,
		fmt.Sprintf("Member role changed to %s", role), nil)
	return nil
}

func (s *OrganizationServiceImpl) RemoveMember(ctx context.Context, actingUserID, orgID, memberUserID string) error {
	org, err := s.requireManager(ctx, actingUserID, orgID)
	if err != nil {
		return err
	}

	members := make([]Member, 0, len(org.Members))
	for _, m := range org.Members {
		if m.UserID.Hex() == memberUserID {
			if m.Role == RoleOwner {
				return errors.New("owner cannot be removed")
			}
			continue
		}
		members = append(members, m)
	}
	if len(members) == len(org.Members) {
		return errors.New("member not found")
	}

	if err := s.Repo.UpdateMembers(ctx, orgID, members); err != nil {
		return err
	}

	s.AuditService.Log(ctx, orgID, actingUserID, audit.ActionSettingsChange, audit.EntityMember, memberUserID,
		"Member removed", nil)
	return nil
}

func (s *OrganizationServiceImpl) GetApprovalSettings(ctx context.Context, actingUserID, orgID string) (*ApprovalSettings, error) {
	org, err := s.Get(ctx, actingUserID, orgID)
	if err != nil {
		return nil, err
	}
	settings := org.ApprovalSettings
	return &settings, nil
}

// UpdateApprovalSettings replaces the organization's approval policy.
// In-flight workflows keep the rules snapshotted at their creation.
func (s *OrganizationServiceImpl) UpdateApprovalSettings(ctx context.Context, actingUserID, orgID string, settings ApprovalSettings) error {
	if _, err := s.requireManager(ctx, actingUserID, orgID); err != nil {
		return err
	}

	if settings.RequiredApprovers.Low < 1 || settings.RequiredApprovers.Medium < 1 || settings.RequiredApprovers.High < 1 {
		return fmt.Errorf("%w: required approvers must be at least 1 per tier", ErrBadSetting)
	}
	if settings.AutoApprove.AmountLimit < 0 {
		return fmt.Errorf("%w: auto-approve amount limit must not be negative", ErrBadSetting)
	}
	// Threshold ordering is a convention, not enforced: equal medium and high
	// ceilings are a legal configuration that collapses the medium tier.

	if err := s.Repo.UpdateApprovalSettings(ctx, orgID, settings); err != nil {
		return err
	}

	s.AuditService.Log(ctx, orgID, actingUserID, audit.ActionSettingsChange, audit.EntityOrganization, orgID,
		"Approval settings updated", map[string]interface{}{
			"require_approval": settings.RequireApproval,
			"thresholds":       settings.AmountThresholds,
		})
	return nil
}
