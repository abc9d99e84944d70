package organization

import (
	"context"
	"errors"
	"testing"

	"go-payables/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeOrgRepo struct {
	org     *Organization
	updated *ApprovalSettings
}

func (r *fakeOrgRepo) Create(ctx context.Context, org *Organization) error { return nil }
func (r *fakeOrgRepo) FindByID(ctx context.Context, id string) (*Organization, error) {
	if r.org != nil && r.org.ID.Hex() == id {
		return r.org, nil
	}
	return nil, nil
}
func (r *fakeOrgRepo) FindBySlug(ctx context.Context, slug string) (*Organization, error) {
	return nil, nil
}
func (r *fakeOrgRepo) ListByMember(ctx context.Context, userID string) ([]Organization, error) {
	return nil, nil
}
func (r *fakeOrgRepo) UpdateMembers(ctx context.Context, id string, members []Member) error {
	return nil
}
func (r *fakeOrgRepo) UpdateApprovalSettings(ctx context.Context, id string, settings ApprovalSettings) error {
	r.updated = &settings
	return nil
}

type noopAudit struct{}

func (noopAudit) Log(ctx context.Context, orgID, userID string, action audit.Action, entityType audit.EntityType, entityID, description string, metadata map[string]interface{}) {
}
func (noopAudit) List(ctx context.Context, orgID string, limit int64) ([]audit.AuditLog, error) {
	return nil, nil
}

func TestUpdateApprovalSettingsValidation(t *testing.T) {
	owner := primitive.NewObjectID()
	viewer := primitive.NewObjectID()
	org := &Organization{
		ID: primitive.NewObjectID(),
		Members: []Member{
			{UserID: owner, Role: RoleOwner, Status: MemberActive},
			{UserID: viewer, Role: RoleMember, Status: MemberActive},
		},
		ApprovalSettings: DefaultApprovalSettings(),
	}

	valid := DefaultApprovalSettings()

	zeroApprovers := DefaultApprovalSettings()
	zeroApprovers.RequiredApprovers.Medium = 0

	negativeLimit := DefaultApprovalSettings()
	negativeLimit.AutoApprove.AmountLimit = -1

	collapsed := DefaultApprovalSettings()
	collapsed.AmountThresholds.Medium = 500
	collapsed.AmountThresholds.High = 500

	tests := []struct {
		name     string
		acting   string
		settings ApprovalSettings
		wantErr  error
	}{
		{name: "Valid settings", acting: owner.Hex(), settings: valid},
		{name: "Zero approvers rejected", acting: owner.Hex(), settings: zeroApprovers, wantErr: ErrBadSetting},
		{name: "Negative auto-approve limit rejected", acting: owner.Hex(), settings: negativeLimit, wantErr: ErrBadSetting},
		{name: "Equal medium and high accepted", acting: owner.Hex(), settings: collapsed},
		{name: "Non-manager forbidden", acting: viewer.Hex(), settings: valid, wantErr: ErrForbidden},
		{name: "Stranger not a member", acting: primitive.NewObjectID().Hex(), settings: valid, wantErr: ErrNotMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeOrgRepo{org: org}
			service := NewOrganizationService(repo, nil, noopAudit{})

			err := service.UpdateApprovalSettings(context.Background(), tt.acting, org.ID.Hex(), tt.settings)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				if repo.updated != nil {
					t.Errorf("invalid settings were persisted")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if repo.updated == nil {
				t.Errorf("valid settings were not persisted")
			}
		})
	}
}
