package approval

import (
	"errors"
	"testing"

	"go-payables/internal/features/organization"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memberSpec struct {
	id     primitive.ObjectID
	role   organization.MemberRole
	status organization.MemberStatus
}

func activeMember(role organization.MemberRole) memberSpec {
	return memberSpec{id: primitive.NewObjectID(), role: role, status: organization.MemberActive}
}

func buildOrg(members []memberSpec, fallbacks ...primitive.ObjectID) *organization.Organization {
	org := &organization.Organization{
		ID:               primitive.NewObjectID(),
		ApprovalSettings: organization.DefaultApprovalSettings(),
	}
	for _, m := range members {
		org.Members = append(org.Members, organization.Member{
			UserID: m.id,
			Email:  m.id.Hex() + "@example.com",
			Role:   m.role,
			Status: m.status,
		})
	}
	for _, id := range fallbacks {
		org.ApprovalSettings.FallbackApprovers = append(org.ApprovalSettings.FallbackApprovers, id.Hex())
	}
	return org
}

func TestResolveApproversExcludesIssuer(t *testing.T) {
	issuer := activeMember(organization.RoleAdmin)
	other := activeMember(organization.RoleApprover)
	org := buildOrg([]memberSpec{issuer, other})

	got, err := ResolveApprovers(org, issuer.id.Hex(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d approvers, want 1", len(got))
	}
	if got[0].UserID != other.id.Hex() {
		t.Errorf("issuer was selected despite another approver being available")
	}
	if got[0].IsFallback {
		t.Errorf("dedicated approver marked as fallback")
	}
}

func TestResolveApproversSkipsIneligible(t *testing.T) {
	issuer := activeMember(organization.RoleOwner)
	viewer := activeMember(organization.RoleMember)
	accountant := activeMember(organization.RoleAccountant)
	suspended := memberSpec{id: primitive.NewObjectID(), role: organization.RoleApprover, status: organization.MemberSuspended}
	approver := activeMember(organization.RoleApprover)
	org := buildOrg([]memberSpec{issuer, viewer, accountant, suspended, approver})

	got, err := ResolveApprovers(org, issuer.id.Hex(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].UserID != approver.id.Hex() {
		t.Fatalf("expected the single active approver, got %+v", got)
	}
}

// With one admin besides the issuer and a designated fallback, a two-step
// workflow picks the admin first and the fallback second
func TestResolveApproversFallbackSubstitution(t *testing.T) {
	issuer := activeMember(organization.RoleOwner)
	admin := activeMember(organization.RoleAdmin)
	substitute := activeMember(organization.RoleAccountant)
	org := buildOrg([]memberSpec{issuer, admin, substitute}, substitute.id)

	got, err := ResolveApprovers(org, issuer.id.Hex(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d approvers, want 2", len(got))
	}
	if got[0].UserID != admin.id.Hex() || got[0].IsFallback {
		t.Errorf("first slot should be the dedicated admin, got %+v", got[0])
	}
	if got[1].UserID != substitute.id.Hex() || !got[1].IsFallback {
		t.Errorf("second slot should be the fallback substitute, got %+v", got[1])
	}
}

// The issuer is re-admitted when excluding them would leave the workflow
// short of approvers
func TestResolveApproversIssuerReadmitted(t *testing.T) {
	issuer := activeMember(organization.RoleOwner)
	org := buildOrg([]memberSpec{issuer})

	got, err := ResolveApprovers(org, issuer.id.Hex(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].UserID != issuer.id.Hex() {
		t.Fatalf("sole owner should approve their own payable, got %+v", got)
	}
}

// A pool smaller than the required count wraps so the workflow still carries
// exactly the required number of steps
func TestResolveApproversPoolWraps(t *testing.T) {
	issuer := activeMember(organization.RoleMember)
	a := activeMember(organization.RoleAdmin)
	b := activeMember(organization.RoleApprover)
	org := buildOrg([]memberSpec{issuer, a, b})

	got, err := ResolveApprovers(org, issuer.id.Hex(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d approvers, want 3", len(got))
	}
	if got[2].UserID != got[0].UserID {
		t.Errorf("third slot should wrap back to the first approver")
	}
}

func TestResolveApproversNoEligibleApprovers(t *testing.T) {
	issuer := activeMember(organization.RoleMember)
	viewer := activeMember(organization.RoleMember)
	org := buildOrg([]memberSpec{issuer, viewer})

	_, err := ResolveApprovers(org, issuer.id.Hex(), 2)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("got error %v, want ErrConfiguration", err)
	}
}

func TestResolveApproversZeroRequired(t *testing.T) {
	org := buildOrg([]memberSpec{activeMember(organization.RoleOwner)})

	got, err := ResolveApprovers(org, primitive.NewObjectID().Hex(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected no approvers for zero required, got %+v", got)
	}
}

func TestResolveApproversFallbackSkipsIssuer(t *testing.T) {
	issuer := activeMember(organization.RoleMember)
	approver := activeMember(organization.RoleApprover)
	org := buildOrg([]memberSpec{issuer, approver}, issuer.id, approver.id)

	got, err := ResolveApprovers(org, issuer.id.Hex(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range got {
		if a.UserID == issuer.id.Hex() {
			t.Errorf("issuer selected via fallback list while others sufficed")
		}
	}
}
