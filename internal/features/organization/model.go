package organization

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemberRole string

const (
	RoleOwner      MemberRole = "owner"
	RoleAdmin      MemberRole = "admin"
	RoleApprover   MemberRole = "approver"
	RoleAccountant MemberRole = "accountant"
	RoleMember     MemberRole = "member"
)

type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInvited   MemberStatus = "invited"
	MemberSuspended MemberStatus = "suspended"
)

// Member is one user's seat inside an organization
type Member struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Email    string             `bson:"email" json:"email"`
	Role     MemberRole         `bson:"role" json:"role"`
	Status   MemberStatus       `bson:"status" json:"status"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}

// AmountThresholds are tier ceilings: amount <= Low is the low tier,
// amount <= Medium is the medium tier, anything above is high. Medium and
// High may legally be equal, which collapses the medium band.
type AmountThresholds struct {
	Low    float64 `bson:"low" json:"low"`
	Medium float64 `bson:"medium" json:"medium"`
	High   float64 `bson:"high" json:"high"`
}

// RequiredApprovers is the approver count per tier, each expected >= 1
type RequiredApprovers struct {
	Low    int `bson:"low" json:"low"`
	Medium int `bson:"medium" json:"medium"`
	High   int `bson:"high" json:"high"`
}

// AutoApprove bypasses the step sequence entirely when its conditions match.
// Script is an optional tengo expression evaluated against payable fields;
// it must leave a boolean in "approve".
type AutoApprove struct {
	Enabled           bool     `bson:"enabled" json:"enabled"`
	AmountLimit       float64  `bson:"amount_limit" json:"amount_limit"`
	VendorWhitelist   []string `bson:"vendor_whitelist" json:"vendor_whitelist"`
	CategoryWhitelist []string `bson:"category_whitelist" json:"category_whitelist"`
	Script            string   `bson:"script,omitempty" json:"script,omitempty"`
}

// ApprovalSettings is the per-organization approval policy, embedded as a
// singleton on the organization document
type ApprovalSettings struct {
	RequireApproval    bool              `bson:"require_approval" json:"require_approval"`
	AmountThresholds   AmountThresholds  `bson:"amount_thresholds" json:"amount_thresholds"`
	Currency           string            `bson:"currency" json:"currency"`
	RequiredApprovers  RequiredApprovers `bson:"required_approvers" json:"required_approvers"`
	FallbackApprovers  []string          `bson:"fallback_approvers" json:"fallback_approvers"` // member user ids, in substitution order
	AutoApprove        AutoApprove       `bson:"auto_approve" json:"auto_approve"`
	NotificationEmails []string          `bson:"notification_emails" json:"notification_emails"`
}

type Organization struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Slug             string             `bson:"slug" json:"slug"`
	BillingEmail     string             `bson:"billing_email" json:"billing_email"`
	OwnerID          primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Members          []Member           `bson:"members" json:"members"`
	ApprovalSettings ApprovalSettings   `bson:"approval_settings" json:"approval_settings"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// DefaultApprovalSettings is the policy provisioned with a new organization
func DefaultApprovalSettings() ApprovalSettings {
	return ApprovalSettings{
		RequireApproval: true,
		AmountThresholds: AmountThresholds{
			Low:    100,
			Medium: 1000,
			High:   1000,
		},
		Currency: "USD",
		RequiredApprovers: RequiredApprovers{
			Low:    1,
			Medium: 1,
			High:   2,
		},
		FallbackApprovers: []string{},
		AutoApprove: AutoApprove{
			Enabled:           false,
			AmountLimit:       100,
			VendorWhitelist:   []string{},
			CategoryWhitelist: []string{},
		},
	}
}

// FindMember returns the member entry for a user id, or nil
func (o *Organization) FindMember(userID string) *Member {
	for i := range o.Members {
		if o.Members[i].UserID.Hex() == userID {
			return &o.Members[i]
		}
	}
	return nil
}

// CanManageSettings reports whether a role may edit organization settings
func (r MemberRole) CanManageSettings() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanApprove reports whether a role makes the member a dedicated approver
func (r MemberRole) CanApprove() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleApprover
}
