package approval

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

type WorkflowStatus string

const (
	StatusPending  WorkflowStatus = "pending"
	StatusApproved WorkflowStatus = "approved"
	StatusRejected WorkflowStatus = "rejected"
)

// ApprovalStep is one approver's slot in a workflow. Steps are created in a
// batch when the workflow is built and each transitions pending ->
// approved/rejected exactly once, by the approver it names.
type ApprovalStep struct {
	ID             string     `bson:"id" json:"id"`
	StepNumber     int        `bson:"step_number" json:"step_number"` // 1-indexed, defines evaluation order
	ApproverID     string     `bson:"approver_id" json:"approver_id"`
	ApproverEmail  string     `bson:"approver_email" json:"approver_email"`
	ApproverRole   string     `bson:"approver_role" json:"approver_role"`
	Decision       Decision   `bson:"decision" json:"decision"`
	IsFallback     bool       `bson:"is_fallback" json:"is_fallback"`
	Comments       string     `bson:"comments,omitempty" json:"comments,omitempty"`
	AssignedAt     time.Time  `bson:"assigned_at" json:"assigned_at"`
	CompletedAt    *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	LastRemindedAt *time.Time `bson:"last_reminded_at,omitempty" json:"last_reminded_at,omitempty"`
}

// AppliedRules snapshots the routing decision at creation time. Later edits
// to the organization's settings never touch an in-flight workflow.
type AppliedRules struct {
	AmountThreshold   Tier   `bson:"amount_threshold" json:"amount_threshold"`
	RequiredApprovers int    `bson:"required_approvers" json:"required_approvers"`
	AutoApproved      bool   `bson:"auto_approved" json:"auto_approved"`
	Reason            string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// ApprovalWorkflow is one in-flight or completed approval process for
// exactly one payable. CurrentStep always indexes a pending step (1-indexed)
// or the workflow is terminal. Immutable once status leaves pending.
type ApprovalWorkflow struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PayableID      string             `bson:"payable_id" json:"payable_id"`
	OrganizationID string             `bson:"organization_id" json:"organization_id"`
	Status         WorkflowStatus     `bson:"status" json:"status"`
	CurrentStep    int                `bson:"current_step" json:"current_step"`
	Approvals      []ApprovalStep     `bson:"approvals" json:"approvals"`
	AppliedRules   AppliedRules       `bson:"applied_rules" json:"applied_rules"`
	CreatedBy      string             `bson:"created_by" json:"created_by"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// CurrentStepRef returns the step CurrentStep points at, or nil when the
// pointer is past the end
func (w *ApprovalWorkflow) CurrentStepRef() *ApprovalStep {
	if w.CurrentStep < 1 || w.CurrentStep > len(w.Approvals) {
		return nil
	}
	return &w.Approvals[w.CurrentStep-1]
}

// PayableInfo is the slice of a payable the evaluator needs: enough to
// classify, check auto-approval whitelists, and describe the payable in
// notifications. The amount is assumed to be in the same currency unit as
// the organization's thresholds; no conversion happens here.
type PayableInfo struct {
	ID             string
	OrganizationID string
	IssuerID       string
	Vendor         string
	Category       string
	Description    string
	Amount         float64
	Currency       string
	DueDate        time.Time
}
