package payable

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PayableStatus string

const (
	StatusDraft           PayableStatus = "draft"
	StatusPendingApproval PayableStatus = "pending_approval"
	StatusApproved        PayableStatus = "approved"
	StatusRejected        PayableStatus = "rejected"
	StatusPaid            PayableStatus = "paid"
	StatusCancelled       PayableStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentFiat   PaymentMethod = "fiat"
	PaymentCrypto PaymentMethod = "crypto"
)

// Payable is an outgoing bill owned by an organization, subject to approval
// before settlement
type Payable struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID string             `bson:"organization_id" json:"organization_id"`
	Vendor         string             `bson:"vendor" json:"vendor"`
	Category       string             `bson:"category" json:"category"`
	Description    string             `bson:"description" json:"description"`
	Amount         float64            `bson:"amount" json:"amount"`
	Currency       string             `bson:"currency" json:"currency"`
	DueDate        time.Time          `bson:"due_date" json:"due_date"`

	Status         PayableStatus `bson:"status" json:"status"`
	ApprovalStatus string        `bson:"approval_status" json:"approval_status"`
	WorkflowID     string        `bson:"workflow_id,omitempty" json:"workflow_id,omitempty"`

	PaymentMethod PaymentMethod `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	PaidAt        *time.Time    `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	PaidBy        string        `bson:"paid_by,omitempty" json:"paid_by,omitempty"`

	// One-way marker for the external accounting export
	LedgerSyncedAt *time.Time `bson:"ledger_synced_at,omitempty" json:"ledger_synced_at,omitempty"`

	// Set when the payable was auto-created from a received invoice
	InvoiceID string `bson:"invoice_id,omitempty" json:"invoice_id,omitempty"`

	CreatedBy string    `bson:"created_by" json:"created_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
