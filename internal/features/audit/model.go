package audit

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Action string

const (
	ActionCreate         Action = "create"
	ActionSend           Action = "send"
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionCancel         Action = "cancel"
	ActionPay            Action = "pay"
	ActionExport         Action = "export"
	ActionSettingsChange Action = "settings_change"
)

type EntityType string

const (
	EntityPayable      EntityType = "payable"
	EntityInvoice      EntityType = "invoice"
	EntityApproval     EntityType = "approval"
	EntityPayment      EntityType = "payment"
	EntityOrganization EntityType = "organization"
	EntityMember       EntityType = "member"
	EntityReport       EntityType = "report"
)

type AuditLog struct {
	ID             primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	OrganizationID string                 `bson:"organization_id" json:"organization_id"`
	UserID         string                 `bson:"user_id" json:"user_id"`
	Action         Action                 `bson:"action" json:"action"`
	EntityType     EntityType             `bson:"entity_type" json:"entity_type"`
	EntityID       string                 `bson:"entity_id" json:"entity_id"`
	Description    string                 `bson:"description" json:"description"`
	Metadata       map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Timestamp      time.Time              `bson:"timestamp" json:"timestamp"`
}
