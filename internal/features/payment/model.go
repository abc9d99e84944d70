package payment

import (
	"time"

	"go-payables/internal/features/payable"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment is the settlement record for one approved payable. Fiat payments
// carry a bank reference, crypto payments a transaction hash.
type Payment struct {
	ID             primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	PayableID      string                 `bson:"payable_id" json:"payable_id"`
	OrganizationID string                 `bson:"organization_id" json:"organization_id"`
	Method         payable.PaymentMethod  `bson:"method" json:"method"`
	Reference      string                 `bson:"reference,omitempty" json:"reference,omitempty"`
	TxHash         string                 `bson:"tx_hash,omitempty" json:"tx_hash,omitempty"`
	Amount         float64                `bson:"amount" json:"amount"`
	Currency       string                 `bson:"currency" json:"currency"`
	PaidBy         string                 `bson:"paid_by" json:"paid_by"`
	PaidAt         time.Time              `bson:"paid_at" json:"paid_at"`
	Metadata       map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
}
