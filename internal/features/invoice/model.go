package invoice

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "draft"
	StatusSent      InvoiceStatus = "sent"
	StatusPaid      InvoiceStatus = "paid"
	StatusCancelled InvoiceStatus = "cancelled"
)

type LineItem struct {
	Description string  `bson:"description" json:"description"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unit_price"`
	Total       float64 `bson:"total" json:"total"`
}

// Client identifies who the invoice is billed to. OrganizationID is set
// when the client is itself an organization on the platform.
type Client struct {
	Name           string `bson:"name" json:"name"`
	Email          string `bson:"email" json:"email"`
	OrganizationID string `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
}

type Invoice struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number         string             `bson:"number" json:"number"`
	OrganizationID string             `bson:"organization_id" json:"organization_id"`
	Client         Client             `bson:"client" json:"client"`
	Items          []LineItem         `bson:"items" json:"items"`
	Subtotal       float64            `bson:"subtotal" json:"subtotal"`
	Tax            float64            `bson:"tax" json:"tax"`
	Total          float64            `bson:"total" json:"total"`
	Currency       string             `bson:"currency" json:"currency"`
	DueDate        time.Time          `bson:"due_date" json:"due_date"`
	Status         InvoiceStatus      `bson:"status" json:"status"`

	// Set when a payable was auto-created on the receiving organization
	PayableID string     `bson:"payable_id,omitempty" json:"payable_id,omitempty"`
	SentAt    *time.Time `bson:"sent_at,omitempty" json:"sent_at,omitempty"`

	CreatedBy string    `bson:"created_by" json:"created_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
