package email

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmailStatus string

const (
	EmailQueued EmailStatus = "queued"
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// Email is the persisted record of one outbound message
type Email struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrgID     string             `bson:"org_id,omitempty" json:"org_id,omitempty"`
	From      string             `bson:"from" json:"from"`
	To        []string           `bson:"to" json:"to"`
	Subject   string             `bson:"subject" json:"subject"`
	Body      string             `bson:"body" json:"body"`
	Status    EmailStatus        `bson:"status" json:"status"`
	Error     string             `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	SentAt    *time.Time         `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}
