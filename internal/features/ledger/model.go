package ledger

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RunStatus string

const (
	RunInProgress RunStatus = "in_progress"
	RunSuccess    RunStatus = "success"
	RunFailed     RunStatus = "failed"
)

// ExportRun is the log of one export sweep into the external ledger
type ExportRun struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StartTime      time.Time          `bson:"start_time" json:"start_time"`
	EndTime        time.Time          `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Status         RunStatus          `bson:"status" json:"status"`
	ProcessedCount int                `bson:"processed_count" json:"processed_count"`
	Error          string             `bson:"error,omitempty" json:"error,omitempty"`
	TriggeredBy    string             `bson:"triggered_by,omitempty" json:"triggered_by,omitempty"`
}
