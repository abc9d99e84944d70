package logger

import (
	"context"
	"fmt"
	"time"

	"go-payables/internal/config"
	"go-payables/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level      zapcore.Level
	Message    string
	OrgID      string
	WorkflowID string
	Caller     string
}

// LogRecord is the persisted shape in the "logs" collection
type LogRecord struct {
	AppId        string    `bson:"app_id"`
	Message      string    `bson:"message"`
	OrgID        string    `bson:"org_id,omitempty"`
	WorkflowID   string    `bson:"workflow_id,omitempty"`
	Caller       string    `bson:"caller,omitempty"`
	Level        string    `bson:"level"`
	CreatedOnUtc time.Time `bson:"created_on_utc"`
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	db      *mongo.Database
	logChan chan LogEntry
	appId   string
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	writer := &DBLogWriter{
		db:      mongodb.DB,
		logChan: make(chan LogEntry, 1000),
		appId:   cfg.AppId,
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop rather than block the API
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		record := LogRecord{
			AppId:        w.appId,
			Message:      entry.Message,
			OrgID:        entry.OrgID,
			WorkflowID:   entry.WorkflowID,
			Caller:       entry.Caller,
			Level:        entry.Level.String(),
			CreatedOnUtc: time.Now().UTC(),
		}

		// Insert errors are ignored to keep the app running
		w.db.Collection("logs").InsertOne(context.Background(), record)
	}
}
