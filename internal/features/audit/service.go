package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AuditService is append-only. Log never fails the caller: audit write
// problems are logged and swallowed.
type AuditService interface {
	Log(ctx context.Context, orgID, userID string, action Action, entityType EntityType, entityID, description string, metadata map[string]interface{})
	List(ctx context.Context, orgID string, limit int64) ([]AuditLog, error)
}

type AuditServiceImpl struct {
	Repo   AuditRepository
	Logger *zap.Logger
}

func NewAuditService(repo AuditRepository, logger *zap.Logger) AuditService {
	return &AuditServiceImpl{
		Repo:   repo,
		Logger: logger,
	}
}

func (s *AuditServiceImpl) Log(ctx context.Context, orgID, userID string, action Action, entityType EntityType, entityID, description string, metadata map[string]interface{}) {
	entry := &AuditLog{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		UserID:         userID,
		Action:         action,
		EntityType:     entityType,
		EntityID:       entityID,
		Description:    description,
		Metadata:       metadata,
		Timestamp:      time.Now(),
	}

	if err := s.Repo.Create(ctx, entry); err != nil {
		s.Logger.Warn("audit log write failed",
			zap.String("orgId", orgID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func (s *AuditServiceImpl) List(ctx context.Context, orgID string, limit int64) ([]AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.Repo.ListByOrganization(ctx, orgID, limit)
}
