package notification

import (
	"context"
	"fmt"

	"go-payables/internal/features/approval"
	"go-payables/internal/features/email"
	"go-payables/internal/features/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type NotificationService interface {
	approval.Notifier

	Notify(ctx context.Context, userID, orgID, title, message string, notifType NotificationType, link string)
	GetUserNotifications(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, id string, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
}

type NotificationServiceImpl struct {
	Repo     NotificationRepository
	Hub      *Hub
	Emails   email.EmailService
	UserRepo user.UserRepository
	Logger   *zap.Logger
}

func NewNotificationService(
	repo NotificationRepository,
	hub *Hub,
	emails email.EmailService,
	userRepo user.UserRepository,
	logger *zap.Logger,
) NotificationService {
	return &NotificationServiceImpl{
		Repo:     repo,
		Hub:      hub,
		Emails:   emails,
		UserRepo: userRepo,
		Logger:   logger,
	}
}

// Notify persists an in-app notification and pushes it to live websocket
// connections. Failures are logged, never returned.
func (s *NotificationServiceImpl) Notify(ctx context.Context, userID, orgID, title, message string, notifType NotificationType, link string) {
	n := &Notification{
		UserID:  userID,
		OrgID:   orgID,
		Title:   title,
		Message: message,
		Type:    notifType,
		Link:    link,
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		s.Logger.Warn("failed to persist notification",
			zap.String("userId", userID),
			zap.Error(err))
		return
	}
	s.Hub.Push(userID, n)
}

func (s *NotificationServiceImpl) ApprovalRequested(ctx context.Context, wf *approval.ApprovalWorkflow, step *approval.ApprovalStep) {
	title := "Approval requested"
	message := fmt.Sprintf("An invoice is awaiting your approval (step %d of %d)",
		step.StepNumber, len(wf.Approvals))
	link := "/payables/" + wf.PayableID

	s.Notify(ctx, step.ApproverID, wf.OrganizationID, title, message, NotificationTypeApproval, link)

	if step.ApproverEmail != "" {
		if err := s.Emails.SendEmail(ctx, wf.OrganizationID, []string{step.ApproverEmail}, title, message); err != nil {
			s.Logger.Warn("failed to email approver",
				zap.String("workflowId", wf.ID.Hex()),
				zap.Error(err))
		}
	}
}

func (s *NotificationServiceImpl) ApprovalResolved(ctx context.Context, wf *approval.ApprovalWorkflow, actorID string, comments string) {
	title := "Invoice approved"
	notifType := NotificationTypeSuccess
	if wf.Status == approval.StatusRejected {
		title = "Invoice rejected"
		notifType = NotificationTypeWarning
	}
	message := title
	if comments != "" {
		message = fmt.Sprintf("%s: %s", title, comments)
	}
	link := "/payables/" + wf.PayableID

	// The issuer always hears about the outcome.
	if wf.CreatedBy != actorID {
		s.Notify(ctx, wf.CreatedBy, wf.OrganizationID, title, message, notifType, link)
		s.emailUser(ctx, wf.OrganizationID, wf.CreatedBy, title, message)
	}

	// So does every approver who already acted, the one acting now included.
	seen := map[string]bool{wf.CreatedBy: true}
	for i := range wf.Approvals {
		step := &wf.Approvals[i]
		if step.Decision == approval.DecisionPending || seen[step.ApproverID] {
			continue
		}
		seen[step.ApproverID] = true
		s.Notify(ctx, step.ApproverID, wf.OrganizationID, title, message, notifType, link)
	}
}

func (s *NotificationServiceImpl) emailUser(ctx context.Context, orgID, userID, subject, body string) {
	u, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil || u == nil {
		return
	}
	if err := s.Emails.SendEmail(ctx, orgID, []string{u.Email}, subject, body); err != nil {
		s.Logger.Warn("failed to email user",
			zap.String("userId", userID),
			zap.Error(err))
	}
}

func (s *NotificationServiceImpl) GetUserNotifications(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error) {
	return s.Repo.GetByUserID(ctx, userID, page, limit)
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.Repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, id string, userID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	return s.Repo.MarkAsRead(ctx, objID, userID)
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.Repo.MarkAllAsRead(ctx, userID)
}
