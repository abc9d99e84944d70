package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"go-payables/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type EmailService interface {
	SendEmail(ctx context.Context, orgID string, to []string, subject, body string) error
}

type EmailServiceImpl struct {
	Config *config.Config
	Repo   *EmailRepository
	Logger *zap.Logger
}

func NewEmailService(cfg *config.Config, repo *EmailRepository, logger *zap.Logger) EmailService {
	return &EmailServiceImpl{
		Config: cfg,
		Repo:   repo,
		Logger: logger,
	}
}

func (s *EmailServiceImpl) SendEmail(ctx context.Context, orgID string, to []string, subject, body string) error {
	if s.Config.SMTPHost == "" || s.Config.SMTPPort == 0 {
		return errors.New("email configuration missing: no SMTP host or port")
	}
	if len(to) == 0 {
		return errors.New("no recipients")
	}

	from := s.Config.FromEmail
	if from == "" {
		from = s.Config.SMTPUser
	}

	record := &Email{
		ID:        primitive.NewObjectID(),
		OrgID:     orgID,
		From:      from,
		To:        to,
		Subject:   subject,
		Body:      body,
		Status:    EmailQueued,
		CreatedAt: time.Now(),
	}
	if s.Repo != nil {
		_ = s.Repo.Create(ctx, record)
	}

	auth := smtp.PlainAuth("", s.Config.SMTPUser, s.Config.SMTPPassword, s.Config.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.Config.SMTPHost, s.Config.SMTPPort)

	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", to[0], subject, body))

	err := smtp.SendMail(addr, auth, from, to, msg)

	status := EmailSent
	errMsg := ""
	if err != nil {
		status = EmailFailed
		errMsg = err.Error()
	}
	if s.Repo != nil {
		_ = s.Repo.UpdateStatus(ctx, record.ID, status, errMsg)
	}

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.Logger.Debug("email sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}
