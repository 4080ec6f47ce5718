package contact

import (
	"context"
	"fmt"

	"github.com/meliem/meliem.github.io/internal/store"
	"go.uber.org/zap"
)

// MessageStore is the persistence the service needs.
type MessageStore interface {
	SaveMessage(ctx context.Context, m store.Message) (store.Message, error)
	MarkDelivered(ctx context.Context, id string, sendErr error) error
}

// Service accepts contact submissions.
type Service struct {
	store  MessageStore
	mailer Mailer
	logger *zap.Logger
}

// NewService builds a service. A nil mailer stores messages without
// delivering them.
func NewService(s MessageStore, m Mailer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, mailer: m, logger: logger}
}

// Submit validates, stores, then mails a form. A *FieldError is returned for
// invalid input. Delivery failures are logged and recorded on the stored
// message; only storage failures fail the submission.
func (s *Service) Submit(ctx context.Context, f Form) (store.Message, error) {
	f = f.Normalize()
	if ferr := f.Validate(); ferr != nil {
		return store.Message{}, ferr
	}

	msg, err := s.store.SaveMessage(ctx, store.Message{
		Name:    f.Name,
		Email:   f.Email,
		Subject: f.Subject,
		Body:    f.Message,
	})
	if err != nil {
		return store.Message{}, fmt.Errorf("failed to store message: %w", err)
	}

	if s.mailer == nil {
		s.logger.Info("Contact message stored, mail disabled", zap.String("id", msg.ID))
		return msg, nil
	}

	sendErr := s.mailer.Send(ctx, f)
	if sendErr != nil {
		s.logger.Warn("Contact message not delivered", zap.String("id", msg.ID), zap.Error(sendErr))
	} else {
		s.logger.Info("Contact message delivered", zap.String("id", msg.ID))
		msg.Delivered = true
	}
	if err := s.store.MarkDelivered(ctx, msg.ID, sendErr); err != nil {
		s.logger.Error("Failed to record delivery", zap.String("id", msg.ID), zap.Error(err))
	}
	if sendErr != nil {
		msg.DeliveryError = sendErr.Error()
	}
	return msg, nil
}
