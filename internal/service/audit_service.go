package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookticket/user-service/internal/events"
)

// AuditService records account lifecycle events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to account lifecycle events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventAccountCreated, a.record)
	a.dispatcher.Subscribe(events.EventAccountUpdated, a.record)
	a.dispatcher.Subscribe(events.EventAccountDeleted, a.record)
}

func (a *AuditService) record(_ context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("account_id", event.AccountID),
		zap.String("handle", event.Handle),
		zap.Time("at", event.Timestamp),
	)
	return nil
}
