package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"workers-service/internal/events"
	"workers-service/pkg/eventbus"
)

// WorkerAuditListener пишет события по сотрудникам в операционный лог.
type WorkerAuditListener struct {
	logger *zap.Logger
}

func NewWorkerAuditListener(logger *zap.Logger) *WorkerAuditListener {
	return &WorkerAuditListener{logger: logger}
}

func (l *WorkerAuditListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.WorkerCreated, l.handleWorkerCreated)
	bus.Subscribe(events.WorkersImported, l.handleWorkersImported)
	l.logger.Info("WorkerAuditListener подписан на события",
		zap.Strings("events", []string{events.WorkerCreated, events.WorkersImported}))
}

func (l *WorkerAuditListener) handleWorkerCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.WorkerCreatedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", event)
	}

	l.logger.Info(fmt.Sprintf("Пользователь %s создал сотрудника %d", e.ActorName, e.WorkerID),
		zap.Uint64("worker_id", e.WorkerID),
		zap.String("email", e.Email),
		zap.Uint64p("actor_id", e.ActorID),
		zap.Time("at", e.At),
	)
	return nil
}

func (l *WorkerAuditListener) handleWorkersImported(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.WorkersImportedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", event)
	}

	l.logger.Info(fmt.Sprintf("Пользователь %s импортировал сотрудников: создано %d, ошибок %d", e.ActorName, e.Created, e.Failed),
		zap.String("run_id", e.RunID),
		zap.String("file", e.FileName),
		zap.Int("created", e.Created),
		zap.Int("failed", e.Failed),
		zap.Uint64p("actor_id", e.ActorID),
		zap.Time("at", e.At),
	)
	return nil
}
