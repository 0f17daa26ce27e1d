package events

import "time"

const (
	WorkerCreated   = "worker.created"
	WorkersImported = "workers.imported"
)

// WorkerCreatedEvent - сотрудник создан через API.
type WorkerCreatedEvent struct {
	WorkerID  uint64
	Email     string
	ActorID   *uint64
	ActorName string
	At        time.Time
}

// Name - реализуем интерфейс eventbus.Event
func (e WorkerCreatedEvent) Name() string {
	return WorkerCreated
}

// WorkersImportedEvent - завершён импорт из Excel файла.
type WorkersImportedEvent struct {
	RunID     string
	FileName  string
	Created   int
	Failed    int
	ActorID   *uint64
	ActorName string
	At        time.Time
}

func (e WorkersImportedEvent) Name() string {
	return WorkersImported
}
