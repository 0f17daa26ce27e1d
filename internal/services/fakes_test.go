package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"workers-service/internal/entities"
	"workers-service/internal/repositories"
	apperrors "workers-service/pkg/errors"
	"workers-service/pkg/eventbus"
	"workers-service/pkg/types"
)

// fakeWorkerRepo - хранилище сотрудников в памяти с уникальностью email.
type fakeWorkerRepo struct {
	mu      sync.Mutex
	nextID  uint64
	workers map[uint64]*entities.Worker
	users   map[uint64]string
	locked  []uint64
}

func newFakeWorkerRepo() *fakeWorkerRepo {
	return &fakeWorkerRepo{workers: make(map[uint64]*entities.Worker), users: make(map[uint64]string)}
}

func (r *fakeWorkerRepo) withName(w entities.Worker) *entities.Worker {
	if w.CreatedBy != nil {
		if name, ok := r.users[*w.CreatedBy]; ok {
			w.CreatedByName = &name
		}
	}
	return &w
}

func (r *fakeWorkerRepo) GetAll(ctx context.Context, filter types.Filter) ([]entities.Worker, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]uint64, 0, len(r.workers))
	for id := range r.workers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	matched := make([]entities.Worker, 0)
	for _, id := range ids {
		w := r.workers[id]
		if w.IsDeleted {
			continue
		}
		if v, ok := filter.Filter["is_active"]; ok && w.IsActive != v.(bool) {
			continue
		}
		if v, ok := filter.Filter["position"]; ok && w.Position != v.(string) {
			continue
		}
		if filter.Search != "" {
			haystack := strings.ToLower(w.FirstName + " " + w.LastName + " " + w.Email + " " + w.Position)
			if !strings.Contains(haystack, strings.ToLower(filter.Search)) {
				continue
			}
		}
		matched = append(matched, *r.withName(*w))
	}

	total := uint64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

func (r *fakeWorkerRepo) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workers[id]
	if !ok || w.IsDeleted {
		return nil, apperrors.ErrNotFound
	}
	return r.withName(*w), nil
}

func (r *fakeWorkerRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Worker, error) {
	r.mu.Lock()
	r.locked = append(r.locked, id)
	r.mu.Unlock()
	return r.FindByID(ctx, tx, id)
}

func (r *fakeWorkerRepo) emailTaken(email string, except uint64) bool {
	for id, w := range r.workers {
		if id != except && w.Email == email {
			return true
		}
	}
	return false
}

func (r *fakeWorkerRepo) Create(ctx context.Context, tx pgx.Tx, w entities.Worker) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(w.Email, 0) {
		return 0, apperrors.NewValidationError("email", repositories.DuplicateEmailMessage)
	}
	r.nextID++
	w.ID = r.nextID
	r.workers[w.ID] = &w
	return w.ID, nil
}

func (r *fakeWorkerRepo) Update(ctx context.Context, tx pgx.Tx, w entities.Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.workers[w.ID]
	if !ok || current.IsDeleted {
		return apperrors.ErrNotFound
	}
	if r.emailTaken(w.Email, w.ID) {
		return apperrors.NewValidationError("email", repositories.DuplicateEmailMessage)
	}
	current.FirstName = w.FirstName
	current.MiddleName = w.MiddleName
	current.LastName = w.LastName
	current.Email = w.Email
	current.Position = w.Position
	current.IsActive = w.IsActive
	current.UpdatedAt = w.UpdatedAt
	return nil
}

func (r *fakeWorkerRepo) SoftDelete(ctx context.Context, tx pgx.Tx, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workers[id]
	if !ok || w.IsDeleted {
		return apperrors.ErrNotFound
	}
	w.IsDeleted = true
	return nil
}

// fakeTxManager выполняет функцию без настоящей транзакции.
type fakeTxManager struct{ calls int }

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.calls++
	return fn(nil)
}

// fakeBus запоминает опубликованные события.
type fakeBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (b *fakeBus) Publish(ctx context.Context, event eventbus.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeBus) Events() []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]eventbus.Event(nil), b.events...)
}
