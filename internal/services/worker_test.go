package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"workers-service/internal/dto"
	"workers-service/internal/events"
	apperrors "workers-service/pkg/errors"
	"workers-service/pkg/utils"
)

type WorkerServiceSuite struct {
	suite.Suite
	repo    *fakeWorkerRepo
	tx      *fakeTxManager
	bus     *fakeBus
	service *WorkerService
	ctx     context.Context
	now     time.Time
}

func (s *WorkerServiceSuite) SetupTest() {
	s.repo = newFakeWorkerRepo()
	s.repo.users[1] = "admin"
	s.tx = &fakeTxManager{}
	s.bus = &fakeBus{}
	s.service = NewWorkerService(s.repo, s.tx, s.bus, zap.NewNop())
	s.now = time.Date(2025, 5, 14, 15, 30, 0, 0, time.UTC)
	s.service.now = func() time.Time { return s.now }
	s.ctx = utils.WithPrincipal(context.Background(), &dto.Principal{UserID: 1, Username: "admin", IsStaff: true, IsActive: true})
}

func TestWorkerServiceSuite(t *testing.T) {
	suite.Run(t, new(WorkerServiceSuite))
}

func (s *WorkerServiceSuite) create(email string) *dto.WorkerDTO {
	created, err := s.service.CreateWorker(s.ctx, dto.CreateWorkerDTO{
		FirstName: "Иван",
		LastName:  "Иванов",
		Email:     email,
		Position:  "Разработчик",
	})
	s.Require().NoError(err)
	return created
}

func (s *WorkerServiceSuite) TestCreateWorker_Defaults() {
	created := s.create("ivan@example.com")

	s.Equal(uint64(1), created.ID)
	s.True(created.IsActive)
	s.Equal("2025-05-14", created.HiredDate)
	s.Require().NotNil(created.CreatedBy)
	s.Equal("admin", *created.CreatedBy)
	s.False(created.IsDeleted)
	s.False(created.MiddleName.Valid)

	published := s.bus.Events()
	s.Require().Len(published, 1)
	event, ok := published[0].(events.WorkerCreatedEvent)
	s.Require().True(ok)
	s.Equal(created.ID, event.WorkerID)
	s.Equal("admin", event.ActorName)
}

func (s *WorkerServiceSuite) TestCreateWorker_ExplicitInactiveAndTrim() {
	inactive := false
	created, err := s.service.CreateWorker(s.ctx, dto.CreateWorkerDTO{
		FirstName:  "  Анна ",
		MiddleName: null.StringFrom(" Сергеевна "),
		LastName:   "Смирнова",
		Email:      " anna@example.com ",
		Position:   "Бухгалтер",
		IsActive:   &inactive,
	})
	s.Require().NoError(err)
	s.False(created.IsActive)
	s.Equal("Анна", created.FirstName)
	s.Equal(null.StringFrom("Сергеевна"), created.MiddleName)
	s.Equal("anna@example.com", created.Email)
}

func (s *WorkerServiceSuite) TestCreateWorker_DuplicateEmail() {
	s.create("dup@example.com")

	_, err := s.service.CreateWorker(s.ctx, dto.CreateWorkerDTO{
		FirstName: "Пётр", LastName: "Петров", Email: "dup@example.com", Position: "Тестировщик",
	})
	var validationErr *apperrors.ValidationError
	s.Require().True(errors.As(err, &validationErr))
	s.Contains(validationErr.Fields, "email")
	s.Len(s.bus.Events(), 1)
}

func (s *WorkerServiceSuite) TestUpdateWorker_PartialKeepsServerFields() {
	created := s.create("ivan@example.com")
	s.now = s.now.Add(48 * time.Hour)

	position := "Тимлид"
	updated, err := s.service.UpdateWorker(s.ctx, created.ID, dto.UpdateWorkerDTO{Position: &position}, dto.FieldSet{"position": true})
	s.Require().NoError(err)

	s.Equal("Тимлид", updated.Position)
	s.Equal("Иван", updated.FirstName)
	s.Equal(created.HiredDate, updated.HiredDate)
	s.Equal(created.CreatedBy, updated.CreatedBy)
	s.Equal(1, s.tx.calls)
	s.Equal([]uint64{created.ID}, s.repo.locked)
}

func (s *WorkerServiceSuite) TestUpdateWorker_IgnoresUnsentFields() {
	created := s.create("ivan@example.com")

	name := "Другое"
	updated, err := s.service.UpdateWorker(s.ctx, created.ID, dto.UpdateWorkerDTO{FirstName: &name}, dto.FieldSet{})
	s.Require().NoError(err)
	s.Equal("Иван", updated.FirstName)
}

func (s *WorkerServiceSuite) TestUpdateWorker_ClearsMiddleName() {
	created, err := s.service.CreateWorker(s.ctx, dto.CreateWorkerDTO{
		FirstName: "Иван", MiddleName: null.StringFrom("Иванович"), LastName: "Иванов",
		Email: "ivan@example.com", Position: "Разработчик",
	})
	s.Require().NoError(err)

	updated, err := s.service.UpdateWorker(s.ctx, created.ID, dto.UpdateWorkerDTO{}, dto.FieldSet{"middle_name": true})
	s.Require().NoError(err)
	s.False(updated.MiddleName.Valid)
}

func (s *WorkerServiceSuite) TestUpdateWorker_NotFound() {
	name := "Иван"
	_, err := s.service.UpdateWorker(s.ctx, 404, dto.UpdateWorkerDTO{FirstName: &name}, dto.FieldSet{"first_name": true})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *WorkerServiceSuite) TestReplaceWorker_KeepsOptionalWhenNotSent() {
	inactive := false
	created, err := s.service.CreateWorker(s.ctx, dto.CreateWorkerDTO{
		FirstName: "Иван", LastName: "Иванов", Email: "ivan@example.com", Position: "Разработчик", IsActive: &inactive,
	})
	s.Require().NoError(err)

	replaced, err := s.service.ReplaceWorker(s.ctx, created.ID, dto.CreateWorkerDTO{
		FirstName: "Иван", LastName: "Сидоров", Email: "sidorov@example.com", Position: "Аналитик",
	}, dto.FieldSet{"first_name": true, "last_name": true, "email": true, "position": true})
	s.Require().NoError(err)

	s.Equal("Сидоров", replaced.LastName)
	s.Equal("sidorov@example.com", replaced.Email)
	s.False(replaced.IsActive)
}

func (s *WorkerServiceSuite) TestDeleteWorker_SoftDeletes() {
	created := s.create("ivan@example.com")

	s.Require().NoError(s.service.DeleteWorker(s.ctx, created.ID))

	_, err := s.service.FindWorker(s.ctx, created.ID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	s.ErrorIs(s.service.DeleteWorker(s.ctx, created.ID), apperrors.ErrNotFound)

	// Запись физически осталась
	s.True(s.repo.workers[created.ID].IsDeleted)

	list, total, err := s.service.GetWorkers(s.ctx, dto.WorkerListFilter{Limit: 100, Page: 1})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(list)
}

func (s *WorkerServiceSuite) TestGetWorkers_FilterAndPaging() {
	s.create("a@example.com")
	second := s.create("b@example.com")
	s.create("c@example.com")

	inactive := false
	_, err := s.service.UpdateWorker(s.ctx, second.ID, dto.UpdateWorkerDTO{IsActive: &inactive}, dto.FieldSet{"is_active": true})
	s.Require().NoError(err)

	active := true
	list, total, err := s.service.GetWorkers(s.ctx, dto.WorkerListFilter{IsActive: &active, Limit: 1, Offset: 1, Page: 2})
	s.Require().NoError(err)
	s.Equal(uint64(2), total)
	s.Require().Len(list, 1)
	s.Equal(uint64(3), list[0].ID)

	_, _, err = s.service.GetWorkers(s.ctx, dto.WorkerListFilter{IsActive: &active, Limit: 1, Offset: 2, Page: 3})
	s.ErrorIs(err, apperrors.ErrInvalidPage)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), dateOnly(time.Date(2025, 1, 2, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, null.StringFrom("x"), trimNullString(null.StringFrom(" x ")))
	assert.False(t, trimNullString(null.String{}).Valid)
	require.ElementsMatch(t, []string{"a", "b"}, sentKeys(dto.FieldSet{"a": true, "b": true}))
}
