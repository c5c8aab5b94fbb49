// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
)

var (
	_ repository.Transactor             = Transactor{}
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.ProfessionalRepository = (*ProfessionalRepository)(nil)
	_ repository.ServiceAreaRepository  = (*ServiceAreaRepository)(nil)
	_ repository.CatalogRepository      = (*CatalogRepository)(nil)
	_ repository.BookingRepository      = (*BookingRepository)(nil)
	_ repository.PaymentRepository      = (*PaymentRepository)(nil)
	_ repository.ReviewRepository       = (*ReviewRepository)(nil)
	_ repository.OutboxRepository       = (*OutboxRepository)(nil)
)

// Transactor runs fn directly and counts how often it was used.
type Transactor struct {
	Calls *int
}

func (t Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.Calls != nil {
		*t.Calls++
	}
	return fn(ctx)
}

// Emitter records emitted event types.
type Emitter struct {
	mock.Mock
}

func (m *Emitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	return m.Called(ctx, eventType, payload).Error(0)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) UpdateNames(ctx context.Context, id uuid.UUID, firstName, lastName *string) error {
	return m.Called(ctx, id, firstName, lastName).Error(0)
}

func (m *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.StoredRole) error {
	return m.Called(ctx, id, role).Error(0)
}

type ProfessionalRepository struct {
	mock.Mock
}

func (m *ProfessionalRepository) EnsureProfile(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *ProfessionalRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.ProfessionalProfile, error) {
	args := m.Called(ctx, userID, req)
	p, _ := args.Get(0).(*model.ProfessionalProfile)
	return p, args.Error(1)
}

func (m *ProfessionalRepository) GetCard(ctx context.Context, userID uuid.UUID) (*model.ProfessionalCard, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(*model.ProfessionalCard)
	return c, args.Error(1)
}

func (m *ProfessionalRepository) SetRatingAggregate(ctx context.Context, userID uuid.UUID, agg model.RatingAggregate) error {
	return m.Called(ctx, userID, agg).Error(0)
}

func (m *ProfessionalRepository) Search(ctx context.Context, filters model.SearchFilters) ([]*model.ProfessionalSummary, error) {
	args := m.Called(ctx, filters)
	items, _ := args.Get(0).([]*model.ProfessionalSummary)
	return items, args.Error(1)
}

type ServiceAreaRepository struct {
	mock.Mock
}

func (m *ServiceAreaRepository) Create(ctx context.Context, area *model.ServiceArea) error {
	return m.Called(ctx, area).Error(0)
}

func (m *ServiceAreaRepository) Update(ctx context.Context, professionalID, id uuid.UUID, req *model.UpdateServiceAreaRequest) (*model.ServiceArea, error) {
	args := m.Called(ctx, professionalID, id, req)
	a, _ := args.Get(0).(*model.ServiceArea)
	return a, args.Error(1)
}

func (m *ServiceAreaRepository) Delete(ctx context.Context, professionalID, id uuid.UUID) error {
	return m.Called(ctx, professionalID, id).Error(0)
}

func (m *ServiceAreaRepository) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*model.ServiceArea, error) {
	args := m.Called(ctx, professionalID)
	a, _ := args.Get(0).([]*model.ServiceArea)
	return a, args.Error(1)
}

type CatalogRepository struct {
	mock.Mock
}

func (m *CatalogRepository) ListCategories(ctx context.Context) ([]*model.ServiceCategory, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]*model.ServiceCategory)
	return c, args.Error(1)
}

func (m *CatalogRepository) GetCategoryBySlug(ctx context.Context, slug string) (*model.ServiceCategory, error) {
	args := m.Called(ctx, slug)
	c, _ := args.Get(0).(*model.ServiceCategory)
	return c, args.Error(1)
}

func (m *CatalogRepository) CreateService(ctx context.Context, svc *model.Service) error {
	return m.Called(ctx, svc).Error(0)
}

func (m *CatalogRepository) UpdateService(ctx context.Context, professionalID, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	args := m.Called(ctx, professionalID, id, req)
	s, _ := args.Get(0).(*model.Service)
	return s, args.Error(1)
}

func (m *CatalogRepository) DeactivateService(ctx context.Context, professionalID, id uuid.UUID) error {
	return m.Called(ctx, professionalID, id).Error(0)
}

func (m *CatalogRepository) GetActiveService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.Service)
	return s, args.Error(1)
}

func (m *CatalogRepository) ListServices(ctx context.Context, professionalID uuid.UUID, activeOnly bool) ([]*model.ServiceListing, error) {
	args := m.Called(ctx, professionalID, activeOnly)
	s, _ := args.Get(0).([]*model.ServiceListing)
	return s, args.Error(1)
}

type BookingRepository struct {
	mock.Mock
}

func (m *BookingRepository) CreateAddress(ctx context.Context, addr *model.Address) error {
	return m.Called(ctx, addr).Error(0)
}

func (m *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *BookingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *BookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []model.BookingStatus, to model.BookingStatus) (*model.Booking, error) {
	args := m.Called(ctx, id, from, to)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *BookingRepository) ListForCustomer(ctx context.Context, customerID uuid.UUID, filter model.BookingFilter) ([]*model.BookingListing, error) {
	args := m.Called(ctx, customerID, filter)
	b, _ := args.Get(0).([]*model.BookingListing)
	return b, args.Error(1)
}

func (m *BookingRepository) ListForProfessional(ctx context.Context, professionalID uuid.UUID, filter model.BookingFilter) ([]*model.BookingListing, error) {
	args := m.Called(ctx, professionalID, filter)
	b, _ := args.Get(0).([]*model.BookingListing)
	return b, args.Error(1)
}

type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) GetPayableBooking(ctx context.Context, bookingID uuid.UUID) (*model.PayableBooking, error) {
	args := m.Called(ctx, bookingID)
	p, _ := args.Get(0).(*model.PayableBooking)
	return p, args.Error(1)
}

func (m *PaymentRepository) Upsert(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	args := m.Called(ctx, payment)
	p, _ := args.Get(0).(*model.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepository) UpdateStatusByBooking(ctx context.Context, bookingID uuid.UUID, status model.PaymentStatus) (*model.Payment, error) {
	args := m.Called(ctx, bookingID, status)
	p, _ := args.Get(0).(*model.Payment)
	return p, args.Error(1)
}

type ReviewRepository struct {
	mock.Mock
}

func (m *ReviewRepository) Upsert(ctx context.Context, review *model.Review) (*model.Review, error) {
	args := m.Called(ctx, review)
	r, _ := args.Get(0).(*model.Review)
	return r, args.Error(1)
}

func (m *ReviewRepository) Aggregate(ctx context.Context, reviewedID uuid.UUID) (model.RatingAggregate, error) {
	args := m.Called(ctx, reviewedID)
	agg, _ := args.Get(0).(model.RatingAggregate)
	return agg, args.Error(1)
}

func (m *ReviewRepository) ListForProfessional(ctx context.Context, professionalID uuid.UUID, limit int) ([]*model.ReviewListing, error) {
	args := m.Called(ctx, professionalID, limit)
	r, _ := args.Get(0).([]*model.ReviewListing)
	return r, args.Error(1)
}

type OutboxRepository struct {
	mock.Mock
}

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	e, _ := args.Get(0).([]*model.OutboxEvent)
	return e, args.Error(1)
}

func (m *OutboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error {
	return m.Called(ctx, id, status, errorMessage, retryAt).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
