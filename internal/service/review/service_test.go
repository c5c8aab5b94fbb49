package review

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
	"github.com/allservices/marketplace-api/internal/repository/mocks"
	"github.com/allservices/marketplace-api/pkg/audit"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
	"github.com/allservices/marketplace-api/pkg/metrics"
)

// memReviews keeps one review per booking, like the unique index does.
type memReviews struct {
	byBooking map[uuid.UUID]*model.Review
}

func (m *memReviews) Upsert(_ context.Context, r *model.Review) (*model.Review, error) {
	if existing, ok := m.byBooking[r.BookingID]; ok {
		existing.Rating = r.Rating
		existing.Comment = r.Comment
		existing.UpdatedAt = time.Now()
		cp := *existing
		return &cp, nil
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	cp := *r
	m.byBooking[r.BookingID] = &cp
	return r, nil
}

func (m *memReviews) Aggregate(_ context.Context, reviewedID uuid.UUID) (model.RatingAggregate, error) {
	var agg model.RatingAggregate
	sum := 0
	for _, r := range m.byBooking {
		if r.ReviewedID == reviewedID {
			agg.Count++
			sum += r.Rating
		}
	}
	if agg.Count > 0 {
		agg.Avg = float64(sum) / float64(agg.Count)
	}
	return agg, nil
}

func (m *memReviews) ListForProfessional(context.Context, uuid.UUID, int) ([]*model.ReviewListing, error) {
	return nil, nil
}

type fixture struct {
	svc      *Service
	reviews  *memReviews
	bookings *mocks.BookingRepository
	pros     *mocks.ProfessionalRepository
	events   *mocks.Emitter
	metrics  *metrics.Metrics
	customer uuid.UUID
	pro      uuid.UUID
	stored   model.RatingAggregate
}

func setup() *fixture {
	f := &fixture{
		reviews:  &memReviews{byBooking: map[uuid.UUID]*model.Review{}},
		bookings: &mocks.BookingRepository{},
		pros:     &mocks.ProfessionalRepository{},
		events:   &mocks.Emitter{},
		metrics:  metrics.NewMetrics("test", prometheus.NewRegistry()),
		customer: uuid.New(),
		pro:      uuid.New(),
	}
	f.events.On("Emit", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.pros.On("SetRatingAggregate", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { f.stored = args.Get(2).(model.RatingAggregate) }).
		Return(nil)
	f.svc = NewService(mocks.Transactor{}, f.reviews, f.bookings, f.pros, f.events, f.metrics, audit.Nop())
	return f
}

func (f *fixture) booking(status model.BookingStatus) uuid.UUID {
	id := uuid.New()
	f.bookings.On("GetByID", mock.Anything, id).Return(&model.Booking{
		ID:             id,
		CustomerID:     f.customer,
		ProfessionalID: f.pro,
		Status:         status,
	}, nil)
	return id
}

func request(bookingID uuid.UUID, rating int) *model.SubmitReviewRequest {
	return &model.SubmitReviewRequest{BookingID: bookingID.String(), Rating: &rating}
}

func TestSubmit_CompletedBooking(t *testing.T) {
	f := setup()
	id := f.booking(model.BookingCompleted)

	r, err := f.svc.Submit(context.Background(), f.customer, request(id, 4))
	require.NoError(t, err)
	assert.Equal(t, 4, r.Rating)
	assert.Equal(t, f.pro, r.ReviewedID)
	assert.Equal(t, model.RatingAggregate{Count: 1, Avg: 4}, f.stored)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReviewsSubmitted))
	f.events.AssertCalled(t, "Emit", mock.Anything, model.EventReviewSubmitted, mock.Anything)
}

func TestSubmit_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("rating out of range is checked before any read", func(t *testing.T) {
		f := setup()
		for _, rating := range []int{0, 6} {
			_, err := f.svc.Submit(ctx, f.customer, request(uuid.New(), rating))
			assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
		}
		_, err := f.svc.Submit(ctx, f.customer, &model.SubmitReviewRequest{BookingID: uuid.NewString()})
		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
		f.bookings.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("booking not completed", func(t *testing.T) {
		for _, status := range []model.BookingStatus{model.BookingPending, model.BookingAccepted, model.BookingCancelled, model.BookingDisputed} {
			f := setup()
			id := f.booking(status)
			_, err := f.svc.Submit(ctx, f.customer, request(id, 5))
			assert.True(t, apperrors.Is(err, apperrors.ErrConflict), status)
			f.pros.AssertNotCalled(t, "SetRatingAggregate", mock.Anything, mock.Anything, mock.Anything)
			assert.Empty(t, f.reviews.byBooking)
		}
	})

	t.Run("not the customer", func(t *testing.T) {
		f := setup()
		id := f.booking(model.BookingCompleted)
		_, err := f.svc.Submit(ctx, f.pro, request(id, 5))
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
		assert.Empty(t, f.reviews.byBooking)
	})

	t.Run("missing booking", func(t *testing.T) {
		f := setup()
		id := uuid.New()
		f.bookings.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)
		_, err := f.svc.Submit(ctx, f.customer, request(id, 5))
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestSubmit_ResubmitReplacesRating(t *testing.T) {
	f := setup()
	ctx := context.Background()
	id := f.booking(model.BookingCompleted)

	_, err := f.svc.Submit(ctx, f.customer, request(id, 2))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.customer, request(id, 5))
	require.NoError(t, err)

	assert.Len(t, f.reviews.byBooking, 1)
	assert.Equal(t, model.RatingAggregate{Count: 1, Avg: 5}, f.stored)
}

func TestSubmit_AggregateMatchesRecompute(t *testing.T) {
	f := setup()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	bookings := make([]uuid.UUID, 6)
	for i := range bookings {
		bookings[i] = f.booking(model.BookingCompleted)
	}

	for i := 0; i < 40; i++ {
		id := bookings[rng.Intn(len(bookings))]
		_, err := f.svc.Submit(ctx, f.customer, request(id, 1+rng.Intn(5)))
		require.NoError(t, err)

		sum := 0
		for _, r := range f.reviews.byBooking {
			sum += r.Rating
		}
		count := len(f.reviews.byBooking)
		assert.Equal(t, count, f.stored.Count)
		assert.InDelta(t, float64(sum)/float64(count), f.stored.Avg, 1e-9)
	}
}
