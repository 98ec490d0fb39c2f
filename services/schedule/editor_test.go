package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	providerRepo "solvit/database/repository/provider"
	"solvit/models"
	"solvit/services/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	monday    = models.NewDate(2024, time.December, 23)
	wednesday = models.NewDate(2024, time.December, 25)
	saturday  = models.NewDate(2024, time.December, 28)
)

func TestNewDefaultScheduleService_NilDependencies(t *testing.T) {
	_, err := NewDefaultScheduleService(nil, NewLocalLocker(), events.NoopPublisher{}, zap.NewNop(), Options{})
	assert.Error(t, err)

	svc, err := NewDefaultScheduleService(providerRepo.NewMemoryProviderRepo(), NewLocalLocker(), events.NoopPublisher{}, zap.NewNop(), Options{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBookingMinutes, svc.opts.DefaultBookingMinutes)
	assert.Equal(t, time.UTC, svc.opts.Location)
}

func TestSetRegularHours(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	svc, pub := newTestService(t, repo)

	slots := []models.TimeSlot{models.MustTimeSlot(8, 0, 12, 0), models.MustTimeSlot(13, 0, 18, 0)}
	res, err := svc.SetRegularHours(ctx, "prov-1", time.Saturday, slots)
	require.NoError(t, err)
	assert.Equal(t, "Regular hours for SATURDAY updated", res.Message)
	assert.Equal(t, 1, res.Provider.ScheduleVersion)
	assert.Equal(t, fixedNow, res.Provider.UpdatedAt)

	stored, err := repo.GetByID(ctx, "prov-1")
	require.NoError(t, err)
	assert.Equal(t, slots, stored.Schedule.AvailableSlots(saturday))
	assert.Equal(t, []string{events.TypeScheduleUpdated}, pub.types())

	ok, err := svc.IsAvailable(ctx, "prov-1", saturday.At(14*time.Hour, time.UTC))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClearRegularHours(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	svc, _ := newTestService(t, repo)

	_, err := svc.ClearRegularHours(ctx, "prov-1", time.Monday)
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(ctx, "prov-1", monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestEditor_ValidatesBeforeTouchingStore(t *testing.T) {
	ctx := context.Background()
	repo := &mockProviderRepo{}
	svc, pub := newTestService(t, repo)

	bad := []models.TimeSlot{models.MustTimeSlot(9, 0, 12, 0), {}}

	_, err := svc.SetRegularHours(ctx, "prov-1", time.Monday, bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidTimeRange))
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = svc.AddOffTimeException(ctx, "prov-1", wednesday, bad)
	assert.True(t, errors.Is(err, models.ErrInvalidTimeRange))

	_, err = svc.AddExtraTimeException(ctx, "prov-1", models.Date{}, nil)
	assert.Error(t, err)

	repo.AssertNotCalled(t, "GetByID")
	repo.AssertNotCalled(t, "UpdateIfVersion")
	assert.Empty(t, pub.types())
}

func TestEditor_StrictModeRejectsOverlaps(t *testing.T) {
	repo := seededRepo(t)
	svc, err := NewDefaultScheduleService(repo, NewLocalLocker(), events.NoopPublisher{}, zap.NewNop(), Options{RejectOverlaps: true})
	require.NoError(t, err)

	_, err = svc.SetRegularHours(context.Background(), "prov-1", time.Monday,
		[]models.TimeSlot{models.MustTimeSlot(9, 0, 12, 0), models.MustTimeSlot(11, 0, 14, 0)})
	assert.True(t, errors.Is(err, models.ErrOverlappingSlots))
}

func TestAddException_UpsertsByDate(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	svc, _ := newTestService(t, repo)

	res, err := svc.AddOffTimeException(ctx, "prov-1", wednesday, nil)
	require.NoError(t, err)
	assert.Equal(t, "Time off added for 2024-12-25", res.Message)

	ok, err := svc.IsAvailable(ctx, "prov-1", wednesday.At(10*time.Hour, time.UTC))
	require.NoError(t, err)
	assert.False(t, ok)

	res, err = svc.AddExtraTimeException(ctx, "prov-1", wednesday, []models.TimeSlot{models.MustTimeSlot(10, 0, 12, 0)})
	require.NoError(t, err)
	assert.Contains(t, res.Message, "replaced")

	exceptions := res.Provider.Schedule.Exceptions()
	require.Len(t, exceptions, 1)
	assert.Equal(t, models.ExtraTime, exceptions[0].Kind())

	ok, err = svc.IsAvailable(ctx, "prov-1", wednesday.At(11*time.Hour, time.UTC))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.IsAvailable(ctx, "prov-1", wednesday.At(15*time.Hour, time.UTC))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteException(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	svc, _ := newTestService(t, repo)

	_, err := svc.AddOffTimeException(ctx, "prov-1", wednesday, nil)
	require.NoError(t, err)

	res, err := svc.DeleteException(ctx, "prov-1", wednesday)
	require.NoError(t, err)
	assert.Equal(t, "Exception for 2024-12-25 removed", res.Message)
	assert.Empty(t, res.Provider.Schedule.Exceptions())

	res, err = svc.DeleteException(ctx, "prov-1", saturday)
	require.NoError(t, err)
	assert.Equal(t, "No exception registered for 2024-12-28", res.Message)
}

func TestEditor_ProviderNotFound(t *testing.T) {
	svc, _ := newTestService(t, providerRepo.NewMemoryProviderRepo())
	_, err := svc.SetRegularHours(context.Background(), "ghost", time.Monday, nil)
	assert.True(t, errors.Is(err, providerRepo.ErrProviderNotFound))
}

func TestEditor_StoreFailure(t *testing.T) {
	repo := &mockProviderRepo{}
	p := models.NewProvider("prov-1", models.Profile{}, fixedNow)
	repo.On("GetByID", anyCtx, "prov-1").Return(p, nil)
	repo.On("UpdateIfVersion", anyCtx, mock.Anything, 0).Return(errors.New("disk full"))
	svc, pub := newTestService(t, repo)

	_, err := svc.ClearRegularHours(context.Background(), "prov-1", time.Monday)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, pub.types())
	repo.AssertExpectations(t)
}

// interleavingRepo runs beforeWrite once, just before the first versioned
// write reaches the store, to simulate a concurrent writer.
type interleavingRepo struct {
	*providerRepo.MemoryProviderRepo
	beforeWrite func()
}

func (r *interleavingRepo) UpdateIfVersion(ctx context.Context, p *models.Provider, expected int) error {
	if hook := r.beforeWrite; hook != nil {
		r.beforeWrite = nil
		hook()
	}
	return r.MemoryProviderRepo.UpdateIfVersion(ctx, p, expected)
}

func TestEditor_KeepsBookingAcceptedDuringEdit(t *testing.T) {
	ctx := context.Background()
	repo := &interleavingRepo{MemoryProviderRepo: seededRepo(t)}
	svc, _ := newTestService(t, repo)

	tenAM := monday.At(10*time.Hour, time.UTC)
	repo.beforeWrite = func() {
		_, err := svc.Book(ctx, "prov-1", models.BookingRequest{RequestID: "A", StartTime: tenAM, DurationMinutes: 60})
		require.NoError(t, err)
	}

	fridayHours := []models.TimeSlot{models.MustTimeSlot(8, 0, 12, 0)}
	res, err := svc.SetRegularHours(ctx, "prov-1", time.Friday, fridayHours)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Provider.ScheduleVersion)

	stored, err := repo.GetByID(ctx, "prov-1")
	require.NoError(t, err)
	_, ok := stored.Schedule.AcceptedFor("A")
	assert.True(t, ok, "booking accepted during the edit must survive it")
	friday, _ := stored.Schedule.HoursFor(time.Friday)
	assert.Equal(t, fridayHours, friday)

	_, err = svc.Book(ctx, "prov-1", models.BookingRequest{RequestID: "B", StartTime: tenAM, DurationMinutes: 60})
	assert.True(t, errors.Is(err, models.ErrSlotUnavailable))
}

func TestEditor_GivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := &mockProviderRepo{}
	for i := 0; i < 3; i++ {
		repo.On("GetByID", anyCtx, "prov-1").Return(models.NewProvider("prov-1", models.Profile{}, fixedNow), nil).Once()
	}
	repo.On("UpdateIfVersion", anyCtx, mock.Anything, 0).Return(providerRepo.ErrVersionConflict).Times(3)
	svc, pub := newTestService(t, repo)

	_, err := svc.ClearRegularHours(context.Background(), "prov-1", time.Monday)
	assert.True(t, errors.Is(err, providerRepo.ErrVersionConflict))
	assert.Empty(t, pub.types())
	repo.AssertExpectations(t)
}

func TestSubscribe_ReceivesWrites(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	svc, _ := newTestService(t, repo)

	updates, cancel := svc.Subscribe("prov-1")
	defer cancel()

	_, err := svc.AddOffTimeException(ctx, "prov-1", wednesday, nil)
	require.NoError(t, err)

	select {
	case p := <-updates:
		_, ok := p.Schedule.ExceptionFor(wednesday)
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}

func TestFreeIntervals(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	svc, _ := newTestService(t, repo)

	_, err := svc.Book(ctx, "prov-1", models.BookingRequest{RequestID: "r1", StartTime: monday.At(10*time.Hour, time.UTC), DurationMinutes: 60})
	require.NoError(t, err)

	free, err := svc.FreeIntervals(ctx, "prov-1", monday)
	require.NoError(t, err)
	require.Len(t, free, 2)
	assert.Equal(t, monday.At(9*time.Hour, time.UTC), free[0].Start)
	assert.Equal(t, monday.At(10*time.Hour, time.UTC), free[0].End)
	assert.Equal(t, monday.At(11*time.Hour, time.UTC), free[1].Start)
	assert.Equal(t, monday.At(17*time.Hour, time.UTC), free[1].End)
}

func TestRegisterProvider(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, providerRepo.NewMemoryProviderRepo())

	prov, err := svc.RegisterProvider(ctx, "prov-9", models.Profile{ProviderName: "Cy"})
	require.NoError(t, err)
	assert.Empty(t, prov.Schedule.RegularHours())

	_, err = svc.RegisterProvider(ctx, "prov-9", models.Profile{})
	assert.True(t, errors.Is(err, providerRepo.ErrProviderExists))

	_, err = svc.RegisterProvider(ctx, "", models.Profile{})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
