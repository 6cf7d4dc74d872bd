package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/districtops/transport-api/internal/models"
	appErrors "github.com/districtops/transport-api/pkg/errors"
)

// stubSeriesValidator fails specific dates and accepts everything else.
type stubSeriesValidator struct {
	failDates map[string][]string
}

func (s *stubSeriesValidator) Validate(ctx context.Context, activity *models.Activity) []string {
	if s.failDates == nil {
		return nil
	}
	return s.failDates[activity.Date.Format("2006-01-02")]
}

func (s *stubSeriesValidator) lockResources(driverID, vehicleID int64) func() {
	return func() {}
}

func newTestRecurrenceService(repo *mockActivityRepo, validator *stubSeriesValidator, maxInstances int) *RecurrenceService {
	return NewRecurrenceService(repo, validator, maxInstances, nil, zap.NewNop(), nil)
}

func seriesBase() *models.Activity {
	return &models.Activity{
		ActivityType: "ROUTE",
		Description:  "Morning pickup",
		Destination:  "Lincoln Elementary",
		DriverID:     5,
		VehicleID:    2,
		LeaveTime:    models.NewTimeOfDay(7, 0),
		EventTime:    models.NewTimeOfDay(7, 45),
		ReturnTime:   models.NewTimeOfDay(8, 30),
		Status:       models.StatusScheduled,
	}
}

func TestGenerateSeriesDaily(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 0)

	start := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	instances, err := svc.GenerateSeries(seriesBase(), models.RecurrenceRule{
		Type:      models.RecurrenceDaily,
		Interval:  1,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 6),
	}, 0)
	require.NoError(t, err)
	require.Len(t, instances, 7)
	for i, inst := range instances {
		assert.Equal(t, start.AddDate(0, 0, i), inst.Date)
		assert.Zero(t, inst.ID)
	}
}

func TestGenerateSeriesDailyInterval(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 0)

	start := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	instances, err := svc.GenerateSeries(seriesBase(), models.RecurrenceRule{
		Type:      models.RecurrenceDaily,
		Interval:  2,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 6),
	}, 0)
	require.NoError(t, err)
	require.Len(t, instances, 4)
	assert.Equal(t, start.AddDate(0, 0, 6), instances[3].Date)
}

func TestGenerateSeriesWeeklyMondays(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 0)

	// 2030-05-06 is a Monday.
	start := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, start.Weekday())

	instances, err := svc.GenerateSeries(seriesBase(), models.RecurrenceRule{
		Type:       models.RecurrenceWeekly,
		Interval:   1,
		DaysOfWeek: []time.Weekday{time.Monday},
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 27),
	}, 0)
	require.NoError(t, err)
	require.Len(t, instances, 4)
	for _, inst := range instances {
		assert.Equal(t, time.Monday, inst.Date.Weekday())
	}
}

func TestGenerateSeriesWeeklyFilterExcludesStartWeekday(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 0)

	// Iteration steps a whole week at a time, so a filter that never matches
	// the start weekday yields nothing.
	start := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	instances, err := svc.GenerateSeries(seriesBase(), models.RecurrenceRule{
		Type:       models.RecurrenceWeekly,
		Interval:   1,
		DaysOfWeek: []time.Weekday{time.Friday},
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 27),
	}, 0)
	require.NoError(t, err)
	assert.Empty(t, instances)
}

func TestGenerateSeriesMonthly(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 0)

	start := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)
	instances, err := svc.GenerateSeries(seriesBase(), models.RecurrenceRule{
		Type:      models.RecurrenceMonthly,
		Interval:  1,
		StartDate: start,
		EndDate:   time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC),
	}, 0)
	require.NoError(t, err)
	require.Len(t, instances, 6)
	for _, inst := range instances {
		assert.Equal(t, 15, inst.Date.Day())
	}
}

func TestGenerateSeriesMonthlyDay31SkipsShortMonths(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 0)

	// A series anchored on the 31st lands only in months that have one;
	// February, April, June, September and November are skipped outright
	// rather than shifted onto a neighbouring day.
	start := time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)
	instances, err := svc.GenerateSeries(seriesBase(), models.RecurrenceRule{
		Type:      models.RecurrenceMonthly,
		Interval:  1,
		StartDate: start,
		EndDate:   time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC),
	}, 0)
	require.NoError(t, err)
	require.Len(t, instances, 7)

	var months []time.Month
	for _, inst := range instances {
		assert.Equal(t, 31, inst.Date.Day())
		months = append(months, inst.Date.Month())
	}
	assert.Equal(t, []time.Month{
		time.January, time.March, time.May, time.July,
		time.August, time.October, time.December,
	}, months)
}

func TestGenerateSeriesYearly(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 0)

	start := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)
	instances, err := svc.GenerateSeries(seriesBase(), models.RecurrenceRule{
		Type:      models.RecurrenceYearly,
		Interval:  1,
		StartDate: start,
		EndDate:   time.Date(2033, 1, 15, 0, 0, 0, 0, time.UTC),
	}, 0)
	require.NoError(t, err)
	assert.Len(t, instances, 4)
}

func TestGenerateSeriesRejectsNonPositiveInterval(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 0)

	start := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	for _, rt := range []models.RecurrenceType{
		models.RecurrenceDaily,
		models.RecurrenceWeekly,
		models.RecurrenceMonthly,
		models.RecurrenceYearly,
	} {
		t.Run(string(rt), func(t *testing.T) {
			_, err := svc.GenerateSeries(seriesBase(), models.RecurrenceRule{
				Type:      rt,
				Interval:  0,
				StartDate: start,
				EndDate:   start.AddDate(0, 0, 6),
			}, 0)
			require.Error(t, err)

			var appErr *appErrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
		})
	}
}

func TestGenerateSeriesRejectsEndBeforeStart(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 0)

	start := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	_, err := svc.GenerateSeries(seriesBase(), models.RecurrenceRule{
		Type:      models.RecurrenceDaily,
		Interval:  1,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, -1),
	}, 0)
	require.Error(t, err)
}

func TestGenerateSeriesInstanceCap(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 5)

	start := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	_, err := svc.GenerateSeries(seriesBase(), models.RecurrenceRule{
		Type:      models.RecurrenceDaily,
		Interval:  1,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 30),
	}, 0)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrSeriesTooLarge.Code, appErr.Code)
}

func TestCreateRecurringActivities(t *testing.T) {
	repo := &mockActivityRepo{}
	svc := NewRecurrenceService(repo, &stubSeriesValidator{}, 0, validator.New(), zap.NewNop(), nil)

	start := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	result, err := svc.CreateRecurringActivities(context.Background(), CreateRecurringRequest{
		Activity: CreateActivityRequest{
			Date:         start,
			ActivityType: "ROUTE",
			Description:  "Morning pickup",
			Destination:  "Lincoln Elementary",
			DriverID:     5,
			VehicleID:    2,
			LeaveTime:    models.NewTimeOfDay(7, 0),
			EventTime:    models.NewTimeOfDay(7, 45),
			ReturnTime:   models.NewTimeOfDay(8, 30),
		},
		Rule: models.RecurrenceRule{
			Type:      models.RecurrenceDaily,
			Interval:  1,
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 4),
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 5)
	assert.Empty(t, result.Skipped)

	// The first persisted instance roots the series and keys the rest.
	root := result.Created[0]
	assert.Equal(t, root.ID, result.SeriesID)
	assert.Zero(t, root.RecurringSeriesID)
	for _, member := range result.Created[1:] {
		assert.Equal(t, root.ID, member.RecurringSeriesID)
	}
}

func TestCreateRecurringSkipsInvalidInstances(t *testing.T) {
	repo := &mockActivityRepo{}
	failing := &stubSeriesValidator{failDates: map[string][]string{
		"2030-05-08": {"driver is already scheduled for an overlapping activity"},
	}}
	svc := NewRecurrenceService(repo, failing, 0, validator.New(), zap.NewNop(), nil)

	start := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	result, err := svc.CreateRecurringActivities(context.Background(), CreateRecurringRequest{
		Activity: CreateActivityRequest{
			Date:         start,
			ActivityType: "ROUTE",
			Description:  "Morning pickup",
			Destination:  "Lincoln Elementary",
			LeaveTime:    models.NewTimeOfDay(7, 0),
			EventTime:    models.NewTimeOfDay(7, 45),
			ReturnTime:   models.NewTimeOfDay(8, 30),
		},
		Rule: models.RecurrenceRule{
			Type:      models.RecurrenceDaily,
			Interval:  1,
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 4),
		},
	})
	require.NoError(t, err)
	assert.Len(t, result.Created, 4)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, time.Date(2030, 5, 8, 0, 0, 0, 0, time.UTC), result.Skipped[0].Date)
	assert.NotEmpty(t, result.Skipped[0].Problems)
}

// overlapGuardRepo flags any conflict check or insert that runs while another
// one is still in flight. Series creation must hold the resource lock across
// its whole validate-then-persist sweep, so overlapping calls mean the lock
// was not held.
type overlapGuardRepo struct {
	*mockActivityRepo
	inFlight   int32
	overlapped int32
}

func (r *overlapGuardRepo) enter() {
	if atomic.AddInt32(&r.inFlight, 1) > 1 {
		atomic.StoreInt32(&r.overlapped, 1)
	}
	time.Sleep(time.Millisecond)
}

func (r *overlapGuardRepo) leave() {
	atomic.AddInt32(&r.inFlight, -1)
}

func (r *overlapGuardRepo) ListByDate(ctx context.Context, date time.Time) ([]models.Activity, error) {
	r.enter()
	defer r.leave()
	return r.mockActivityRepo.ListByDate(ctx, date)
}

func (r *overlapGuardRepo) Create(ctx context.Context, activity *models.Activity) error {
	r.enter()
	defer r.leave()
	return r.mockActivityRepo.Create(ctx, activity)
}

func TestCreateRecurringConcurrentRequestsDoNotDoubleBook(t *testing.T) {
	repo := &overlapGuardRepo{mockActivityRepo: &mockActivityRepo{}}
	activities := NewActivityService(repo, &mockDriverReader{drivers: map[int64]models.Driver{5: activeDriver(5)}},
		&mockVehicleReader{vehicles: map[int64]models.Vehicle{2: activeVehicle(2)}},
		validator.New(), zap.NewNop(), nil)
	activities.now = func() time.Time { return time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC) }
	svc := NewRecurrenceService(repo, activities, 0, validator.New(), zap.NewNop(), nil)

	day := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	request := func() CreateRecurringRequest {
		return CreateRecurringRequest{
			Activity: CreateActivityRequest{
				Date:         day,
				ActivityType: "ROUTE",
				Description:  "Morning pickup",
				Destination:  "Lincoln Elementary",
				DriverID:     5,
				VehicleID:    2,
				LeaveTime:    models.NewTimeOfDay(7, 0),
				EventTime:    models.NewTimeOfDay(7, 45),
				ReturnTime:   models.NewTimeOfDay(8, 30),
			},
			Rule: models.RecurrenceRule{
				Type:      models.RecurrenceDaily,
				Interval:  1,
				StartDate: day,
				EndDate:   day,
			},
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateRecurringActivities(context.Background(), request())
		}(i)
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&repo.overlapped), "conflict checks and inserts interleaved")

	// Exactly one request wins the booking; the other sees the conflict.
	var failures int
	for _, err := range errs {
		if err == nil {
			continue
		}
		failures++
		var appErr *appErrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
	assert.Equal(t, 1, failures)
	assert.Len(t, repo.activities, 1)
}

func seriesFixture() map[int64]models.Activity {
	day := func(offset int) time.Time {
		return time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}
	return map[int64]models.Activity{
		1: {ID: 1, Date: day(0), DriverID: 5, Destination: "Lincoln Elementary",
			LeaveTime: models.NewTimeOfDay(7, 0), ReturnTime: models.NewTimeOfDay(8, 30),
			Status: models.StatusScheduled},
		2: {ID: 2, Date: day(1), RecurringSeriesID: 1, DriverID: 5, Destination: "Lincoln Elementary",
			LeaveTime: models.NewTimeOfDay(7, 0), ReturnTime: models.NewTimeOfDay(8, 30),
			Status: models.StatusScheduled},
		3: {ID: 3, Date: day(2), RecurringSeriesID: 1, DriverID: 5, Destination: "Lincoln Elementary",
			LeaveTime: models.NewTimeOfDay(7, 0), ReturnTime: models.NewTimeOfDay(8, 30),
			Status: models.StatusScheduled},
	}
}

func TestGetRecurringSeriesFromMember(t *testing.T) {
	repo := &mockActivityRepo{activities: seriesFixture()}
	svc := newTestRecurrenceService(repo, &stubSeriesValidator{}, 0)

	// Any member resolves the whole series, root included.
	members, err := svc.GetRecurringSeries(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestUpdateRecurringSeriesThisAndFuture(t *testing.T) {
	repo := &mockActivityRepo{activities: seriesFixture()}
	repo.nextID = 3
	svc := newTestRecurrenceService(repo, &stubSeriesValidator{}, 0)

	updated, err := svc.UpdateRecurringSeries(context.Background(), 2, UpdateSeriesRequest{
		Scope: models.ScopeThisAndFuture,
		Activity: UpdateActivityRequest{
			Date:         time.Date(2030, 5, 7, 0, 0, 0, 0, time.UTC),
			ActivityType: "ROUTE",
			Description:  "Morning pickup",
			Destination:  "Roosevelt Middle",
			DriverID:     9,
			LeaveTime:    models.NewTimeOfDay(6, 30),
			EventTime:    models.NewTimeOfDay(7, 15),
			ReturnTime:   models.NewTimeOfDay(8, 0),
		},
	})
	require.NoError(t, err)
	assert.True(t, updated)

	// The member before the reference date is untouched.
	assert.Equal(t, "Lincoln Elementary", repo.activities[1].Destination)
	assert.Equal(t, int64(5), repo.activities[1].DriverID)

	// Members on and after the reference date take the new fields but keep
	// their own dates and times.
	for _, id := range []int64{2, 3} {
		member := repo.activities[id]
		assert.Equal(t, "Roosevelt Middle", member.Destination)
		assert.Equal(t, int64(9), member.DriverID)
		assert.Equal(t, models.NewTimeOfDay(7, 0), member.LeaveTime)
	}
	assert.Equal(t, time.Date(2030, 5, 8, 0, 0, 0, 0, time.UTC), repo.activities[3].Date)
}

func TestUpdateRecurringSeriesStatusThisAndFuture(t *testing.T) {
	repo := &mockActivityRepo{activities: seriesFixture()}
	repo.nextID = 3
	svc := newTestRecurrenceService(repo, &stubSeriesValidator{}, 0)

	cancelled := models.StatusCancelled
	updated, err := svc.UpdateRecurringSeries(context.Background(), 2, UpdateSeriesRequest{
		Scope: models.ScopeThisAndFuture,
		Activity: UpdateActivityRequest{
			Date:         time.Date(2030, 5, 7, 0, 0, 0, 0, time.UTC),
			ActivityType: "ROUTE",
			Description:  "Morning pickup",
			Destination:  "Lincoln Elementary",
			DriverID:     5,
			LeaveTime:    models.NewTimeOfDay(7, 0),
			EventTime:    models.NewTimeOfDay(7, 45),
			ReturnTime:   models.NewTimeOfDay(8, 30),
		},
		Status: &cancelled,
	})
	require.NoError(t, err)
	assert.True(t, updated)

	// The status change follows the scope: past members keep theirs.
	assert.Equal(t, models.StatusScheduled, repo.activities[1].Status)
	assert.Equal(t, models.StatusCancelled, repo.activities[2].Status)
	assert.Equal(t, models.StatusCancelled, repo.activities[3].Status)
}

func TestUpdateRecurringSeriesRejectsUnknownStatus(t *testing.T) {
	repo := &mockActivityRepo{activities: seriesFixture()}
	svc := newTestRecurrenceService(repo, &stubSeriesValidator{}, 0)

	bogus := models.ActivityStatus("MISPLACED")
	_, err := svc.UpdateRecurringSeries(context.Background(), 2, UpdateSeriesRequest{
		Scope:  models.ScopeThisOnly,
		Status: &bogus,
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, models.StatusScheduled, repo.activities[2].Status)
}

func TestUpdateRecurringSeriesThisOnly(t *testing.T) {
	repo := &mockActivityRepo{activities: seriesFixture()}
	repo.nextID = 3
	svc := newTestRecurrenceService(repo, &stubSeriesValidator{}, 0)

	updated, err := svc.UpdateRecurringSeries(context.Background(), 2, UpdateSeriesRequest{
		Scope: models.ScopeThisOnly,
		Activity: UpdateActivityRequest{
			Date:         time.Date(2030, 5, 9, 0, 0, 0, 0, time.UTC),
			ActivityType: "ROUTE",
			Description:  "Morning pickup",
			Destination:  "Roosevelt Middle",
			DriverID:     5,
			LeaveTime:    models.NewTimeOfDay(6, 30),
			EventTime:    models.NewTimeOfDay(7, 15),
			ReturnTime:   models.NewTimeOfDay(8, 0),
		},
	})
	require.NoError(t, err)
	assert.True(t, updated)

	assert.Equal(t, time.Date(2030, 5, 9, 0, 0, 0, 0, time.UTC), repo.activities[2].Date)
	assert.Equal(t, models.NewTimeOfDay(6, 30), repo.activities[2].LeaveTime)
	assert.Equal(t, "Lincoln Elementary", repo.activities[3].Destination)
}

func TestUpdateRecurringSeriesNotFound(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 0)

	updated, err := svc.UpdateRecurringSeries(context.Background(), 42, UpdateSeriesRequest{
		Scope: models.ScopeThisOnly,
	})
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestDeleteRecurringSeriesThisOnly(t *testing.T) {
	repo := &mockActivityRepo{activities: seriesFixture()}
	svc := newTestRecurrenceService(repo, &stubSeriesValidator{}, 0)

	deleted, err := svc.DeleteRecurringSeries(context.Background(), 2, models.ScopeThisOnly)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []int64{2}, repo.deleted)
	assert.Len(t, repo.activities, 2)
}

func TestDeleteRecurringSeriesThisAndFuture(t *testing.T) {
	repo := &mockActivityRepo{activities: seriesFixture()}
	svc := newTestRecurrenceService(repo, &stubSeriesValidator{}, 0)

	deleted, err := svc.DeleteRecurringSeries(context.Background(), 2, models.ScopeThisAndFuture)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.ElementsMatch(t, []int64{2, 3}, repo.deleted)
	assert.Contains(t, repo.activities, int64(1))
}

func TestDeleteRecurringSeriesNotFound(t *testing.T) {
	svc := newTestRecurrenceService(&mockActivityRepo{}, &stubSeriesValidator{}, 0)

	deleted, err := svc.DeleteRecurringSeries(context.Background(), 42, models.ScopeThisOnly)
	require.NoError(t, err)
	assert.False(t, deleted)
}
