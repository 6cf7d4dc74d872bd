package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/districtops/transport-api/internal/models"
	appErrors "github.com/districtops/transport-api/pkg/errors"
)

type mockActivityRepo struct {
	activities map[int64]models.Activity
	nextID     int64
	created    []models.Activity
	updated    []models.Activity
	deleted    []int64
	bulk       []models.Activity
	listErr    error
	byDateErr  error
	completed  int64
}

func (m *mockActivityRepo) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var list []models.Activity
	for _, a := range m.activities {
		list = append(list, a)
	}
	return list, len(list), nil
}

func (m *mockActivityRepo) ListByDate(ctx context.Context, date time.Time) ([]models.Activity, error) {
	if m.byDateErr != nil {
		return nil, m.byDateErr
	}
	var list []models.Activity
	for _, a := range m.activities {
		if models.SameDate(a.Date, date) {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *mockActivityRepo) FindByID(ctx context.Context, id int64) (*models.Activity, error) {
	if a, ok := m.activities[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockActivityRepo) FindSeries(ctx context.Context, seriesID int64) ([]models.Activity, error) {
	var list []models.Activity
	for _, a := range m.activities {
		if a.RecurringSeriesID == seriesID || a.ID == seriesID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *mockActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	if m.activities == nil {
		m.activities = make(map[int64]models.Activity)
	}
	m.nextID++
	activity.ID = m.nextID
	m.activities[activity.ID] = *activity
	m.created = append(m.created, *activity)
	return nil
}

func (m *mockActivityRepo) BulkCreate(ctx context.Context, activities []models.Activity) error {
	if m.activities == nil {
		m.activities = make(map[int64]models.Activity)
	}
	for i := range activities {
		m.nextID++
		activities[i].ID = m.nextID
		m.activities[activities[i].ID] = activities[i]
	}
	m.bulk = append(m.bulk, activities...)
	return nil
}

func (m *mockActivityRepo) Update(ctx context.Context, activity *models.Activity) error {
	if _, ok := m.activities[activity.ID]; !ok {
		return sql.ErrNoRows
	}
	m.activities[activity.ID] = *activity
	m.updated = append(m.updated, *activity)
	return nil
}

func (m *mockActivityRepo) Delete(ctx context.Context, id int64) error {
	delete(m.activities, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockActivityRepo) DeleteMany(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		delete(m.activities, id)
		m.deleted = append(m.deleted, id)
	}
	return nil
}

func (m *mockActivityRepo) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	return m.completed, nil
}

type mockDriverReader struct {
	drivers map[int64]models.Driver
	err     error
}

func (m *mockDriverReader) FindByID(ctx context.Context, id int64) (*models.Driver, error) {
	if m.err != nil {
		return nil, m.err
	}
	if d, ok := m.drivers[id]; ok {
		return &d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDriverReader) ListActive(ctx context.Context) ([]models.Driver, error) {
	if m.err != nil {
		return nil, m.err
	}
	var list []models.Driver
	for _, d := range m.drivers {
		if d.Status == models.ResourceActive {
			list = append(list, d)
		}
	}
	return list, nil
}

type mockVehicleReader struct {
	vehicles map[int64]models.Vehicle
	err      error
}

func (m *mockVehicleReader) FindByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vehicles[id]; ok {
		return &v, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockVehicleReader) ListActive(ctx context.Context) ([]models.Vehicle, error) {
	if m.err != nil {
		return nil, m.err
	}
	var list []models.Vehicle
	for _, v := range m.vehicles {
		if v.Status == models.ResourceActive {
			list = append(list, v)
		}
	}
	return list, nil
}

func activeDriver(id int64) models.Driver {
	return models.Driver{ID: id, FullName: "Driver", Status: models.ResourceActive}
}

func activeVehicle(id int64) models.Vehicle {
	return models.Vehicle{ID: id, Number: "BUS-1", Status: models.ResourceActive}
}

func testDate() time.Time {
	return time.Date(2030, 5, 14, 0, 0, 0, 0, time.UTC)
}

func newTestActivityService(repo *mockActivityRepo, drivers *mockDriverReader, vehicles *mockVehicleReader) *ActivityService {
	svc := NewActivityService(repo, drivers, vehicles, validator.New(), zap.NewNop(), nil)
	svc.now = func() time.Time { return time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestDetectConflictsDriverOverlap(t *testing.T) {
	repo := &mockActivityRepo{activities: map[int64]models.Activity{
		1: {ID: 1, Date: testDate(), DriverID: 5, VehicleID: 2,
			LeaveTime: models.NewTimeOfDay(8, 0), ReturnTime: models.NewTimeOfDay(12, 0),
			Status: models.StatusScheduled},
	}}
	svc := newTestActivityService(repo, &mockDriverReader{}, &mockVehicleReader{})

	candidate := &models.Activity{Date: testDate(), DriverID: 5, VehicleID: 3,
		LeaveTime: models.NewTimeOfDay(10, 0), ReturnTime: models.NewTimeOfDay(14, 0)}

	conflicts, err := svc.DetectConflicts(context.Background(), candidate, 0)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, int64(1), conflicts[0].ID)
}

func TestDetectConflictsVehicleAxis(t *testing.T) {
	repo := &mockActivityRepo{activities: map[int64]models.Activity{
		1: {ID: 1, Date: testDate(), DriverID: 5, VehicleID: 2,
			LeaveTime: models.NewTimeOfDay(8, 0), ReturnTime: models.NewTimeOfDay(12, 0),
			Status: models.StatusScheduled},
	}}
	svc := newTestActivityService(repo, &mockDriverReader{}, &mockVehicleReader{})

	// Different driver, same vehicle.
	candidate := &models.Activity{Date: testDate(), DriverID: 9, VehicleID: 2,
		LeaveTime: models.NewTimeOfDay(11, 0), ReturnTime: models.NewTimeOfDay(13, 0)}

	conflicts, err := svc.DetectConflicts(context.Background(), candidate, 0)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
}

func TestDetectConflictsTouchingWindowsDoNotConflict(t *testing.T) {
	repo := &mockActivityRepo{activities: map[int64]models.Activity{
		1: {ID: 1, Date: testDate(), DriverID: 5,
			LeaveTime: models.NewTimeOfDay(8, 0), ReturnTime: models.NewTimeOfDay(12, 0),
			Status: models.StatusScheduled},
	}}
	svc := newTestActivityService(repo, &mockDriverReader{}, &mockVehicleReader{})

	candidate := &models.Activity{Date: testDate(), DriverID: 5,
		LeaveTime: models.NewTimeOfDay(12, 0), ReturnTime: models.NewTimeOfDay(15, 0)}

	conflicts, err := svc.DetectConflicts(context.Background(), candidate, 0)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestDetectConflictsIgnoresCancelled(t *testing.T) {
	repo := &mockActivityRepo{activities: map[int64]models.Activity{
		1: {ID: 1, Date: testDate(), DriverID: 5,
			LeaveTime: models.NewTimeOfDay(8, 0), ReturnTime: models.NewTimeOfDay(12, 0),
			Status: models.StatusCancelled},
	}}
	svc := newTestActivityService(repo, &mockDriverReader{}, &mockVehicleReader{})

	candidate := &models.Activity{Date: testDate(), DriverID: 5,
		LeaveTime: models.NewTimeOfDay(9, 0), ReturnTime: models.NewTimeOfDay(11, 0)}

	conflicts, err := svc.DetectConflicts(context.Background(), candidate, 0)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestDetectConflictsExcludesSelf(t *testing.T) {
	repo := &mockActivityRepo{activities: map[int64]models.Activity{
		1: {ID: 1, Date: testDate(), DriverID: 5,
			LeaveTime: models.NewTimeOfDay(8, 0), ReturnTime: models.NewTimeOfDay(12, 0),
			Status: models.StatusScheduled},
	}}
	svc := newTestActivityService(repo, &mockDriverReader{}, &mockVehicleReader{})

	// An edit of activity 1 must not collide with its own stored row.
	candidate := &models.Activity{ID: 1, Date: testDate(), DriverID: 5,
		LeaveTime: models.NewTimeOfDay(9, 0), ReturnTime: models.NewTimeOfDay(13, 0)}

	conflicts, err := svc.DetectConflicts(context.Background(), candidate, 1)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestDetectConflictsUnsharedResources(t *testing.T) {
	repo := &mockActivityRepo{activities: map[int64]models.Activity{
		1: {ID: 1, Date: testDate(), DriverID: 5, VehicleID: 2,
			LeaveTime: models.NewTimeOfDay(8, 0), ReturnTime: models.NewTimeOfDay(12, 0),
			Status: models.StatusScheduled},
	}}
	svc := newTestActivityService(repo, &mockDriverReader{}, &mockVehicleReader{})

	candidate := &models.Activity{Date: testDate(), DriverID: 9, VehicleID: 4,
		LeaveTime: models.NewTimeOfDay(9, 0), ReturnTime: models.NewTimeOfDay(11, 0)}

	conflicts, err := svc.DetectConflicts(context.Background(), candidate, 0)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestStoreQueriesRecordTimings(t *testing.T) {
	repo := &mockActivityRepo{activities: map[int64]models.Activity{
		1: {ID: 1, Date: testDate(), DriverID: 5, VehicleID: 2,
			LeaveTime: models.NewTimeOfDay(8, 0), ReturnTime: models.NewTimeOfDay(12, 0),
			Status: models.StatusScheduled},
	}}
	metrics := NewMetricsService()
	svc := NewActivityService(repo, &mockDriverReader{}, &mockVehicleReader{}, validator.New(), zap.NewNop(), metrics)
	svc.now = func() time.Time { return time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC) }

	_, _, err := svc.List(context.Background(), models.ActivityFilter{})
	require.NoError(t, err)

	candidate := &models.Activity{Date: testDate(), DriverID: 5,
		LeaveTime: models.NewTimeOfDay(9, 0), ReturnTime: models.NewTimeOfDay(11, 0)}
	_, err = svc.DetectConflicts(context.Background(), candidate, 0)
	require.NoError(t, err)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(2), snap.DBQueryCount)
	assert.Equal(t, uint64(1), snap.ConflictChecksTotal)
}

func TestValidateAccumulatesProblems(t *testing.T) {
	svc := newTestActivityService(&mockActivityRepo{}, &mockDriverReader{}, &mockVehicleReader{})

	activity := &models.Activity{
		Date:       time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		LeaveTime:  models.NewTimeOfDay(14, 0),
		ReturnTime: models.NewTimeOfDay(8, 0),
	}

	problems := svc.Validate(context.Background(), activity)
	assert.Contains(t, problems, "activity type is required")
	assert.Contains(t, problems, "description is required")
	assert.Contains(t, problems, "destination is required")
	assert.Contains(t, problems, "leave time must be before return time")
	assert.Contains(t, problems, "activity date cannot be in the past")
	assert.GreaterOrEqual(t, len(problems), 5)
}

func TestValidateEventTimeOutsideWindow(t *testing.T) {
	svc := newTestActivityService(&mockActivityRepo{}, &mockDriverReader{}, &mockVehicleReader{})

	activity := &models.Activity{
		Date:         testDate(),
		ActivityType: "FIELD_TRIP",
		Description:  "Museum visit",
		Destination:  "City Museum",
		LeaveTime:    models.NewTimeOfDay(8, 0),
		EventTime:    models.NewTimeOfDay(15, 0),
		ReturnTime:   models.NewTimeOfDay(14, 0),
	}

	problems := svc.Validate(context.Background(), activity)
	assert.Contains(t, problems, "event time must fall between leave and return times")
}

func TestValidateReportsBusyResources(t *testing.T) {
	repo := &mockActivityRepo{activities: map[int64]models.Activity{
		1: {ID: 1, Date: testDate(), DriverID: 5, VehicleID: 2,
			LeaveTime: models.NewTimeOfDay(8, 0), ReturnTime: models.NewTimeOfDay(12, 0),
			Status: models.StatusScheduled},
	}}
	drivers := &mockDriverReader{drivers: map[int64]models.Driver{5: activeDriver(5)}}
	vehicles := &mockVehicleReader{vehicles: map[int64]models.Vehicle{2: activeVehicle(2)}}
	svc := newTestActivityService(repo, drivers, vehicles)

	activity := &models.Activity{
		Date:         testDate(),
		ActivityType: "FIELD_TRIP",
		Description:  "Museum visit",
		Destination:  "City Museum",
		DriverID:     5,
		VehicleID:    2,
		LeaveTime:    models.NewTimeOfDay(10, 0),
		EventTime:    models.NewTimeOfDay(11, 0),
		ReturnTime:   models.NewTimeOfDay(14, 0),
	}

	problems := svc.Validate(context.Background(), activity)
	assert.Contains(t, problems, "driver is already scheduled for an overlapping activity")
	assert.Contains(t, problems, "vehicle is already scheduled for an overlapping activity")
}

func TestValidateStoreFailuresDegradeToProblems(t *testing.T) {
	repo := &mockActivityRepo{byDateErr: errors.New("connection refused")}
	drivers := &mockDriverReader{err: errors.New("connection refused")}
	vehicles := &mockVehicleReader{err: errors.New("connection refused")}
	svc := newTestActivityService(repo, drivers, vehicles)

	activity := &models.Activity{
		Date:         testDate(),
		ActivityType: "FIELD_TRIP",
		Description:  "Museum visit",
		Destination:  "City Museum",
		DriverID:     5,
		VehicleID:    2,
		LeaveTime:    models.NewTimeOfDay(10, 0),
		EventTime:    models.NewTimeOfDay(11, 0),
		ReturnTime:   models.NewTimeOfDay(14, 0),
	}

	problems := svc.Validate(context.Background(), activity)
	assert.Contains(t, problems, "unable to verify schedule conflicts, please retry")
	assert.Contains(t, problems, "unable to verify assigned driver, please retry")
	assert.Contains(t, problems, "unable to verify assigned vehicle, please retry")
}

func TestValidateUnknownAndInactiveResources(t *testing.T) {
	repo := &mockActivityRepo{}
	drivers := &mockDriverReader{drivers: map[int64]models.Driver{}}
	inactive := activeVehicle(2)
	inactive.Status = models.ResourceInactive
	vehicles := &mockVehicleReader{vehicles: map[int64]models.Vehicle{2: inactive}}
	svc := newTestActivityService(repo, drivers, vehicles)

	activity := &models.Activity{
		Date:         testDate(),
		ActivityType: "FIELD_TRIP",
		Description:  "Museum visit",
		Destination:  "City Museum",
		DriverID:     99,
		VehicleID:    2,
		LeaveTime:    models.NewTimeOfDay(10, 0),
		EventTime:    models.NewTimeOfDay(11, 0),
		ReturnTime:   models.NewTimeOfDay(14, 0),
	}

	problems := svc.Validate(context.Background(), activity)
	assert.Contains(t, problems, "assigned driver does not exist")
	assert.Contains(t, problems, "assigned vehicle is not active")
}

func TestCreateActivity(t *testing.T) {
	repo := &mockActivityRepo{}
	drivers := &mockDriverReader{drivers: map[int64]models.Driver{5: activeDriver(5)}}
	vehicles := &mockVehicleReader{vehicles: map[int64]models.Vehicle{2: activeVehicle(2)}}
	svc := newTestActivityService(repo, drivers, vehicles)

	created, err := svc.Create(context.Background(), CreateActivityRequest{
		Date:         testDate(),
		ActivityType: "FIELD_TRIP",
		Description:  "Museum visit",
		Destination:  "City Museum",
		DriverID:     5,
		VehicleID:    2,
		LeaveTime:    models.NewTimeOfDay(8, 0),
		EventTime:    models.NewTimeOfDay(9, 0),
		ReturnTime:   models.NewTimeOfDay(14, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, created.Status)
	assert.NotZero(t, created.ID)
	require.Len(t, repo.created, 1)
}

func TestCreateActivityRejectsConflict(t *testing.T) {
	repo := &mockActivityRepo{activities: map[int64]models.Activity{
		1: {ID: 1, Date: testDate(), DriverID: 5,
			LeaveTime: models.NewTimeOfDay(8, 0), ReturnTime: models.NewTimeOfDay(12, 0),
			Status: models.StatusScheduled},
	}}
	repo.nextID = 1
	drivers := &mockDriverReader{drivers: map[int64]models.Driver{5: activeDriver(5)}}
	svc := newTestActivityService(repo, drivers, &mockVehicleReader{})

	_, err := svc.Create(context.Background(), CreateActivityRequest{
		Date:         testDate(),
		ActivityType: "FIELD_TRIP",
		Description:  "Museum visit",
		Destination:  "City Museum",
		DriverID:     5,
		LeaveTime:    models.NewTimeOfDay(10, 0),
		EventTime:    models.NewTimeOfDay(11, 0),
		ReturnTime:   models.NewTimeOfDay(14, 0),
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestUpdateActivityExcludesItself(t *testing.T) {
	repo := &mockActivityRepo{activities: map[int64]models.Activity{
		1: {ID: 1, Date: testDate(), DriverID: 5, Status: models.StatusScheduled,
			ActivityType: "FIELD_TRIP", Description: "Museum visit", Destination: "City Museum",
			LeaveTime: models.NewTimeOfDay(8, 0), ReturnTime: models.NewTimeOfDay(12, 0)},
	}}
	repo.nextID = 1
	drivers := &mockDriverReader{drivers: map[int64]models.Driver{5: activeDriver(5)}}
	svc := newTestActivityService(repo, drivers, &mockVehicleReader{})

	// Shifting the window within the activity's own slot must succeed.
	updated, err := svc.Update(context.Background(), 1, UpdateActivityRequest{
		Date:         testDate(),
		ActivityType: "FIELD_TRIP",
		Description:  "Museum visit",
		Destination:  "City Museum",
		DriverID:     5,
		LeaveTime:    models.NewTimeOfDay(9, 0),
		EventTime:    models.NewTimeOfDay(10, 0),
		ReturnTime:   models.NewTimeOfDay(13, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, models.NewTimeOfDay(9, 0), updated.LeaveTime)
	require.Len(t, repo.updated, 1)
}

func TestDeleteActivityNotFound(t *testing.T) {
	svc := newTestActivityService(&mockActivityRepo{}, &mockDriverReader{}, &mockVehicleReader{})

	err := svc.Delete(context.Background(), 42)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
