package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/districtops/transport-api/internal/models"
	appErrors "github.com/districtops/transport-api/pkg/errors"
)

type activityRepository interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Activity, error)
	FindByID(ctx context.Context, id int64) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id int64) error
}

type driverReader interface {
	FindByID(ctx context.Context, id int64) (*models.Driver, error)
}

type vehicleReader interface {
	FindByID(ctx context.Context, id int64) (*models.Vehicle, error)
}

// ValidationError carries the accumulated problems of an invalid activity.
type ValidationError struct {
	Problems []string `json:"problems"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return strings.Join(e.Problems, "; ")
}

// CreateActivityRequest describes payload for scheduling an activity.
type CreateActivityRequest struct {
	Date               time.Time        `json:"date" validate:"required"`
	LeaveTime          models.TimeOfDay `json:"leave_time"`
	EventTime          models.TimeOfDay `json:"event_time"`
	ReturnTime         models.TimeOfDay `json:"return_time"`
	DriverID           int64            `json:"driver_id"`
	VehicleID          int64            `json:"vehicle_id"`
	RouteID            int64            `json:"route_id"`
	ActivityType       string           `json:"activity_type" validate:"required"`
	Destination        string           `json:"destination" validate:"required"`
	RequestedBy        string           `json:"requested_by"`
	Description        string           `json:"description" validate:"required"`
	Notes              string           `json:"notes"`
	ExpectedPassengers int              `json:"expected_passengers" validate:"gte=0"`
}

// UpdateActivityRequest updates an existing activity.
type UpdateActivityRequest struct {
	Date               time.Time        `json:"date" validate:"required"`
	LeaveTime          models.TimeOfDay `json:"leave_time"`
	EventTime          models.TimeOfDay `json:"event_time"`
	ReturnTime         models.TimeOfDay `json:"return_time"`
	DriverID           int64            `json:"driver_id"`
	VehicleID          int64            `json:"vehicle_id"`
	RouteID            int64            `json:"route_id"`
	ActivityType       string           `json:"activity_type" validate:"required"`
	Destination        string           `json:"destination" validate:"required"`
	RequestedBy        string           `json:"requested_by"`
	Description        string           `json:"description" validate:"required"`
	Notes              string           `json:"notes"`
	ExpectedPassengers int              `json:"expected_passengers" validate:"gte=0"`
}

// ActivityService coordinates activity scheduling, validation and conflict
// detection.
type ActivityService struct {
	repo      activityRepository
	drivers   driverReader
	vehicles  vehicleReader
	locks     *resourceLocks
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService

	// now is swappable for tests of the non-past-date rule.
	now func() time.Time
}

// NewActivityService instantiates ActivityService.
func NewActivityService(repo activityRepository, drivers driverReader, vehicles vehicleReader, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		repo:      repo,
		drivers:   drivers,
		vehicles:  vehicles,
		locks:     newResourceLocks(),
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// lockResources serialises a validate-then-persist sequence for the given
// assignment. Every code path that persists a driver or vehicle booking must
// hold this lock while it checks for conflicts, or two concurrent requests
// can both read a clean snapshot and double-book the resource.
func (s *ActivityService) lockResources(driverID, vehicleID int64) func() {
	return s.locks.acquire(driverID, vehicleID)
}

// List returns activities with pagination metadata.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, *models.Pagination, error) {
	started := time.Now()
	activities, total, err := s.repo.List(ctx, filter)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("activity_list", time.Since(started))
	}
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return activities, pagination, nil
}

// Get loads a single activity.
func (s *ActivityService) Get(ctx context.Context, id int64) (*models.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	return activity, nil
}

// Create validates and persists a new activity. The driver and vehicle keys
// stay locked across the check-then-write sequence so concurrent requests
// cannot double-book a resource.
func (s *ActivityService) Create(ctx context.Context, req CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	activity := s.fromCreateRequest(req)

	release := s.locks.acquire(activity.DriverID, activity.VehicleID)
	defer release()

	if problems := s.Validate(ctx, activity); len(problems) > 0 {
		return nil, appErrors.Wrap(&ValidationError{Problems: problems}, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "activity failed validation")
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	if s.metrics != nil {
		s.metrics.RecordActivityCreated()
	}
	return activity, nil
}

// Update modifies an existing activity, excluding it from its own conflict
// comparison.
func (s *ActivityService) Update(ctx context.Context, id int64, req UpdateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	updated := *existing
	updated.Date = models.DateOnly(req.Date)
	updated.LeaveTime = req.LeaveTime
	updated.EventTime = req.EventTime
	updated.ReturnTime = req.ReturnTime
	updated.DriverID = req.DriverID
	updated.VehicleID = req.VehicleID
	updated.RouteID = req.RouteID
	updated.ActivityType = req.ActivityType
	updated.Destination = req.Destination
	updated.RequestedBy = req.RequestedBy
	updated.Description = req.Description
	updated.Notes = req.Notes
	updated.ExpectedPassengers = req.ExpectedPassengers

	release := s.locks.acquire(updated.DriverID, updated.VehicleID)
	defer release()

	if problems := s.Validate(ctx, &updated); len(problems) > 0 {
		return nil, appErrors.Wrap(&ValidationError{Problems: problems}, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "activity failed validation")
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}
	return &updated, nil
}

// Delete removes a single activity.
func (s *ActivityService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}
	return nil
}

// DetectConflicts returns existing non-cancelled activities on the candidate's
// date that share its driver or vehicle with an overlapping booking window.
// When excludeID is non-zero that activity is skipped, so edits do not
// conflict with themselves. Windows are half-open: touching bookings do not
// conflict.
func (s *ActivityService) DetectConflicts(ctx context.Context, candidate *models.Activity, excludeID int64) ([]models.Activity, error) {
	if candidate.DriverID <= 0 && candidate.VehicleID <= 0 {
		return nil, nil
	}

	started := time.Now()
	sameDay, err := s.repo.ListByDate(ctx, candidate.Date)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("activity_list_by_date", time.Since(started))
	}
	if err != nil {
		return nil, fmt.Errorf("load activities for conflict check: %w", err)
	}

	window := candidate.Window()
	var conflicts []models.Activity
	for _, existing := range sameDay {
		if existing.ID == excludeID {
			continue
		}
		if existing.IsCancelled() {
			continue
		}
		sharesDriver := candidate.DriverID > 0 && existing.DriverID == candidate.DriverID
		sharesVehicle := candidate.VehicleID > 0 && existing.VehicleID == candidate.VehicleID
		if !sharesDriver && !sharesVehicle {
			continue
		}
		if window.Overlaps(existing.Window()) {
			conflicts = append(conflicts, existing)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordConflictCheck(len(conflicts))
	}
	return conflicts, nil
}

// Validate checks an activity and returns every violation found. It never
// returns an error: store failures degrade to a generic problem string so
// callers always receive a plain list.
func (s *ActivityService) Validate(ctx context.Context, activity *models.Activity) []string {
	var problems []string

	if strings.TrimSpace(activity.ActivityType) == "" {
		problems = append(problems, "activity type is required")
	}
	if strings.TrimSpace(activity.Description) == "" {
		problems = append(problems, "description is required")
	}
	if strings.TrimSpace(activity.Destination) == "" {
		problems = append(problems, "destination is required")
	}

	if activity.LeaveTime >= activity.ReturnTime {
		problems = append(problems, "leave time must be before return time")
	}
	if activity.EventTime < activity.LeaveTime || activity.EventTime > activity.ReturnTime {
		problems = append(problems, "event time must fall between leave and return times")
	}

	today := models.DateOnly(s.now())
	if models.DateOnly(activity.Date).Before(today) {
		problems = append(problems, "activity date cannot be in the past")
	}

	if activity.DriverID > 0 || activity.VehicleID > 0 {
		conflicts, err := s.DetectConflicts(ctx, activity, activity.ID)
		if err != nil {
			s.logger.Warn("conflict check failed during validation", zap.Error(err))
			problems = append(problems, "unable to verify schedule conflicts, please retry")
		} else {
			driverBusy := false
			vehicleBusy := false
			for _, c := range conflicts {
				if activity.DriverID > 0 && c.DriverID == activity.DriverID {
					driverBusy = true
				}
				if activity.VehicleID > 0 && c.VehicleID == activity.VehicleID {
					vehicleBusy = true
				}
			}
			if driverBusy {
				problems = append(problems, "driver is already scheduled for an overlapping activity")
			}
			if vehicleBusy {
				problems = append(problems, "vehicle is already scheduled for an overlapping activity")
			}
		}
	}

	if activity.DriverID > 0 {
		driver, err := s.drivers.FindByID(ctx, activity.DriverID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			problems = append(problems, "assigned driver does not exist")
		case err != nil:
			s.logger.Warn("driver lookup failed during validation", zap.Int64("driver_id", activity.DriverID), zap.Error(err))
			problems = append(problems, "unable to verify assigned driver, please retry")
		case driver.Status != models.ResourceActive:
			problems = append(problems, "assigned driver is not active")
		}
	}

	if activity.VehicleID > 0 {
		vehicle, err := s.vehicles.FindByID(ctx, activity.VehicleID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			problems = append(problems, "assigned vehicle does not exist")
		case err != nil:
			s.logger.Warn("vehicle lookup failed during validation", zap.Int64("vehicle_id", activity.VehicleID), zap.Error(err))
			problems = append(problems, "unable to verify assigned vehicle, please retry")
		case vehicle.Status != models.ResourceActive:
			problems = append(problems, "assigned vehicle is not active")
		}
	}

	return problems
}

func (s *ActivityService) fromCreateRequest(req CreateActivityRequest) *models.Activity {
	return &models.Activity{
		Date:               models.DateOnly(req.Date),
		LeaveTime:          req.LeaveTime,
		EventTime:          req.EventTime,
		ReturnTime:         req.ReturnTime,
		DriverID:           req.DriverID,
		VehicleID:          req.VehicleID,
		RouteID:            req.RouteID,
		ActivityType:       req.ActivityType,
		Destination:        req.Destination,
		RequestedBy:        req.RequestedBy,
		Description:        req.Description,
		Notes:              req.Notes,
		ExpectedPassengers: req.ExpectedPassengers,
		Status:             models.StatusScheduled,
	}
}
