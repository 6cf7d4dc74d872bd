package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/districtops/transport-api/internal/models"
	appErrors "github.com/districtops/transport-api/pkg/errors"
)

type seriesRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Activity, error)
	FindSeries(ctx context.Context, seriesID int64) ([]models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	BulkCreate(ctx context.Context, activities []models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) error
}

type seriesValidator interface {
	Validate(ctx context.Context, activity *models.Activity) []string
	lockResources(driverID, vehicleID int64) func()
}

// CreateRecurringRequest expands a base activity into a recurring series.
type CreateRecurringRequest struct {
	Activity CreateActivityRequest `json:"activity" validate:"required"`
	Rule     models.RecurrenceRule `json:"rule" validate:"required"`
}

// SkippedInstance reports a generated date that failed validation and was not
// persisted.
type SkippedInstance struct {
	Date     time.Time `json:"date"`
	Problems []string  `json:"problems"`
}

// CreateRecurringResult summarises a recurring creation.
type CreateRecurringResult struct {
	SeriesID int64             `json:"series_id"`
	Created  []models.Activity `json:"created"`
	Skipped  []SkippedInstance `json:"skipped,omitempty"`
}

// UpdateSeriesRequest applies edits to one activity or its future series.
// Status is optional; when set it is copied onto every edited member.
type UpdateSeriesRequest struct {
	Scope    models.EditScope       `json:"scope" validate:"required"`
	Activity UpdateActivityRequest  `json:"activity" validate:"required"`
	Status   *models.ActivityStatus `json:"status,omitempty"`
}

// RecurrenceService expands recurrence rules and applies series-scoped
// mutations.
type RecurrenceService struct {
	repo         seriesRepository
	activities   seriesValidator
	maxInstances int
	validator    *validator.Validate
	logger       *zap.Logger
	metrics      *MetricsService
}

// NewRecurrenceService instantiates RecurrenceService.
func NewRecurrenceService(repo seriesRepository, activities seriesValidator, maxInstances int, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *RecurrenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxInstances <= 0 {
		maxInstances = 366
	}
	return &RecurrenceService{
		repo:         repo,
		activities:   activities,
		maxInstances: maxInstances,
		validator:    validate,
		logger:       logger,
		metrics:      metrics,
	}
}

// GenerateSeries expands a base activity into instances per the rule. The
// expansion is pure: no instance is conflict-checked or persisted here.
// Instances copy the base's descriptive and resource fields, take the
// iterated date, and carry seriesID when it is non-zero.
func (s *RecurrenceService) GenerateSeries(base *models.Activity, rule models.RecurrenceRule, seriesID int64) ([]models.Activity, error) {
	if !rule.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown recurrence type")
	}
	if rule.Interval <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recurrence interval must be positive")
	}

	start := models.DateOnly(rule.StartDate)
	end := models.DateOnly(rule.EndDate)
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recurrence end date precedes start date")
	}

	var instances []models.Activity
	appendInstance := func(date time.Time) error {
		if len(instances) >= s.maxInstances {
			return appErrors.Clone(appErrors.ErrSeriesTooLarge,
				fmt.Sprintf("recurrence series exceeds %d instances", s.maxInstances))
		}
		instance := *base
		instance.ID = 0
		instance.Date = date
		instance.RecurringSeriesID = seriesID
		instance.ApprovedBy = ""
		instance.ApprovalDate = nil
		instances = append(instances, instance)
		return nil
	}

	switch rule.Type {
	case models.RecurrenceDaily:
		for current := start; !current.After(end); current = current.AddDate(0, 0, rule.Interval) {
			if err := appendInstance(current); err != nil {
				return nil, err
			}
		}
	case models.RecurrenceWeekly:
		weekdaySet := make(map[time.Weekday]struct{}, len(rule.DaysOfWeek))
		for _, d := range rule.DaysOfWeek {
			weekdaySet[d] = struct{}{}
		}
		for current := start; !current.After(end); current = current.AddDate(0, 0, 7) {
			if len(weekdaySet) > 0 {
				if _, ok := weekdaySet[current.Weekday()]; !ok {
					continue
				}
			}
			if err := appendInstance(current); err != nil {
				return nil, err
			}
		}
	case models.RecurrenceMonthly:
		// The cursor walks month indexes from the anchor rather than adding
		// months to the previous date: AddDate normalises Jan 31 + 1 month to
		// Mar 3, which would silently drift the series off its anchored day.
		// Months without the anchored day (Feb for day 29-31) are skipped.
		for step := 0; ; step++ {
			month := time.Date(start.Year(), start.Month()+time.Month(step), 1, 0, 0, 0, 0, time.UTC)
			if month.After(end) {
				break
			}
			current := time.Date(month.Year(), month.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
			if current.Month() != month.Month() || current.Before(start) || current.After(end) {
				continue
			}
			if err := appendInstance(current); err != nil {
				return nil, err
			}
		}
	case models.RecurrenceYearly:
		for current := start; !current.After(end); current = current.AddDate(1, 0, 0) {
			if current.YearDay() != start.YearDay() {
				continue
			}
			if err := appendInstance(current); err != nil {
				return nil, err
			}
		}
	}
	return instances, nil
}

// CreateRecurringActivities generates a series and persists every instance
// that passes validation. The first instance becomes the series root: its id
// keys the series. Conflicting or invalid instances are skipped and reported,
// matching how a dispatcher fills a term calendar around existing bookings.
func (s *RecurrenceService) CreateRecurringActivities(ctx context.Context, req CreateRecurringRequest) (*CreateRecurringResult, error) {
	if err := s.validator.Struct(req.Activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	base := &models.Activity{
		LeaveTime:          req.Activity.LeaveTime,
		EventTime:          req.Activity.EventTime,
		ReturnTime:         req.Activity.ReturnTime,
		DriverID:           req.Activity.DriverID,
		VehicleID:          req.Activity.VehicleID,
		RouteID:            req.Activity.RouteID,
		ActivityType:       req.Activity.ActivityType,
		Destination:        req.Activity.Destination,
		RequestedBy:        req.Activity.RequestedBy,
		Description:        req.Activity.Description,
		Notes:              req.Activity.Notes,
		ExpectedPassengers: req.Activity.ExpectedPassengers,
		Status:             models.StatusScheduled,
	}

	instances, err := s.GenerateSeries(base, req.Rule, 0)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recurrence rule produces no instances")
	}

	// Every instance books the same driver and vehicle, so one lock covers
	// the whole validate-then-persist sweep. Without it two concurrent series
	// requests can both see a clean calendar and double-book a resource.
	release := s.activities.lockResources(base.DriverID, base.VehicleID)
	defer release()

	result := &CreateRecurringResult{}

	// Persist the series root first so its id can key the rest.
	var root *models.Activity
	rest := instances
	for len(rest) > 0 {
		candidate := rest[0]
		rest = rest[1:]
		if problems := s.activities.Validate(ctx, &candidate); len(problems) > 0 {
			result.Skipped = append(result.Skipped, SkippedInstance{Date: candidate.Date, Problems: problems})
			continue
		}
		if err := s.repo.Create(ctx, &candidate); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create series root")
		}
		root = &candidate
		break
	}
	if root == nil {
		return nil, appErrors.Wrap(&ValidationError{Problems: []string{"every generated instance failed validation"}},
			appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "recurring series failed validation")
	}
	result.SeriesID = root.ID
	result.Created = append(result.Created, *root)

	var toCreate []models.Activity
	for _, candidate := range rest {
		candidate.RecurringSeriesID = root.ID
		if problems := s.activities.Validate(ctx, &candidate); len(problems) > 0 {
			result.Skipped = append(result.Skipped, SkippedInstance{Date: candidate.Date, Problems: problems})
			continue
		}
		toCreate = append(toCreate, candidate)
	}

	if len(toCreate) > 0 {
		if err := s.repo.BulkCreate(ctx, toCreate); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create series instances")
		}
		result.Created = append(result.Created, toCreate...)
	}

	if s.metrics != nil {
		s.metrics.RecordSeriesGenerated(len(result.Created))
	}
	s.logger.Info("recurring series created",
		zap.Int64("series_id", result.SeriesID),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// GetRecurringSeries returns every member of the series containing the given
// activity, ordered by date ascending.
func (s *RecurrenceService) GetRecurringSeries(ctx context.Context, activityID int64) ([]models.Activity, error) {
	reference, err := s.repo.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	members, err := s.repo.FindSeries(ctx, reference.SeriesKey())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load series")
	}
	return members, nil
}

// UpdateRecurringSeries edits one activity or all future members of its
// series. Future members keep their own date and times; only descriptive,
// resource and status fields are copied. Returns false when the reference
// activity does not exist.
func (s *RecurrenceService) UpdateRecurringSeries(ctx context.Context, activityID int64, req UpdateSeriesRequest) (bool, error) {
	if !req.Scope.Valid() {
		return false, appErrors.Clone(appErrors.ErrValidation, "unknown edit scope")
	}
	if req.Status != nil && !req.Status.Valid() {
		return false, appErrors.Clone(appErrors.ErrValidation, "unknown activity status")
	}

	reference, err := s.repo.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	if req.Scope == models.ScopeThisOnly {
		updated := *reference
		applySeriesEdit(&updated, req.Activity, req.Status)
		updated.Date = models.DateOnly(req.Activity.Date)
		updated.LeaveTime = req.Activity.LeaveTime
		updated.EventTime = req.Activity.EventTime
		updated.ReturnTime = req.Activity.ReturnTime
		if err := s.repo.Update(ctx, &updated); err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
		}
		return true, nil
	}

	members, err := s.repo.FindSeries(ctx, reference.SeriesKey())
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load series")
	}

	refDate := models.DateOnly(reference.Date)
	for i := range members {
		member := members[i]
		if models.DateOnly(member.Date).Before(refDate) {
			continue
		}
		applySeriesEdit(&member, req.Activity, req.Status)
		if err := s.repo.Update(ctx, &member); err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update series member")
		}
	}
	return true, nil
}

// DeleteRecurringSeries removes one activity or all future members of its
// series. Returns false when the reference activity does not exist.
func (s *RecurrenceService) DeleteRecurringSeries(ctx context.Context, activityID int64, scope models.EditScope) (bool, error) {
	if !scope.Valid() {
		return false, appErrors.Clone(appErrors.ErrValidation, "unknown edit scope")
	}

	reference, err := s.repo.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	if scope == models.ScopeThisOnly {
		if err := s.repo.Delete(ctx, reference.ID); err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
		}
		return true, nil
	}

	members, err := s.repo.FindSeries(ctx, reference.SeriesKey())
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load series")
	}

	refDate := models.DateOnly(reference.Date)
	var ids []int64
	for _, member := range members {
		if !models.DateOnly(member.Date).Before(refDate) {
			ids = append(ids, member.ID)
		}
	}
	if err := s.repo.DeleteMany(ctx, ids); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete series members")
	}
	return true, nil
}

// applySeriesEdit copies the mutable descriptive, resource and status fields
// onto a series member, leaving its date and times untouched. A nil status
// leaves the member's status as is.
func applySeriesEdit(target *models.Activity, req UpdateActivityRequest, status *models.ActivityStatus) {
	target.DriverID = req.DriverID
	target.VehicleID = req.VehicleID
	target.RouteID = req.RouteID
	target.ActivityType = req.ActivityType
	target.Destination = req.Destination
	target.RequestedBy = req.RequestedBy
	target.Description = req.Description
	target.Notes = req.Notes
	target.ExpectedPassengers = req.ExpectedPassengers
	if status != nil {
		target.Status = *status
	}
}
