package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/districtops/transport-api/internal/models"
)

const activityColumns = "id, activity_date, leave_time, event_time, return_time, driver_id, vehicle_id, route_id, activity_type, destination, requested_by, description, notes, expected_passengers, status, approved_by, approval_date, recurring_series_id, created_at, updated_at"

// ActivityRepository provides persistence for scheduled activities.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns activities with optional filtering and pagination.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	base := "FROM activities WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("activity_date >= $%d", len(args)+1))
		args = append(args, models.DateOnly(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("activity_date <= $%d", len(args)+1))
		args = append(args, models.DateOnly(*filter.DateTo))
	}
	if filter.DriverID > 0 {
		conditions = append(conditions, fmt.Sprintf("driver_id = $%d", len(args)+1))
		args = append(args, filter.DriverID)
	}
	if filter.VehicleID > 0 {
		conditions = append(conditions, fmt.Sprintf("vehicle_id = $%d", len(args)+1))
		args = append(args, filter.VehicleID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("activity_type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"activity_date": true,
		"leave_time":    true,
		"status":        true,
		"created_at":    true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "activity_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, leave_time ASC LIMIT %d OFFSET %d", activityColumns, base, sortBy, order, size, offset)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	return activities, total, nil
}

// FindByID loads an activity by id.
func (r *ActivityRepository) FindByID(ctx context.Context, id int64) (*models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM activities WHERE id = $1", activityColumns)
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListByDate returns all activities on a calendar date ordered by leave time.
func (r *ActivityRepository) ListByDate(ctx context.Context, date time.Time) ([]models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM activities WHERE activity_date = $1 ORDER BY leave_time ASC", activityColumns)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, models.DateOnly(date)); err != nil {
		return nil, fmt.Errorf("list activities by date: %w", err)
	}
	return activities, nil
}

// FindSeries returns all members of a recurrence series ordered by date.
// The series root carries the key as its own id rather than a series column.
func (r *ActivityRepository) FindSeries(ctx context.Context, seriesID int64) ([]models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM activities WHERE recurring_series_id = $1 OR id = $1 ORDER BY activity_date ASC, leave_time ASC", activityColumns)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, seriesID); err != nil {
		return nil, fmt.Errorf("find activity series: %w", err)
	}
	return activities, nil
}

// Create stores a new activity record and assigns its id.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	now := time.Now().UTC()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = now
	}
	activity.UpdatedAt = now
	activity.Date = models.DateOnly(activity.Date)

	const query = `INSERT INTO activities (activity_date, leave_time, event_time, return_time, driver_id, vehicle_id, route_id, activity_type, destination, requested_by, description, notes, expected_passengers, status, approved_by, approval_date, recurring_series_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		activity.Date, activity.LeaveTime, activity.EventTime, activity.ReturnTime,
		activity.DriverID, activity.VehicleID, activity.RouteID,
		activity.ActivityType, activity.Destination, activity.RequestedBy,
		activity.Description, activity.Notes, activity.ExpectedPassengers,
		activity.Status, activity.ApprovedBy, activity.ApprovalDate,
		activity.RecurringSeriesID, activity.CreatedAt, activity.UpdatedAt,
	).Scan(&activity.ID); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// BulkCreate inserts many activities within a transaction.
func (r *ActivityRepository) BulkCreate(ctx context.Context, activities []models.Activity) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create activities: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const query = `INSERT INTO activities (activity_date, leave_time, event_time, return_time, driver_id, vehicle_id, route_id, activity_type, destination, requested_by, description, notes, expected_passengers, status, approved_by, approval_date, recurring_series_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19) RETURNING id`
	for i := range activities {
		payload := activities[i]
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now
		payload.Date = models.DateOnly(payload.Date)

		if err = tx.QueryRowxContext(ctx, query,
			payload.Date, payload.LeaveTime, payload.EventTime, payload.ReturnTime,
			payload.DriverID, payload.VehicleID, payload.RouteID,
			payload.ActivityType, payload.Destination, payload.RequestedBy,
			payload.Description, payload.Notes, payload.ExpectedPassengers,
			payload.Status, payload.ApprovedBy, payload.ApprovalDate,
			payload.RecurringSeriesID, payload.CreatedAt, payload.UpdatedAt,
		).Scan(&payload.ID); err != nil {
			return fmt.Errorf("bulk insert activity: %w", err)
		}
		activities[i] = payload
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create activities: %w", err)
	}
	return nil
}

// Update modifies an activity record.
func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	activity.UpdatedAt = time.Now().UTC()
	activity.Date = models.DateOnly(activity.Date)
	const query = `UPDATE activities SET activity_date = :activity_date, leave_time = :leave_time, event_time = :event_time, return_time = :return_time, driver_id = :driver_id, vehicle_id = :vehicle_id, route_id = :route_id, activity_type = :activity_type, destination = :destination, requested_by = :requested_by, description = :description, notes = :notes, expected_passengers = :expected_passengers, status = :status, approved_by = :approved_by, approval_date = :approval_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

// Delete removes an activity by id.
func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

// DeleteMany removes a batch of activities within a transaction.
func (r *ActivityRepository) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM activities WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("build delete activities: %w", err)
	}
	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete activities: %w", err)
	}
	return nil
}

// CompletePast transitions past-dated open activities to COMPLETED and
// returns the number of rows affected.
func (r *ActivityRepository) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	const query = `UPDATE activities SET status = $1, updated_at = $2 WHERE activity_date < $3 AND status IN ($4, $5, $6)`
	res, err := r.db.ExecContext(ctx, query,
		models.StatusCompleted, time.Now().UTC(), models.DateOnly(before),
		models.StatusScheduled, models.StatusApproved, models.StatusInProgress,
	)
	if err != nil {
		return 0, fmt.Errorf("complete past activities: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("complete past activities rows: %w", err)
	}
	return affected, nil
}
